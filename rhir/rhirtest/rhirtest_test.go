package rhirtest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/rhir/rhirtest"
)

const twoInstanceHandshake = `
symbols: [ping, pong]
fixedSets:
  - name: pingDomain
    items: [ping]
  - name: pongDomain
    items: [pong]
protocols:
  - name: sender
    out: pingDomain
  - name: receiver
    in: pingDomain
    out: pongDomain
instances:
  - name: client
    protocol: sender
  - name: server
    protocol: receiver
predicates:
  - name: gotPing
    kind: receival
    messages: [ping]
blocks:
  - name: clientStart
    process: clientProc
    ops:
      - op: transmission
        destinations: [server]
        message: ping
  - name: clientDone
    process: clientProc
    ops: []
  - name: serverStart
    process: serverProc
    ops: []
  - name: serverDone
    process: serverProc
    ops:
      - op: transmission
        destinations: [client]
        message: pong
edges:
  - from: clientStart
    kind: unconditional
    target: clientDone
  - from: serverStart
    kind: conditional
    target: serverDone
    alternative: serverStart
    condition: gotPing
processes:
  - name: clientProc
    protocol: sender
    entry: clientStart
  - name: serverProc
    protocol: receiver
    entry: serverStart
module:
  processes: [clientProc, serverProc]
  instances: [client, server]
`

func TestLoad_BuildsTwoInstanceHandshake(t *testing.T) {
	result, err := rhirtest.Load(strings.NewReader(twoInstanceHandshake))
	require.NoError(t, err)

	module := result.Module
	assert.Len(t, module.Processes, 2)
	assert.Len(t, module.Instances, 2)

	clientProc, err := result.Context.ToProcess(result.Refs["clientProc"])
	require.NoError(t, err)
	cf, err := result.Context.ToControlFlow(clientProc.ControlFlow)
	require.NoError(t, err)

	edge := cf.EdgeFrom(result.Refs["clientStart"])
	uncond, ok := edge.(rhir.UnconditionalEdge)
	require.True(t, ok)
	assert.Equal(t, result.Refs["clientDone"], uncond.Target)

	serverProc, err := result.Context.ToProcess(result.Refs["serverProc"])
	require.NoError(t, err)
	serverCF, err := result.Context.ToControlFlow(serverProc.ControlFlow)
	require.NoError(t, err)
	serverEdge := serverCF.EdgeFrom(result.Refs["serverStart"])
	cond, ok := serverEdge.(rhir.ConditionalEdge)
	require.True(t, ok)
	assert.Equal(t, result.Refs["gotPing"], cond.Condition)
}

func TestLoad_RejectsUndefinedReference(t *testing.T) {
	_, err := rhirtest.Load(strings.NewReader(`
protocols:
  - name: p
    in: noSuchFixedSet
`))
	require.Error(t, err)
}
