package compiler_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/compiler"
	"github.com/viant/racegen/rhir/rhirtest"
	"github.com/viant/racegen/stir/translate"
)

const pingPongFixture = `
symbols: [ping]
fixedSets:
  - name: pingDomain
    items: [ping]
protocols:
  - name: sender
    out: pingDomain
  - name: receiver
    in: pingDomain
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
  - name: serverStart
    process: serverProc
    ops: []
  - name: serverDone
    process: serverProc
    ops:
      - op: external_action
        action: onPing
edges:
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

func TestDriver_RunRhirEncodingPrintsContext(t *testing.T) {
	result, err := rhirtest.Load(strings.NewReader(pingPongFixture))
	require.NoError(t, err)

	driver := compiler.New()
	driver.Logger.SetLevel(logrus.ErrorLevel)

	var out strings.Builder
	err = driver.Run(context.Background(), result.Context, result.Module, &out, compiler.Options{Encoding: compiler.EncodingRhir})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "=")
}

func TestDriver_RunStirEncodingSerializesModule(t *testing.T) {
	result, err := rhirtest.Load(strings.NewReader(pingPongFixture))
	require.NoError(t, err)

	driver := compiler.New()
	driver.Logger.SetLevel(logrus.ErrorLevel)

	var out strings.Builder
	err = driver.Run(context.Background(), result.Context, result.Module, &out, compiler.Options{Encoding: compiler.EncodingStir})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "state ")
	assert.Contains(t, out.String(), "transitions ")
}

func TestDriver_RunHeaderEncodingWithPrecomputedStateSpace(t *testing.T) {
	result, err := rhirtest.Load(strings.NewReader(pingPongFixture))
	require.NoError(t, err)

	_, mapping, err := translate.Translate(result.Context, result.Module)
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "state_space.csv")
	require.NoError(t, os.WriteFile(csvPath, buildEmptyCSV(mapping.Len()), 0o644))

	driver := compiler.New()
	driver.Logger.SetLevel(logrus.ErrorLevel)

	var out strings.Builder
	err = driver.Run(context.Background(), result.Context, result.Module, &out, compiler.Options{
		Encoding:   compiler.EncodingHeader,
		StateSpace: csvPath,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "enum rh_process_instance")
	assert.Contains(t, out.String(), "extern void onPing(enum rh_process_instance, void**);")
}

// buildEmptyCSV returns a state-space CSV with no co-occurring rows, valid
// input for IngestCSV regardless of how many nodes mapping describes.
func buildEmptyCSV(mappedNodes int) []byte {
	return []byte(fmt.Sprintf("# %d nodes mapped, no observed co-occurrences\n", mappedNodes))
}
