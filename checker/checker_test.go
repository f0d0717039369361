package checker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/checker"
	"github.com/viant/racegen/mutex"
	"github.com/viant/racegen/rhir/rhirtest"
	"github.com/viant/racegen/stir"
	"github.com/viant/racegen/stir/translate"
)

const twoInstanceFixture = `
symbols: []
protocols:
  - name: p
instances:
  - name: a
    protocol: p
  - name: b
    protocol: p
blocks:
  - name: entry
    process: proc
    ops: []
processes:
  - name: proc
    protocol: p
    entry: entry
module:
  processes: [proc]
  instances: [a, b]
`

// nodeFor scans the small node-id space translate allocates for this
// fixture to find the node standing for (instance, "entry").
func nodeFor(t *testing.T, mapping *translate.Mapping, want rhirtest.Result, instanceName string) stir.NodeID {
	t.Helper()
	instance := want.Refs[instanceName]
	entry := want.Refs["entry"]
	for id := stir.NodeID(0); id < 32; id++ {
		inst, block, ok := mapping.Lookup(id)
		if ok && inst == instance && block == entry {
			return id
		}
	}
	t.Fatalf("no node found for instance %q", instanceName)
	return 0
}

func TestIngestCSV_DropsRowsNamingUnmappedNodes(t *testing.T) {
	result, err := rhirtest.Load(strings.NewReader(twoInstanceFixture))
	require.NoError(t, err)

	_, mapping, err := translate.Translate(result.Context, result.Module)
	require.NoError(t, err)

	nodeA := nodeFor(t, mapping, *result, "a")
	nodeB := nodeFor(t, mapping, *result, "b")

	csv := fmt.Sprintf("x,%d,x,%d\nx,%d,x,9999\n", nodeA, nodeB, nodeA)
	inclusion := mutex.NewInclusion()
	require.NoError(t, checker.IngestCSV(strings.NewReader(csv), mapping, inclusion))

	assert.True(t, inclusion.IsCooccurring(result.Refs["a"], result.Refs["entry"], result.Refs["b"], result.Refs["entry"]))
	assert.Equal(t, 1, inclusion.Len(), "the row naming unmapped node 9999 must be silently dropped")
}
