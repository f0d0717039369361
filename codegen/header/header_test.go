package header_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/codegen/header"
)

func buildInterface() *cfir.Interface {
	module := cfir.NewModule()
	module.Interface.DeclareInstance("server")
	module.Interface.DeclareInstance("client")
	module.Interface.DeclareExternalAction("notify")
	return module.Interface
}

func TestWrite_EmitsDeterministicIncludeGuard(t *testing.T) {
	var first, second strings.Builder
	require.NoError(t, header.Write(&first, buildInterface()))
	require.NoError(t, header.Write(&second, buildInterface()))
	assert.Equal(t, first.String(), second.String(), "the include guard must be stable across runs")
}

func TestWrite_EmitsProcessEnumAndExternActions(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, header.Write(&buf, buildInterface()))
	out := buf.String()

	assert.Contains(t, out, "RH_PROC_SERVER,")
	assert.Contains(t, out, "RH_PROC_CLIENT,")
	assert.Contains(t, out, "RH_NUM_OF_PROCESSES")
	assert.Contains(t, out, "extern void notify(enum rh_process_instance, void**);")
	assert.Contains(t, out, "#ifndef RACE_HARNESS_INTERFACE_")
	assert.Contains(t, out, "#endif")
}
