// Package header implements spec.md §4.5's interface-header C backend:
// an include-guarded declaration of the `enum rh_process_instance` and
// every external action's extern prototype. Grounded on
// codegen/header/header.py, with one deliberate deviation: the include
// guard is a deterministic SHA-256 digest of the sorted interface rather
// than 16 characters drawn via random.choices, per spec.md §6
// ("Include guard is stable across runs").
package header

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/codegen"
)

// Write lowers iface to a complete, include-guarded C header.
func Write(w io.Writer, iface *cfir.Interface) error {
	cw := codegen.NewWriter(w)
	guard := includeGuard(iface)

	cw.Linef("#ifndef RACE_HARNESS_INTERFACE_%s_H_", guard)
	cw.Linef("#define RACE_HARNESS_INTERFACE_%s_H_", guard)

	instances := iface.Instances()
	cw.Line("")
	cw.Line("enum rh_process_instance {")
	cw.Indent()
	for _, instance := range instances {
		cw.Linef("RH_PROC_%s,", strings.ToUpper(instance))
	}
	cw.Line("RH_NUM_OF_PROCESSES")
	cw.Dedent()
	cw.Line("};")

	cw.Line("")
	for _, action := range iface.ExternalActions() {
		cw.Linef("extern void %s(enum rh_process_instance, void**);", action)
	}
	cw.Line("")
	cw.Line("#endif")
	cw.Line("")

	return cw.Flush()
}

func includeGuard(iface *cfir.Interface) string {
	instances := append([]string(nil), iface.Instances()...)
	sort.Strings(instances)
	actions := append([]string(nil), iface.ExternalActions()...)
	sort.Strings(actions)

	h := sha256.New()
	for _, instance := range instances {
		h.Write([]byte(instance))
		h.Write([]byte{0})
	}
	for _, action := range actions {
		h.Write([]byte(action))
		h.Write([]byte{0})
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))[:16]
}
