// Package serialize writes a STIR module in the plain-text wire format
// spec.md §6 defines for the external model checker (and for human
// inspection): a state section followed by a transitions section, one
// line per record, fields space-separated.
package serialize

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/viant/racegen/stir"
)

// Module writes module to w in the STIR text format. Unlike the source
// system's serializer — which counts only set_int instructions toward
// the per-transition instruction count and silently drops do_instr lines
// from the body — this emits every instruction, do_instr included, since
// spec.md's own format grammar names `do_instr <name>` as a valid
// instruction line and the checker side only needs an accurate count.
func Module(w io.Writer, module *stir.Module) error {
	bw := bufio.NewWriter(w)
	if err := writeState(bw, &module.State); err != nil {
		return errors.Wrap(err, "serialize state")
	}
	if err := writeTransitions(bw, module); err != nil {
		return errors.Wrap(err, "serialize transitions")
	}
	return errors.Wrap(bw.Flush(), "flush stir output")
}

func writeState(w *bufio.Writer, state *stir.State) error {
	if _, err := fmt.Fprintf(w, "state %d\n", state.Len()); err != nil {
		return err
	}
	for _, slot := range state.Slots() {
		var err error
		switch s := slot.(type) {
		case stir.IntSlot:
			_, err = fmt.Fprintf(w, "slot %d int %d\n", s.ID, s.InitialValue)
		case stir.NodeSlot:
			_, err = fmt.Fprintf(w, "slot %d node %d\n", s.ID, s.InitialValue)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTransitions(w *bufio.Writer, module *stir.Module) error {
	if _, err := fmt.Fprintf(w, "transitions %d\n", module.Len()); err != nil {
		return err
	}
	for _, t := range module.Transitions {
		inv := 0
		if t.InvertGuard {
			inv = 1
		}
		_, err := fmt.Fprintf(w, "transition %d component %d src %d dst %d guards %d %d instructions %d\n",
			t.ID, t.NodeSlot, t.SourceNode, t.TargetNode, t.NumGuards(), inv, t.NumInstructions())
		if err != nil {
			return err
		}
		for _, g := range t.Guards {
			if ig, ok := g.(stir.IntGuard); ok {
				if _, err := fmt.Fprintf(w, "int_guard %d %d\n", ig.Slot, ig.Value); err != nil {
					return err
				}
			}
		}
		for _, instr := range t.Instructions {
			switch in := instr.(type) {
			case stir.SetIntInstr:
				_, err = fmt.Fprintf(w, "set_int_instr %d %d\n", in.Slot, in.Value)
			case stir.DoInstr:
				_, err = fmt.Fprintf(w, "do_instr %s\n", in.Action)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
