// Package checker drives the external model checker named in spec.md
// §6's subprocess contract: serialize a STIR module, hand it to
// pins2lts-seq against the PINS-STIR plugin, then run stir-bin-export to
// recover a CSV stream of co-occurring STIR node pairs. Grounded on
// driver.py's RaceHarnessDriver._model_check.
package checker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"

	"github.com/viant/racegen/mutex"
	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/stir"
	"github.com/viant/racegen/stir/serialize"
	"github.com/viant/racegen/stir/translate"
)

// Checker invokes the external model checker against an LTSmin
// installation plus the PINS-STIR plugin directory.
type Checker struct {
	LTSminDir  string
	PinsStirDir string
	Quiet      bool
	Logger     *logrus.Logger
	fs         afs.Service
}

// New returns a Checker with a default, silent logger.
func New(ltsminDir, pinsStirDir string, quiet bool) *Checker {
	return &Checker{LTSminDir: ltsminDir, PinsStirDir: pinsStirDir, Quiet: quiet, Logger: logrus.New(), fs: afs.New()}
}

// ModelCheck serializes module to a temp file, runs the checker
// subprocess pipeline, and returns the raw CSV bytes stir-bin-export
// wrote to stdout.
func (c *Checker) ModelCheck(ctx context.Context, module *stir.Module) ([]byte, error) {
	if c.LTSminDir == "" {
		return nil, &rhir.CompileError{Kind: rhir.KindSubprocess, Message: "LTSmin installation directory is required for state-space generation"}
	}
	if c.PinsStirDir == "" {
		return nil, &rhir.CompileError{Kind: rhir.KindSubprocess, Message: "PINS-STIR plugin directory is required for state-space generation"}
	}

	tmpDir, err := os.MkdirTemp("", "racegen-checker-*")
	if err != nil {
		return nil, errors.Wrap(err, "create checker temp directory")
	}
	defer os.RemoveAll(tmpDir)

	stirPath := filepath.Join(tmpDir, "module.stir")
	binPath := filepath.Join(tmpDir, "state_space.bin")

	var stirBuf bytes.Buffer
	if err := serialize.Module(&stirBuf, module); err != nil {
		return nil, errors.Wrap(err, "serialize stir module")
	}
	if err := c.fs.Upload(ctx, stirPath, 0o644, bytes.NewReader(stirBuf.Bytes())); err != nil {
		return nil, errors.Wrap(err, "write stir file")
	}

	pins2ltsSeq := filepath.Join(c.LTSminDir, "bin", "pins2lts-seq")
	libPinsStir := filepath.Join(c.PinsStirDir, "libpins-stir.so")
	stirBinExport := filepath.Join(c.PinsStirDir, "stir-bin-export")

	c.Logger.WithFields(logrus.Fields{"stir": stirPath, "bin": binPath}).Debug("invoking pins2lts-seq")

	checkCmd := exec.CommandContext(ctx, pins2ltsSeq, libPinsStir)
	checkCmd.Env = append(os.Environ(),
		"PINS_STIR_MODEL="+stirPath,
		"PINS_STIR_OUTPUT="+binPath,
	)
	checkCmd.Stdin = nil
	if !c.Quiet {
		checkCmd.Stdout = os.Stderr
		checkCmd.Stderr = os.Stderr
	}
	if err := checkCmd.Run(); err != nil {
		return nil, &rhir.CompileError{Kind: rhir.KindSubprocess, Message: "pins2lts-seq failed", Cause: err}
	}

	c.Logger.WithField("export", stirBinExport).Debug("invoking stir-bin-export")

	exportCmd := exec.CommandContext(ctx, stirBinExport, stirPath, binPath)
	out, err := exportCmd.Output()
	if err != nil {
		return nil, &rhir.CompileError{Kind: rhir.KindSubprocess, Message: "stir-bin-export failed", Cause: err}
	}
	return out, nil
}

// IngestCSV reads a state-space CSV (from a live checker run, or a
// precomputed --state-space file) and records every co-occurring pair
// into inclusion via mapping. Rows with either field naming an STIR node
// absent from mapping are silently dropped (spec.md §7: "the mapping is
// incomplete by design").
func IngestCSV(r io.Reader, mapping *translate.Mapping, inclusion *mutex.Inclusion) error {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &rhir.CompileError{Kind: rhir.KindIO, Message: "read state-space csv", Cause: err}
		}
		if len(record) < 4 {
			continue
		}
		node1, err1 := strconv.Atoi(record[1])
		node2, err2 := strconv.Atoi(record[3])
		if err1 != nil || err2 != nil {
			continue
		}

		instance1, block1, ok1 := mapping.Lookup(stir.NodeID(node1))
		instance2, block2, ok2 := mapping.Lookup(stir.NodeID(node2))
		if !ok1 || !ok2 {
			continue
		}
		inclusion.AddCooccurring(instance1, block1, instance2, block2)
	}
}
