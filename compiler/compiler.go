// Package compiler wires every stage of the pipeline end to end: RHIR
// control-flow optimization, RHIR-to-STIR translation, the per-encoding
// short-circuit dispatch, and (for the C-producing encodings) the model
// checker handshake, mutual-exclusion construction, CFIR lowering and the
// selected C backend. Grounded on original_source/driver.py's
// RaceHarnessDriver.run and RaceHarnessEncoding enum.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/checker"
	"github.com/viant/racegen/codegen/executable"
	"github.com/viant/racegen/codegen/goblint"
	"github.com/viant/racegen/codegen/header"
	"github.com/viant/racegen/codegen/stirprog"
	"github.com/viant/racegen/mutex"
	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/rhir/optimize"
	"github.com/viant/racegen/stir"
	"github.com/viant/racegen/stir/serialize"
	"github.com/viant/racegen/stir/translate"
)

// Encoding selects the output this Driver produces, exactly spec.md §6's
// RaceHarnessEncoding enum.
type Encoding string

const (
	EncodingExecutable    Encoding = "executable"
	EncodingGoblint       Encoding = "goblint"
	EncodingGoblintKernel Encoding = "goblint-kernel"
	EncodingHeader        Encoding = "header"
	EncodingRhir          Encoding = "rhir"
	EncodingStir          Encoding = "stir"
	EncodingStateSpace    Encoding = "state_space"
	EncodingExecutableStir Encoding = "executable-stir"
)

// Encodings lists every valid Encoding value, in the order spec.md §6
// declares them — used by the CLI to build its --encoding choice list.
var Encodings = []Encoding{
	EncodingExecutable, EncodingGoblint, EncodingGoblintKernel, EncodingHeader,
	EncodingRhir, EncodingStir, EncodingStateSpace, EncodingExecutableStir,
}

// Options configures one Driver.Run invocation.
type Options struct {
	Encoding     Encoding
	EmbedHeader  bool
	StateSpace   string // path to a precomputed state-space CSV; empty means run the live checker
	LTSminDir    string
	PinsStirDir  string
	Quiet        bool
}

// Driver runs the full pipeline against an already-built RHIR module.
// Parsing source text into RHIR is an explicit out-of-scope collaborator
// (spec.md §1); callers construct the module via the rhir package's own
// API, or via rhir/rhirtest's YAML loader.
type Driver struct {
	Logger *logrus.Logger
	fs     afs.Service
}

// New returns a Driver with a default, non-nil logger.
func New() *Driver {
	return &Driver{Logger: logrus.New(), fs: afs.New()}
}

// Run lowers ctx/module per opts and writes the result to output.
func (d *Driver) Run(ctx context.Context, rhCtx *rhir.Context, module *rhir.Module, output io.Writer, opts Options) error {
	log := d.Logger.WithField("encoding", string(opts.Encoding))
	log.Debug("optimizing control flow")
	if err := optimize.Module(rhCtx, module); err != nil {
		return errors.Wrap(err, "optimize control flow")
	}

	if opts.Encoding == EncodingRhir {
		fmt.Fprintln(output, rhCtx)
		return nil
	}

	log.Debug("translating rhir to stir")
	stModule, mapping, err := translate.Translate(rhCtx, module)
	if err != nil {
		return errors.Wrap(err, "translate rhir to stir")
	}

	switch opts.Encoding {
	case EncodingStir:
		return errors.Wrap(serialize.Module(output, stModule), "serialize stir")

	case EncodingExecutableStir:
		return errors.Wrap(stirprog.Write(output, stModule), "codegen executable-stir")

	case EncodingStateSpace:
		csv, err := d.modelCheck(ctx, stModule, opts)
		if err != nil {
			return err
		}
		_, err = output.Write(csv)
		return errors.Wrap(err, "write state space")
	}

	inclusion := mutex.NewInclusion()
	if opts.StateSpace != "" {
		log.WithField("state_space_file", opts.StateSpace).Debug("ingesting precomputed state space")
		data, err := d.fs.DownloadWithURL(ctx, opts.StateSpace)
		if err != nil {
			return errors.Wrap(err, "open state-space file")
		}
		if err := checker.IngestCSV(bytes.NewReader(data), mapping, inclusion); err != nil {
			return errors.Wrap(err, "ingest precomputed state space")
		}
	} else {
		csv, err := d.modelCheck(ctx, stModule, opts)
		if err != nil {
			return err
		}
		if err := checker.IngestCSV(bytes.NewReader(csv), mapping, inclusion); err != nil {
			return errors.Wrap(err, "ingest state space")
		}
	}

	log.Debug("constructing locked control-flow ir")
	exclusion := mutex.NewExclusion(rhCtx, inclusion)
	constructor := cfir.NewConstructor(rhCtx, exclusion)
	cfModule, err := constructor.ConstructModule(module)
	if err != nil {
		return errors.Wrap(err, "construct cfir module")
	}

	if opts.EmbedHeader && opts.Encoding != EncodingHeader {
		log.Debug("embedding interface header")
		if err := header.Write(output, cfModule.Interface); err != nil {
			return errors.Wrap(err, "codegen embedded header")
		}
	}

	switch opts.Encoding {
	case EncodingExecutable:
		return errors.Wrap(executable.Write(output, cfModule), "codegen executable")
	case EncodingGoblint:
		return errors.Wrap(goblint.Write(output, cfModule, true), "codegen goblint")
	case EncodingGoblintKernel:
		return errors.Wrap(goblint.Write(output, cfModule, false), "codegen goblint-kernel")
	case EncodingHeader:
		return errors.Wrap(header.Write(output, cfModule.Interface), "codegen header")
	default:
		return errors.Errorf("unexpected encoding: %s", opts.Encoding)
	}
}

func (d *Driver) modelCheck(ctx context.Context, stModule *stir.Module, opts Options) ([]byte, error) {
	c := checker.New(opts.LTSminDir, opts.PinsStirDir, opts.Quiet)
	c.Logger = d.Logger
	d.Logger.WithFields(logrus.Fields{"ltsmin": opts.LTSminDir, "pins_stir": opts.PinsStirDir}).Debug("running model checker")
	return c.ModelCheck(ctx, stModule)
}
