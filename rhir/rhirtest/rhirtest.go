// Package rhirtest builds an *rhir.Context and *rhir.Module from a small
// YAML fixture format, so larger end-to-end scenarios (SPEC_FULL.md §8,
// §13) can be written as data tables instead of long chains of hand-written
// construction-API calls. There is no original_source analog for this file
// format — the Python side only ever reads source text through its own
// grammar — so the schema is this repo's own, modeled after the construction
// API rhir.Context already exposes.
//
// cmd/racegen also loads its "model" file through this same loader: the
// surface grammar/parser is an explicit out-of-scope collaborator (spec.md
// §1), and this YAML format is the only construction-API-driven model
// representation this repo carries end to end.
package rhirtest

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/viant/racegen/rhir"
)

// Fixture is the top-level YAML document shape.
type Fixture struct {
	Symbols    []string           `yaml:"symbols"`
	FixedSets  []fixedSetDoc      `yaml:"fixedSets"`
	Sets       []setDoc           `yaml:"sets"`
	Protocols  []protocolDoc      `yaml:"protocols"`
	Instances  []instanceDoc      `yaml:"instances"`
	Predicates []predicateDoc     `yaml:"predicates"`
	Blocks     []blockDoc         `yaml:"blocks"`
	Edges      []edgeDoc          `yaml:"edges"`
	Processes  []processDoc       `yaml:"processes"`
	Module     moduleDoc          `yaml:"module"`
}

type fixedSetDoc struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

type setDoc struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
}

type protocolDoc struct {
	Name       string   `yaml:"name"`
	In         string   `yaml:"in"`
	Out        string   `yaml:"out"`
	Parameters []string `yaml:"parameters"`
}

type instanceDoc struct {
	Name       string   `yaml:"name"`
	Protocol   string   `yaml:"protocol"`
	Parameters []string `yaml:"parameters"`
}

type predicateDoc struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"` // nondet | set_empty | set_has | conjunction | receival
	Set       string   `yaml:"set"`
	Value     string   `yaml:"value"`
	Conjuncts []string `yaml:"conjuncts"`
	Messages  []string `yaml:"messages"`
}

type opDoc struct {
	Op           string   `yaml:"op"` // external_action | transmission | set_add | set_del
	Action       string   `yaml:"action"`
	Destinations []string `yaml:"destinations"`
	Message      string   `yaml:"message"`
	Set          string   `yaml:"set"`
	Value        string   `yaml:"value"`
}

type blockDoc struct {
	Name    string  `yaml:"name"`
	Process string  `yaml:"process"` // required when the fixture declares more than one process
	Ops     []opDoc `yaml:"ops"`
}

type edgeDoc struct {
	From        string `yaml:"from"`
	Kind        string `yaml:"kind"` // unconditional | conditional
	Target      string `yaml:"target"`
	Alternative string `yaml:"alternative"`
	Condition   string `yaml:"condition"`
}

type processDoc struct {
	Name     string `yaml:"name"`
	Protocol string `yaml:"protocol"`
	Entry    string `yaml:"entry"`
}

type moduleDoc struct {
	Processes []string `yaml:"processes"`
	Instances []string `yaml:"instances"`
}

// Result bundles the constructed context, module and the full name->ref
// registry, so a test (or the CLI) can look up a named entity after load.
type Result struct {
	Context *rhir.Context
	Module  *rhir.Module
	Refs    map[string]rhir.Ref
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open rhirtest fixture")
	}
	defer f.Close()
	return Load(f)
}

// Load parses and builds a fixture read from r.
func Load(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read rhirtest fixture")
	}
	var doc Fixture
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse rhirtest fixture")
	}
	return build(&doc)
}

type builder struct {
	ctx  *rhir.Context
	refs map[string]rhir.Ref
	doc  *Fixture
}

func build(doc *Fixture) (*Result, error) {
	b := &builder{ctx: rhir.NewContext(), refs: make(map[string]rhir.Ref), doc: doc}

	for _, label := range doc.Symbols {
		sym := b.ctx.NewSymbol(label)
		b.refs[label] = sym.Ref()
	}
	for _, fs := range doc.FixedSets {
		if err := b.buildFixedSet(fs); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.Protocols {
		if err := b.buildProtocol(p); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Sets {
		if err := b.buildSet(s); err != nil {
			return nil, err
		}
	}
	for _, i := range doc.Instances {
		if err := b.buildInstance(i); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.Predicates {
		if _, err := b.resolvePredicate(p.Name); err != nil {
			return nil, err
		}
	}
	for _, blk := range doc.Blocks {
		if err := b.buildBlock(blk); err != nil {
			return nil, err
		}
	}

	controlFlows := make(map[string]*rhir.ControlFlow)
	for _, proc := range doc.Processes {
		cf := b.ctx.NewControlFlow()
		controlFlows[proc.Name] = cf
		b.refs["controlflow:"+proc.Name] = cf.Ref()
	}
	if err := b.buildEdges(controlFlows); err != nil {
		return nil, err
	}
	for _, proc := range doc.Processes {
		if err := b.buildProcess(proc, controlFlows[proc.Name]); err != nil {
			return nil, err
		}
	}

	module, err := b.buildModule()
	if err != nil {
		return nil, err
	}
	return &Result{Context: b.ctx, Module: module, Refs: b.refs}, nil
}

func (b *builder) resolveRef(name string) (rhir.Ref, error) {
	if name == "" {
		return rhir.Ref{}, nil
	}
	if ref, ok := b.refs[name]; ok {
		return ref, nil
	}
	return rhir.Ref{}, errors.Errorf("rhirtest: undefined name %q", name)
}

func (b *builder) buildFixedSet(doc fixedSetDoc) error {
	items := make([]rhir.Ref, 0, len(doc.Items))
	for _, item := range doc.Items {
		ref, err := b.resolveRef(item)
		if err != nil {
			return err
		}
		items = append(items, ref)
	}
	fs, err := b.ctx.NewFixedSet(doc.Name, items)
	if err != nil {
		return errors.Wrapf(err, "fixed set %q", doc.Name)
	}
	b.refs[doc.Name] = fs.Ref()
	return nil
}

func (b *builder) buildProtocol(doc protocolDoc) error {
	inRef, err := b.resolveRef(doc.In)
	if err != nil {
		return err
	}
	outRef, err := b.resolveRef(doc.Out)
	if err != nil {
		return err
	}
	p, err := b.ctx.NewProtocol(doc.Name, inRef, outRef)
	if err != nil {
		return errors.Wrapf(err, "protocol %q", doc.Name)
	}
	for _, param := range doc.Parameters {
		ref, err := b.resolveRef(param)
		if err != nil {
			return err
		}
		p.AddParameter(ref)
	}
	b.refs[doc.Name] = p.Ref()
	return nil
}

func (b *builder) buildSet(doc setDoc) error {
	domain, err := b.resolveRef(doc.Domain)
	if err != nil {
		return err
	}
	s, err := b.ctx.NewSet(doc.Name, domain)
	if err != nil {
		return errors.Wrapf(err, "set %q", doc.Name)
	}
	b.refs[doc.Name] = s.Ref()
	return nil
}

func (b *builder) buildInstance(doc instanceDoc) error {
	proto, err := b.resolveRef(doc.Protocol)
	if err != nil {
		return err
	}
	inst, err := b.ctx.NewInstance(doc.Name, proto)
	if err != nil {
		return errors.Wrapf(err, "instance %q", doc.Name)
	}
	for _, param := range doc.Parameters {
		ref, err := b.resolveRef(param)
		if err != nil {
			return err
		}
		inst.AddParameter(ref)
	}
	b.refs[doc.Name] = inst.Ref()
	return nil
}

// resolvePredicate resolves (building lazily, in document order, on first
// reference) the predicate named name. Predicates may reference each other
// (conjunction conjuncts) forward or backward in the document.
func (b *builder) resolvePredicate(name string) (rhir.Ref, error) {
	if ref, ok := b.refs[name]; ok {
		return ref, nil
	}
	var doc *predicateDoc
	for i := range b.doc.Predicates {
		if b.doc.Predicates[i].Name == name {
			doc = &b.doc.Predicates[i]
			break
		}
	}
	if doc == nil {
		return rhir.Ref{}, errors.Errorf("rhirtest: undefined predicate %q", name)
	}

	var op rhir.PredicateOp
	switch doc.Kind {
	case "nondet":
		op = rhir.Nondet{}
	case "set_empty":
		set, err := b.resolveRef(doc.Set)
		if err != nil {
			return rhir.Ref{}, err
		}
		op = rhir.SetEmpty{TargetSet: set}
	case "set_has":
		set, err := b.resolveRef(doc.Set)
		if err != nil {
			return rhir.Ref{}, err
		}
		value, err := b.resolveRef(doc.Value)
		if err != nil {
			return rhir.Ref{}, err
		}
		op = rhir.SetHas{TargetSet: set, Value: value}
	case "conjunction":
		conjuncts := make([]rhir.Ref, 0, len(doc.Conjuncts))
		for _, c := range doc.Conjuncts {
			ref, err := b.resolvePredicate(c)
			if err != nil {
				return rhir.Ref{}, err
			}
			conjuncts = append(conjuncts, ref)
		}
		op = rhir.Conjunction{Conjuncts: conjuncts}
	case "receival":
		messages := make([]rhir.Ref, 0, len(doc.Messages))
		for _, m := range doc.Messages {
			ref, err := b.resolveRef(m)
			if err != nil {
				return rhir.Ref{}, err
			}
			messages = append(messages, ref)
		}
		op = rhir.Receival{Messages: messages}
	default:
		return rhir.Ref{}, errors.Errorf("rhirtest: unknown predicate kind %q for %q", doc.Kind, name)
	}

	pred := b.ctx.NewPredicate(op)
	b.refs[name] = pred.Ref()
	return pred.Ref(), nil
}

func (b *builder) buildBlock(doc blockDoc) error {
	block := b.ctx.NewBlock()
	b.refs[doc.Name] = block.Ref()
	for _, opDoc := range doc.Ops {
		op, err := b.buildOp(opDoc)
		if err != nil {
			return errors.Wrapf(err, "block %q", doc.Name)
		}
		block.Ops = append(block.Ops, op)
	}
	return nil
}

func (b *builder) buildOp(doc opDoc) (rhir.Operation, error) {
	switch doc.Op {
	case "external_action":
		return rhir.ExternalAction{Action: doc.Action}, nil
	case "transmission":
		destinations := make([]rhir.Ref, 0, len(doc.Destinations))
		for _, d := range doc.Destinations {
			ref, err := b.resolveRef(d)
			if err != nil {
				return nil, err
			}
			destinations = append(destinations, ref)
		}
		message, err := b.resolveRef(doc.Message)
		if err != nil {
			return nil, err
		}
		return rhir.Transmission{Destinations: destinations, Message: message}, nil
	case "set_add":
		set, err := b.resolveRef(doc.Set)
		if err != nil {
			return nil, err
		}
		value, err := b.resolveRef(doc.Value)
		if err != nil {
			return nil, err
		}
		return rhir.SetAdd{TargetSet: set, Value: value}, nil
	case "set_del":
		set, err := b.resolveRef(doc.Set)
		if err != nil {
			return nil, err
		}
		value, err := b.resolveRef(doc.Value)
		if err != nil {
			return nil, err
		}
		return rhir.SetDel{TargetSet: set, Value: value}, nil
	default:
		return nil, fmt.Errorf("rhirtest: unknown op kind %q", doc.Op)
	}
}

func (b *builder) buildEdges(controlFlows map[string]*rhir.ControlFlow) error {
	for _, e := range b.doc.Edges {
		cf, ok := controlFlows[b.processOwning(e.From)]
		if !ok {
			return errors.Errorf("rhirtest: edge from %q does not belong to any declared process", e.From)
		}
		from, err := b.resolveRef(e.From)
		if err != nil {
			return err
		}
		switch e.Kind {
		case "unconditional":
			target, err := b.resolveRef(e.Target)
			if err != nil {
				return err
			}
			if err := cf.AddUnconditionalEdge(from, target); err != nil {
				return err
			}
		case "conditional":
			target, err := b.resolveRef(e.Target)
			if err != nil {
				return err
			}
			alt, err := b.resolveRef(e.Alternative)
			if err != nil {
				return err
			}
			cond, err := b.resolvePredicate(e.Condition)
			if err != nil {
				return err
			}
			if err := cf.AddConditionalEdge(from, target, alt, cond); err != nil {
				return err
			}
		default:
			return errors.Errorf("rhirtest: unknown edge kind %q", e.Kind)
		}
	}
	return nil
}

// processOwning returns the process name a block belongs to: its own
// explicit `process:` field if set, else the process whose entry block it
// is, else (for single-process fixtures, the common case in unit tests)
// the only declared process.
func (b *builder) processOwning(blockName string) string {
	for _, blk := range b.doc.Blocks {
		if blk.Name == blockName && blk.Process != "" {
			return blk.Process
		}
	}
	for _, proc := range b.doc.Processes {
		if proc.Entry == blockName {
			return proc.Name
		}
	}
	if len(b.doc.Processes) == 1 {
		return b.doc.Processes[0].Name
	}
	return ""
}

func (b *builder) buildProcess(doc processDoc, cf *rhir.ControlFlow) error {
	proto, err := b.resolveRef(doc.Protocol)
	if err != nil {
		return err
	}
	entry, err := b.resolveRef(doc.Entry)
	if err != nil {
		return err
	}
	proc, err := b.ctx.NewProcess(proto, entry, cf.Ref())
	if err != nil {
		return errors.Wrapf(err, "process %q", doc.Name)
	}
	b.refs[doc.Name] = proc.Ref()
	return nil
}

func (b *builder) buildModule() (*rhir.Module, error) {
	processes := make([]rhir.Ref, 0, len(b.doc.Module.Processes))
	for _, name := range b.doc.Module.Processes {
		ref, err := b.resolveRef(name)
		if err != nil {
			return nil, err
		}
		processes = append(processes, ref)
	}
	instances := make([]rhir.Ref, 0, len(b.doc.Module.Instances))
	for _, name := range b.doc.Module.Instances {
		ref, err := b.resolveRef(name)
		if err != nil {
			return nil, err
		}
		instances = append(instances, ref)
	}
	module, err := b.ctx.NewModule(processes, instances)
	if err != nil {
		return nil, errors.Wrap(err, "module")
	}
	return module, nil
}
