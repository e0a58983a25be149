package extractor

import (
	"context"
	"fmt"

	"cpatminer/internal/graph"
	"cpatminer/internal/kinds"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor turns before/after versions of a source file into change-graph
// descriptors, one per modified function.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "go":
		langExt = &GoExtractor{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// Functions parses sourceCode and returns its functions in source order.
func (e *Extractor) Functions(ctx context.Context, sourceCode []byte) ([]*Function, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	var functions []*Function
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			fn := e.langExtractor.ExtractFunction(c.Node, sourceCode)
			if fn == nil {
				continue
			}
			fn.tree = tree
			functions = append(functions, fn)
		}
	}
	return functions, nil
}

// ExtractChange builds one descriptor per function present in both versions
// whose body changed. Old nodes come from before, new nodes from after, and
// matching operations across versions are linked by mapping edges.
func (e *Extractor) ExtractChange(ctx context.Context, project, path string, before, after []byte) ([]*graph.Descriptor, error) {
	oldFuncs, err := e.Functions(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s (before): %w", path, err)
	}
	newFuncs, err := e.Functions(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s (after): %w", path, err)
	}

	oldByKey := make(map[string]*Function, len(oldFuncs))
	for _, fn := range oldFuncs {
		oldByKey[fn.Key] = fn
	}

	var out []*graph.Descriptor
	for _, nf := range newFuncs {
		of, ok := oldByKey[nf.Key]
		if !ok || of.BodyHash == nf.BodyHash {
			continue
		}
		d := &graph.Descriptor{
			Project: project,
			Name:    path + ":" + nf.Key,
		}
		e.langExtractor.WalkBody(d, of.body, of.src, graph.Old)
		e.langExtractor.WalkBody(d, nf.body, nf.src, graph.New)
		linkVersions(d)
		out = append(out, d)
	}
	return out, nil
}

// linkVersions maps the i-th old operation onto the i-th new operation with
// the same kind and label.
func linkVersions(d *graph.Descriptor) {
	type key struct {
		kind  int
		label string
	}
	pending := make(map[key][]int)
	for i, n := range d.Nodes {
		if n.Version != int(graph.Old) || !mappable(n) {
			continue
		}
		k := key{n.Kind, n.Label}
		pending[k] = append(pending[k], i)
	}
	for i, n := range d.Nodes {
		if n.Version != int(graph.New) || !mappable(n) {
			continue
		}
		k := key{n.Kind, n.Label}
		olds := pending[k]
		if len(olds) == 0 {
			continue
		}
		d.Edges = append(d.Edges, graph.EdgeSpec{Src: olds[0], Dst: i, Label: string(graph.EdgeMapping)})
		pending[k] = olds[1:]
	}
}

func mappable(n graph.NodeSpec) bool {
	k := kinds.Kind(n.Kind)
	return k.IsCoreAction() || k == kinds.MethodInvocation
}
