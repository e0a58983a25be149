package graph

import (
	"fmt"

	"cpatminer/internal/kinds"
)

// FromDescriptor builds a graph from producer output.
// An invalid node version aborts the build.
func FromDescriptor(id int, d *Descriptor) (*Graph, error) {
	g := NewGraph(id)
	if d == nil {
		return g, nil
	}
	g.Project = d.Project
	g.Name = d.Name

	ids := make([]NodeID, len(d.Nodes))
	for i, spec := range d.Nodes {
		n, err := g.AddNode(spec.Label, kinds.Kind(spec.Kind), Version(spec.Version))
		if err != nil {
			return nil, fmt.Errorf("node %d (%q) of %s: %w", i, spec.Label, d.Name, err)
		}
		ids[i] = n.ID
	}

	for i, spec := range d.Edges {
		if spec.Src < 0 || spec.Src >= len(ids) || spec.Dst < 0 || spec.Dst >= len(ids) {
			return nil, fmt.Errorf("edge %d (%d -> %d) of %s: %w", i, spec.Src, spec.Dst, d.Name, ErrUnknownEndpoint)
		}
		g.AddEdge(ids[spec.Src], ids[spec.Dst], EdgeKind(spec.Label))
	}

	return g, nil
}

// FromFragment deep-copies the fragment's nodes into a fresh graph.
//
// Core action nodes are relabeled with their kind id. An edge is copied only
// when both its endpoints are fragment nodes; edges crossing the fragment
// boundary are dropped.
func FromFragment(id int, f Fragment) (*Graph, error) {
	g := NewGraph(id)
	g.Project = f.Project
	g.Name = f.Name

	type key struct {
		graph *Graph
		id    NodeID
	}
	copies := make(map[key]NodeID, len(f.Nodes))
	order := make([]key, 0, len(f.Nodes))

	// 1. Copy nodes
	for _, fn := range f.Nodes {
		if fn.Graph == nil {
			continue
		}
		k := key{fn.Graph, fn.ID}
		if _, dup := copies[k]; dup {
			continue
		}
		src := fn.Graph.Node(fn.ID)
		if src == nil {
			continue
		}
		label := src.Label
		if src.CoreAction {
			label = src.Kind.ID()
		}
		n, err := g.AddNode(label, src.Kind, src.Version)
		if err != nil {
			return nil, fmt.Errorf("fragment node %d of graph %d: %w", fn.ID, fn.Graph.ID, err)
		}
		copies[k] = n.ID
		order = append(order, k)
	}

	// 2. Copy edges whose source is also inside the fragment
	for _, k := range order {
		dst := copies[k]
		for _, e := range k.graph.InEdges(k.id) {
			src, ok := copies[key{k.graph, e.Src}]
			if !ok {
				continue
			}
			g.AddEdge(src, dst, e.Label)
		}
	}

	return g, nil
}

// Descriptor converts g back into producer form. Live nodes are renumbered
// densely in id order.
func (g *Graph) Descriptor() *Descriptor {
	d := &Descriptor{
		Project: g.Project,
		Name:    g.Name,
		Nodes:   make([]NodeSpec, 0, g.NumNodes()),
		Edges:   make([]EdgeSpec, 0, g.NumEdges()),
	}
	index := make(map[NodeID]int, g.NumNodes())
	for _, n := range g.Nodes() {
		index[n.ID] = len(d.Nodes)
		d.Nodes = append(d.Nodes, NodeSpec{Label: n.Label, Kind: int(n.Kind), Version: int(n.Version)})
	}
	for _, e := range g.Edges() {
		d.Edges = append(d.Edges, EdgeSpec{Src: index[e.Src], Dst: index[e.Dst], Label: string(e.Label)})
	}
	return d
}
