package retrieval

import (
	"sort"
	"strconv"
	"strings"

	"cpatminer/internal/graph"
)

// Config controls how candidate fragments are extracted.
type Config struct {
	MaxHops      int
	MaxNodes     int
	AllowedKinds map[graph.EdgeKind]bool
}

func DefaultConfig() Config {
	return Config{
		MaxHops:      2,
		MaxNodes:     8,
		AllowedKinds: nil,
	}
}

// Subgraph is the neighborhood of one seed, in discovery order.
type Subgraph struct {
	Seed    graph.NodeID
	NodeIDs []graph.NodeID
	Depths  map[graph.NodeID]int
}

// Fragment converts the subgraph into a fragment of g.
func (s *Subgraph) Fragment(g *graph.Graph) graph.Fragment {
	f := graph.Fragment{
		Project: g.Project,
		Name:    g.Name + "#" + strconv.Itoa(int(s.Seed)),
		Nodes:   make([]graph.FragmentNode, 0, len(s.NodeIDs)),
	}
	for _, id := range s.NodeIDs {
		f.Nodes = append(f.Nodes, graph.FragmentNode{Graph: g, ID: id})
	}
	return f
}

// ExtractFragments grows one subgraph around every core action node of g and
// drops subgraphs that cover the same node set as an earlier one.
func ExtractFragments(g *graph.Graph, cfg Config) []*Subgraph {
	if g == nil {
		return nil
	}

	var out []*Subgraph
	seen := make(map[string]bool)
	for _, n := range g.Nodes() {
		if !n.CoreAction {
			continue
		}
		sg := ExtractAround(g, n.ID, cfg)
		key := nodeSetSignature(sg.NodeIDs)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sg)
	}
	return out
}

// ExtractAround walks edges in both directions from seed, breadth first, up
// to cfg.MaxHops hops and cfg.MaxNodes nodes.
func ExtractAround(g *graph.Graph, seed graph.NodeID, cfg Config) *Subgraph {
	if cfg.MaxHops < 0 {
		cfg.MaxHops = 0
	}
	sg := &Subgraph{Seed: seed, Depths: map[graph.NodeID]int{}}
	if g.Node(seed) == nil {
		return sg
	}

	sg.Depths[seed] = 0
	sg.NodeIDs = append(sg.NodeIDs, seed)
	queue := []queueItem{{id: seed, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= cfg.MaxHops {
			continue
		}

		for _, next := range neighbors(g, cur.id, cfg) {
			if _, ok := sg.Depths[next]; ok {
				continue
			}
			if cfg.MaxNodes > 0 && len(sg.NodeIDs) >= cfg.MaxNodes {
				return sg
			}
			sg.Depths[next] = cur.depth + 1
			sg.NodeIDs = append(sg.NodeIDs, next)
			queue = append(queue, queueItem{id: next, depth: cur.depth + 1})
		}
	}
	return sg
}

type queueItem struct {
	id    graph.NodeID
	depth int
}

// neighbors lists out-edge targets, then in-edge sources, in edge order.
func neighbors(g *graph.Graph, id graph.NodeID, cfg Config) []graph.NodeID {
	var out []graph.NodeID
	for _, e := range g.OutEdges(id) {
		if edgeAllowed(e, cfg) {
			out = append(out, e.Dst)
		}
	}
	for _, e := range g.InEdges(id) {
		if edgeAllowed(e, cfg) {
			out = append(out, e.Src)
		}
	}
	return out
}

func edgeAllowed(e *graph.Edge, cfg Config) bool {
	if len(cfg.AllowedKinds) == 0 {
		return true
	}
	return cfg.AllowedKinds[e.Label]
}

func nodeSetSignature(ids []graph.NodeID) string {
	sorted := make([]int, len(ids))
	for i, id := range ids {
		sorted[i] = int(id)
	}
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
