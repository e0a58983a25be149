package exas

import (
	"encoding/binary"
	"encoding/hex"
	"sort"

	"cpatminer/internal/graph"

	"lukechampine.com/blake3"
)

// Signature summarizes a fragment graph by the multiset of its fingerprints.
// Fragments with equal keys are candidates for exact comparison.
type Signature struct {
	Nodes  int     `json:"nodes"`
	Edges  int     `json:"edges"`
	Values []int32 `json:"values"`
	Key    string  `json:"key"`
}

// NewSignature sorts the fingerprint values of g and hashes them, together
// with the graph's size, into a bucket key.
func NewSignature(g *graph.Graph, fps []Fingerprint) Signature {
	values := make([]int32, len(fps))
	for i, fp := range fps {
		values[i] = fp.Value
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	sig := Signature{Values: values}
	if g != nil {
		sig.Nodes = g.NumNodes()
		sig.Edges = g.NumEdges()
	}

	buf := make([]byte, 0, 8+4*len(values))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sig.Nodes))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sig.Edges))
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	sum := blake3.Sum256(buf)
	sig.Key = hex.EncodeToString(sum[:])
	return sig
}

// Shares reports whether the two signatures have at least one fingerprint in common.
func (s Signature) Shares(other Signature) bool {
	i, j := 0, 0
	for i < len(s.Values) && j < len(other.Values) {
		switch {
		case s.Values[i] == other.Values[j]:
			return true
		case s.Values[i] < other.Values[j]:
			i++
		default:
			j++
		}
	}
	return false
}
