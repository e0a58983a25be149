package exas

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"
)

// Feature is an interned label sequence.
type Feature interface {
	Len() int
	Labels() []string
	ID() int
	String() string
}

// SingleFeature wraps one label. A registry holds at most one SingleFeature
// per label, so equal labels are the same pointer.
type SingleFeature struct {
	id    int
	label string
	next  map[*SingleFeature]*SequentialFeature
}

func (f *SingleFeature) Len() int         { return 1 }
func (f *SingleFeature) Labels() []string { return []string{f.label} }
func (f *SingleFeature) ID() int          { return f.id }
func (f *SingleFeature) String() string   { return f.label }
func (f *SingleFeature) Label() string    { return f.label }

// SequentialFeature extends a shorter feature by one single feature.
// Sequential features form a trie rooted at single features: a sequence is
// reached by walking its labels from the root, never allocated twice.
type SequentialFeature struct {
	id     int
	prefix Feature
	last   *SingleFeature
	labels []string
	next   map[*SingleFeature]*SequentialFeature
}

func (f *SequentialFeature) Len() int { return len(f.labels) }

func (f *SequentialFeature) Labels() []string {
	out := make([]string, len(f.labels))
	copy(out, f.labels)
	return out
}

func (f *SequentialFeature) ID() int { return f.id }

func (f *SequentialFeature) String() string { return strings.Join(f.labels, " ") }

// Prefix is the feature this one extends.
func (f *SequentialFeature) Prefix() Feature { return f.prefix }

// Last is the single feature appended to Prefix.
func (f *SequentialFeature) Last() *SingleFeature { return f.last }

// Registry interns features for one mining run. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	singles map[string]*SingleFeature
	count   int
}

func NewRegistry() *Registry {
	return &Registry{singles: make(map[string]*SingleFeature)}
}

// Single returns the interned feature for label.
func (r *Registry) Single(label string) *SingleFeature {
	r.mu.RLock()
	f, ok := r.singles[label]
	r.mu.RUnlock()
	if ok {
		return f
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.singleLocked(label)
}

// Sequence returns the interned feature for labels. A one-label sequence is
// its SingleFeature.
func (r *Registry) Sequence(labels []string) (Feature, error) {
	if len(labels) == 0 {
		return nil, ErrEmptySequence
	}
	if len(labels) > MaxLength {
		return nil, fmt.Errorf("%w: %d positions", ErrSequenceTooLong, len(labels))
	}

	if f := r.lookup(labels); f != nil {
		return f, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	root := r.singleLocked(labels[0])
	var cur Feature = root
	next := root.next
	for i := 1; i < len(labels); i++ {
		s := r.singleLocked(labels[i])
		if next == nil {
			next = make(map[*SingleFeature]*SequentialFeature)
			setNext(cur, next)
		}
		child, ok := next[s]
		if !ok {
			r.count++
			child = &SequentialFeature{
				id:     r.count,
				prefix: cur,
				last:   s,
				labels: append([]string(nil), labels[:i+1]...),
			}
			next[s] = child
		}
		cur = child
		next = child.next
	}
	return cur, nil
}

// Extend returns the interned feature for f followed by label.
func (r *Registry) Extend(f Feature, label string) (Feature, error) {
	return r.Sequence(append(f.Labels(), label))
}

// Len is the number of distinct features interned so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

func (r *Registry) lookup(labels []string) Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	root, ok := r.singles[labels[0]]
	if !ok {
		return nil
	}
	var cur Feature = root
	next := root.next
	for _, label := range labels[1:] {
		s, ok := r.singles[label]
		if !ok {
			return nil
		}
		child, ok := next[s]
		if !ok {
			return nil
		}
		cur = child
		next = child.next
	}
	return cur
}

func (r *Registry) singleLocked(label string) *SingleFeature {
	if f, ok := r.singles[label]; ok {
		return f
	}
	r.count++
	f := &SingleFeature{id: r.count, label: label}
	r.singles[label] = f
	return f
}

func setNext(f Feature, next map[*SingleFeature]*SequentialFeature) {
	switch v := f.(type) {
	case *SingleFeature:
		v.next = next
	case *SequentialFeature:
		v.next = next
	}
}

// Compare orders features by length, then label by label. Labels compare
// by UTF-16 code units, so characters outside the BMP sort below U+E000..U+FFFF.
// It returns -1, 0 or +1.
func Compare(a, b Feature) int {
	if a.Len() != b.Len() {
		if a.Len() < b.Len() {
			return -1
		}
		return 1
	}
	la, lb := a.Labels(), b.Labels()
	for i := range la {
		if c := compareUTF16(la[i], lb[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareUTF16(a, b string) int {
	if a == b {
		return 0
	}
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}
	return 0
}
