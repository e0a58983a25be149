package extractor

import (
	"cpatminer/internal/graph"

	sitter "github.com/smacker/go-tree-sitter"
)

// Function is one function or method found in a source file.
type Function struct {
	Key       string `json:"key"` // Receiver-qualified name, e.g. "Server.Start"
	Name      string `json:"name"`
	Receiver  string `json:"receiver,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	BodyHash  string `json:"body_hash"`

	body *sitter.Node
	src  []byte
	tree *sitter.Tree
}

// LanguageExtractor defines the interface that each language producer must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	ExtractFunction(node *sitter.Node, sourceCode []byte) *Function
	// WalkBody appends the dependency graph of one function body to d.
	WalkBody(d *graph.Descriptor, body *sitter.Node, sourceCode []byte, version graph.Version)
}
