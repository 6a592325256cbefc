// Package types provides common type definitions used throughout ThreadStead.
// This package contains shared types to avoid circular dependencies between
// the parser, island, renderer, and compiler packages.
package types

import "time"

// NodeKind discriminates the variants of a template AST node.
type NodeKind uint8

const (
	// NodeRoot is the synthetic document root produced by the parser.
	NodeRoot NodeKind = iota
	// NodeElement is a tag with attributes and children.
	NodeElement
	// NodeText is raw character data.
	NodeText
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeElement:
		return "element"
	case NodeText:
		return "text"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute. Attribute order is preserved from the
// template source.
type Attr struct {
	Key   string
	Value string
}

// TemplateNode is one node of a parsed profile template. Trees are acyclic
// and finite; the parser enforces a configurable node-count ceiling so
// compilation cost stays bounded. Nodes are treated as immutable once built:
// transforms return new trees and share unchanged subtrees.
type TemplateNode struct {
	Kind NodeKind

	// Tag is the element name, lowercased by the tokenizer.
	// Only meaningful when Kind == NodeElement.
	Tag string

	// Attrs holds the element attributes in source order.
	Attrs []Attr

	// Children holds child nodes in document order. Nil for text nodes.
	Children []*TemplateNode

	// Text is the character data for NodeText nodes.
	Text string
}

// NewRoot creates a document root node.
func NewRoot(children ...*TemplateNode) *TemplateNode {
	return &TemplateNode{Kind: NodeRoot, Children: children}
}

// NewElement creates an element node.
func NewElement(tag string, attrs []Attr, children ...*TemplateNode) *TemplateNode {
	return &TemplateNode{Kind: NodeElement, Tag: tag, Attrs: attrs, Children: children}
}

// NewText creates a text node.
func NewText(text string) *TemplateNode {
	return &TemplateNode{Kind: NodeText, Text: text}
}

// Attr returns the value of the named attribute and whether it is present.
func (n *TemplateNode) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// CountNodes returns the number of nodes in the subtree rooted at n,
// including n itself.
func (n *TemplateNode) CountNodes() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += c.CountNodes()
	}
	return count
}

// Island is one interactive component occurrence discovered during
// compilation. Islands are created by island identification and consumed by
// rendering and client hydration; they are not persisted.
type Island struct {
	// ID is derived from the component name and the node's tree path, so
	// structurally identical occurrences keep stable ids across recompiles.
	ID string `json:"id"`
	// Component is the canonical registered component name.
	Component string `json:"component"`
	// Props holds the validated, coerced property values.
	Props map[string]any `json:"props"`
	// Children holds islands nested inside this island, preserving
	// composition rather than hoisting them to the top level.
	Children []*Island `json:"children,omitempty"`
	// Placeholder is the marker markup spliced into the static tree where
	// this island lives.
	Placeholder string `json:"placeholder"`
}

// Mode selects how much custom user-authored markup and styling is honored
// when rendering a profile.
type Mode string

const (
	// ModeDefault renders the platform-provided layout only. It bypasses
	// the parser and island pipeline entirely and is always renderable.
	ModeDefault Mode = "default"
	// ModeEnhanced renders the default layout plus the owner's custom CSS.
	ModeEnhanced Mode = "enhanced"
	// ModeAdvanced renders fully custom template markup with islands.
	ModeAdvanced Mode = "advanced"
)

// Valid reports whether m is a known rendering mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDefault, ModeEnhanced, ModeAdvanced:
		return true
	}
	return false
}

// Fallback returns the next safer mode, or "" when none exists.
func (m Mode) Fallback() Mode {
	switch m {
	case ModeAdvanced:
		return ModeEnhanced
	case ModeEnhanced:
		return ModeDefault
	}
	return ""
}

// SEOMetadata carries the head metadata emitted when SEO generation is
// enabled in the compile options.
type SEOMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CompiledTemplate is the orchestrator's output for one compilation request.
// Transient: it lives for the request/response, or in whatever cache the
// surrounding system applies.
type CompiledTemplate struct {
	Mode       Mode              `json:"mode"`
	StaticHTML string            `json:"staticHTML"`
	CustomCSS  string            `json:"customCSS,omitempty"`
	Islands    []*Island         `json:"islands"`
	SEO        *SEOMetadata      `json:"seo,omitempty"`
	Fallback   *CompiledTemplate `json:"fallback,omitempty"`
	CompiledAt time.Time         `json:"compiledAt"`
	Warnings   []string          `json:"warnings"`
	Errors     []string          `json:"errors"`
}

// IslandCount returns the number of islands including nested children.
func (c *CompiledTemplate) IslandCount() int {
	return countIslands(c.Islands)
}

func countIslands(islands []*Island) int {
	n := len(islands)
	for _, is := range islands {
		n += countIslands(is.Children)
	}
	return n
}

// CompileOptions controls one compilation.
type CompileOptions struct {
	// Mode is the requested rendering mode.
	Mode Mode
	// Optimize collapses whitespace-only text runs in the static output.
	Optimize bool
	// SEOMetadata emits head metadata derived from the resident data.
	SEOMetadata bool
	// MaxIslands caps the island count. Exceeding it is a terminal error,
	// never a silent truncation. Zero means the configured default.
	MaxIslands int
	// MaxNodes caps the parsed node count. Zero means the configured default.
	MaxNodes int
}

// CompileRequest is one unit of work for the compiler: the owner's template
// source, the selected mode and custom CSS from the profile record, and the
// resident data exposed to the rendering context.
type CompileRequest struct {
	Source    string
	CustomCSS string
	Data      ResidentData
	Options   CompileOptions
}
