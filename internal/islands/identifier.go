// Package islands discovers interactive component occurrences in a template
// AST, validates their declared properties against the component schemas,
// and splices hydration placeholders into the tree.
package islands

import (
	"fmt"
	"hash/crc32"

	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
)

// Result carries the outcome of island identification: the transformed tree
// (placeholders substituted, unchanged subtrees shared with the input), the
// island records, and the non-fatal diagnostics raised along the way.
type Result struct {
	Tree     *types.TemplateNode
	Islands  []*types.Island
	Warnings []string
}

// Identifier walks template trees against a component registry.
type Identifier struct {
	registry   *registry.Registry
	maxIslands int
	universal  []string
}

// New creates an identifier. maxIslands bounds the total island count,
// nested islands included; universalAttrs are attribute names (or "-"
// prefixes) passed through without schema validation.
func New(reg *registry.Registry, maxIslands int, universalAttrs []string) *Identifier {
	if maxIslands < 1 {
		maxIslands = 50
	}
	return &Identifier{
		registry:   reg,
		maxIslands: maxIslands,
		universal:  universalAttrs,
	}
}

// Identify transforms root, replacing every node whose tag matches a
// registered interactive component with a placeholder element carrying
// data-island and data-component markers. Matched occurrences nested inside
// an island become children of that island rather than top-level entries.
// Exceeding the island ceiling is a terminal error, never a truncation.
func (id *Identifier) Identify(root *types.TemplateNode) (*Result, error) {
	collector := errors.NewCollector()

	tree, found := id.walk(root, "", "", collector)

	total := countIslands(found)
	if total > id.maxIslands {
		return nil, errors.NewLimitError(errors.CodeIslandLimit,
			fmt.Sprintf("template declares %d islands, limit is %d", total, id.maxIslands))
	}

	return &Result{
		Tree:     tree,
		Islands:  found,
		Warnings: collector.Warnings(),
	}, nil
}

// walk returns the transformed node and the islands attaching at this level.
// path is the dotted child-index chain from the root; parent is the
// canonical name of the enclosing component, if any.
func (id *Identifier) walk(node *types.TemplateNode, path, parent string, collector *errors.Collector) (*types.TemplateNode, []*types.Island) {
	switch node.Kind {
	case types.NodeText:
		return node, nil

	case types.NodeElement:
		if reg, ok := id.registry.Lookup(node.Tag); ok && reg.Interactive {
			return id.islandFor(node, reg, path, parent, collector)
		}

	case types.NodeRoot:
		// Fall through to the child walk below.
	}

	children, islands, changed := id.walkChildren(node, path, parent, collector)
	if !changed {
		return node, islands
	}

	clone := *node
	clone.Children = children
	return &clone, islands
}

func (id *Identifier) walkChildren(node *types.TemplateNode, path, parent string, collector *errors.Collector) ([]*types.TemplateNode, []*types.Island, bool) {
	var islands []*types.Island
	changed := false
	children := make([]*types.TemplateNode, len(node.Children))
	for i, child := range node.Children {
		childPath := extendPath(path, i)
		newChild, childIslands := id.walk(child, childPath, parent, collector)
		if newChild != child {
			changed = true
		}
		children[i] = newChild
		islands = append(islands, childIslands...)
	}
	return children, islands, changed
}

func (id *Identifier) islandFor(node *types.TemplateNode, reg *registry.Registration, path, parent string, collector *errors.Collector) (*types.TemplateNode, []*types.Island) {
	id.checkRelationship(reg, parent, collector)

	props := ValidateProps(reg, node.Attrs, id.universal, collector)

	children, childIslands, _ := id.walkChildren(node, path, reg.Name, collector)
	if reg.Kind == registry.KindLeaf && len(node.Children) > 0 {
		collector.Warnf(reg.Name, "component %s does not accept children; they will be ignored on hydration", reg.Name)
	}

	islandID := DeriveID(reg.Name, path)
	placeholder := types.NewElement("div", []types.Attr{
		{Key: "data-island", Value: islandID},
		{Key: "data-component", Value: reg.Name},
	}, children...)

	island := &types.Island{
		ID:          islandID,
		Component:   reg.Name,
		Props:       props,
		Children:    childIslands,
		Placeholder: fmt.Sprintf(`<div data-island=%q data-component=%q></div>`, islandID, reg.Name),
	}

	return placeholder, []*types.Island{island}
}

func (id *Identifier) checkRelationship(reg *registry.Registration, parent string, collector *errors.Collector) {
	if reg.RequiredParent != "" && reg.RequiredParent != parent {
		collector.Warnf(reg.Name, "component %s must appear inside %s", reg.Name, reg.RequiredParent)
	}
	if parent == "" {
		return
	}
	parentReg, ok := id.registry.Get(parent)
	if !ok || len(parentReg.AcceptsChildren) == 0 {
		return
	}
	for _, accepted := range parentReg.AcceptsChildren {
		if accepted == reg.Name {
			return
		}
	}
	collector.Warnf(parent, "component %s does not accept %s children", parent, reg.Name)
}

// DeriveID computes the deterministic island id for a component occurrence.
// Structurally identical occurrences across recompilations hash to the same
// id, which is what lets the client reconcile islands across re-renders.
func DeriveID(component, path string) string {
	sum := crc32.ChecksumIEEE([]byte(component + "|" + path))
	return fmt.Sprintf("island-%08x", sum)
}

func extendPath(path string, index int) string {
	if path == "" {
		return fmt.Sprintf("%d", index)
	}
	return fmt.Sprintf("%s.%d", path, index)
}

func countIslands(islands []*types.Island) int {
	n := len(islands)
	for _, island := range islands {
		n += countIslands(island.Children)
	}
	return n
}
