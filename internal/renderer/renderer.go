// Package renderer reconstructs live component output from a template AST
// and a resident data context.
//
// Rendering is fail-soft at node granularity: a component whose construction
// or render fails is replaced with an inline error placeholder in that
// position only, and its siblings render normally. Plain HTML tags render
// only when they appear on the configured container allow-list, and their
// attributes are filtered to the universal set plus a few link and media
// attributes; anything else is dropped with a warning.
package renderer

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/a-h/templ"

	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/islands"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
)

var voidTags = map[string]struct{}{
	"area": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "source": {}, "track": {}, "wbr": {},
}

// plainTagAttrs are the non-universal attributes a plain container tag may
// carry. Everything else (event handlers included) is dropped.
var plainTagAttrs = map[string]struct{}{
	"href": {}, "src": {}, "alt": {}, "title": {}, "rel": {},
	"width": {}, "height": {}, "loading": {}, "colspan": {}, "rowspan": {},
}

// Renderer turns template trees into serialized HTML.
type Renderer struct {
	registry  *registry.Registry
	container map[string]struct{}
	universal []string
}

// New creates a renderer. containerTags is the allow-list of plain HTML
// tags; universalAttrs mirrors the island identifier's passthrough set for
// trees that were never run through island identification.
func New(reg *registry.Registry, containerTags, universalAttrs []string) *Renderer {
	allowed := make(map[string]struct{}, len(containerTags))
	for _, tag := range containerTags {
		allowed[strings.ToLower(tag)] = struct{}{}
	}
	return &Renderer{
		registry:  reg,
		container: allowed,
		universal: universalAttrs,
	}
}

// Render serializes root against data. islandList, which may be nil, maps
// placeholder markers back to their validated island records. Returns the
// HTML, the warnings raised by dropped tags and attributes, and the errors
// raised by components that failed to render. Errors here are fail-soft:
// the HTML is still complete, with placeholders standing in for the failed
// components.
func (r *Renderer) Render(ctx context.Context, root *types.TemplateNode, data *types.ResidentData, islandList []*types.Island) (string, []string, []string) {
	collector := errors.NewCollector()
	index := make(map[string]*types.Island)
	indexIslands(index, islandList)

	var sb strings.Builder
	r.renderNode(ctx, &sb, root, data, index, collector)

	var errs []string
	if collector.HasErrors() {
		errs = collector.Errors()
	}
	return sb.String(), collector.Warnings(), errs
}

func indexIslands(index map[string]*types.Island, list []*types.Island) {
	for _, island := range list {
		index[island.ID] = island
		indexIslands(index, island.Children)
	}
}

func (r *Renderer) renderNode(ctx context.Context, sb *strings.Builder, node *types.TemplateNode, data *types.ResidentData, index map[string]*types.Island, collector *errors.Collector) {
	switch node.Kind {
	case types.NodeRoot:
		for _, child := range node.Children {
			r.renderNode(ctx, sb, child, data, index, collector)
		}

	case types.NodeText:
		sb.WriteString(html.EscapeString(node.Text))

	case types.NodeElement:
		r.renderElement(ctx, sb, node, data, index, collector)
	}
}

func (r *Renderer) renderElement(ctx context.Context, sb *strings.Builder, node *types.TemplateNode, data *types.ResidentData, index map[string]*types.Island, collector *errors.Collector) {
	// Island placeholders carry their validated props in the island record.
	if islandID, ok := node.Attr("data-island"); ok {
		if island, found := index[islandID]; found {
			r.renderIsland(ctx, sb, node, island, data, index, collector)
			return
		}
	}

	// A data-component marker without an island record still resolves via
	// the case-insensitive secondary lookup.
	if marker, ok := node.Attr("data-component"); ok {
		if reg, found := r.registry.Lookup(marker); found {
			props := islands.ValidateProps(reg, stripMarkerAttrs(node.Attrs), r.universal, collector)
			r.renderComponent(ctx, sb, reg, props, data, r.renderChildren(ctx, node, data, index, collector), collector)
			return
		}
	}

	// First-class component match on the tag itself.
	if reg, ok := r.registry.Lookup(node.Tag); ok {
		props := islands.ValidateProps(reg, node.Attrs, r.universal, collector)
		r.renderComponent(ctx, sb, reg, props, data, r.renderChildren(ctx, node, data, index, collector), collector)
		return
	}

	// Plain tags render only from the container allow-list.
	if _, allowed := r.container[node.Tag]; !allowed {
		collector.Warnf("", "tag <%s> is not an allowed container tag; dropped", node.Tag)
		return
	}

	sb.WriteByte('<')
	sb.WriteString(node.Tag)
	for _, attr := range node.Attrs {
		if !r.allowPlainAttr(attr, collector, node.Tag) {
			continue
		}
		fmt.Fprintf(sb, ` %s="%s"`, attr.Key, html.EscapeString(attr.Value))
	}
	if _, void := voidTags[node.Tag]; void {
		sb.WriteString(" />")
		return
	}
	sb.WriteByte('>')
	for _, child := range node.Children {
		r.renderNode(ctx, sb, child, data, index, collector)
	}
	fmt.Fprintf(sb, "</%s>", node.Tag)
}

func (r *Renderer) renderIsland(ctx context.Context, sb *strings.Builder, node *types.TemplateNode, island *types.Island, data *types.ResidentData, index map[string]*types.Island, collector *errors.Collector) {
	reg, ok := r.registry.Lookup(island.Component)
	if !ok {
		collector.Errorf(island.Component, "island %s references unregistered component %s", island.ID, island.Component)
		return
	}

	// The marker wrapper survives into the static output so the client can
	// attach interactive behavior after page load.
	fmt.Fprintf(sb, `<div data-island="%s" data-component="%s">`,
		html.EscapeString(island.ID), html.EscapeString(island.Component))
	r.renderComponent(ctx, sb, reg, island.Props, data, r.renderChildren(ctx, node, data, index, collector), collector)
	sb.WriteString("</div>")
}

func (r *Renderer) renderChildren(ctx context.Context, node *types.TemplateNode, data *types.ResidentData, index map[string]*types.Island, collector *errors.Collector) string {
	if len(node.Children) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, child := range node.Children {
		r.renderNode(ctx, &sb, child, data, index, collector)
	}
	return sb.String()
}

// renderComponent instantiates one component and writes its output. Any
// failure, panic included, is contained here and replaced by an inline
// error element so one bad component never takes down the rest of the page.
func (r *Renderer) renderComponent(ctx context.Context, sb *strings.Builder, reg *registry.Registration, props map[string]any, data *types.ResidentData, childrenHTML string, collector *errors.Collector) {
	var buf strings.Builder

	err := func() (renderErr error) {
		defer func() {
			if rec := recover(); rec != nil {
				renderErr = errors.NewRenderError(errors.CodeRenderFailed,
					fmt.Sprintf("component %s panicked: %v", reg.Name, rec))
			}
		}()
		component := reg.Implementation(props, data, templ.Raw(childrenHTML))
		return component.Render(ctx, &buf)
	}()

	if err != nil {
		collector.Errorf(reg.Name, "component %s failed to render: %v", reg.Name, err)
		fmt.Fprintf(sb, `<span class="stead-render-error" data-component="%s">component %s unavailable</span>`,
			html.EscapeString(reg.Name), html.EscapeString(reg.Name))
		return
	}

	sb.WriteString(buf.String())
}

// allowPlainAttr decides whether an attribute survives onto a plain
// container tag: the universal passthrough set plus a small allow-list of
// link and media attributes, with script-scheme URLs rejected.
func (r *Renderer) allowPlainAttr(attr types.Attr, collector *errors.Collector, tag string) bool {
	key := strings.ToLower(attr.Key)
	_, linkAttr := plainTagAttrs[key]
	if !linkAttr && !islands.IsUniversal(key, r.universal) {
		collector.Warnf("", "attribute %q is not allowed on <%s>; dropped", attr.Key, tag)
		return false
	}
	if key == "href" || key == "src" {
		value := strings.ToLower(strings.TrimSpace(attr.Value))
		if strings.HasPrefix(value, "javascript:") || strings.HasPrefix(value, "vbscript:") {
			collector.Warnf("", "attribute %q on <%s> carries a script URL; dropped", attr.Key, tag)
			return false
		}
	}
	return true
}

func stripMarkerAttrs(attrs []types.Attr) []types.Attr {
	out := make([]types.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "data-island" || attr.Key == "data-component" {
			continue
		}
		out = append(out, attr)
	}
	return out
}
