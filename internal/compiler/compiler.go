// Package compiler orchestrates profile template compilation: parse,
// island identification, static serialization, and the graceful-degradation
// fallback chain across rendering modes.
//
// Mode semantics:
//
//	default  — platform layout only; bypasses the parser and island
//	           pipeline entirely, so it is always renderable.
//	enhanced — platform layout plus the owner's custom CSS.
//	advanced — fully custom template markup with hydratable islands; a
//	           successful compile carries the enhanced-mode compilation as
//	           its fallback.
//
// Fatal failures (syntax errors, node or island limits) return no partial
// compiled template; callers must consult Result.Success before reading
// Result.Compiled.
package compiler

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/threadstead/threadstead/internal/config"
	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/islands"
	"github.com/threadstead/threadstead/internal/logging"
	"github.com/threadstead/threadstead/internal/parser"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/renderer"
	"github.com/threadstead/threadstead/internal/types"
)

// Result is the outcome of one compilation request.
type Result struct {
	Success  bool                    `json:"success"`
	Compiled *types.CompiledTemplate `json:"compiled,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
}

// Compiler sequences the compilation pipeline. It is safe for concurrent
// use: the registry and configuration are read-only after construction and
// each compilation carries its own state.
type Compiler struct {
	registry *registry.Registry
	cfg      config.CompilerConfig
	renderer *renderer.Renderer
	logger   logging.Logger
}

// New creates a compiler over the given component registry and settings.
func New(reg *registry.Registry, cfg config.CompilerConfig, logger logging.Logger) *Compiler {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Compiler{
		registry: reg,
		cfg:      cfg,
		renderer: renderer.New(reg, cfg.ContainerTags, cfg.UniversalAttributes),
		logger:   logger.WithComponent("compiler"),
	}
}

// Compile runs one compilation request to completion.
func (c *Compiler) Compile(ctx context.Context, req types.CompileRequest) Result {
	mode := req.Options.Mode
	if mode == "" {
		mode = types.Mode(c.cfg.DefaultMode)
	}
	if !mode.Valid() {
		return failure("%v", errors.NewConfigError(errors.CodeUnknownMode,
			fmt.Sprintf("unknown rendering mode %q", string(mode))))
	}

	start := time.Now()
	result := c.compileMode(ctx, mode, req)
	c.logger.Debug(ctx, "compilation finished",
		"mode", string(mode),
		"success", result.Success,
		"duration", time.Since(start).String(),
	)
	return result
}

// CompileBatch compiles each request independently, sharing no mutable
// state across items. Results come back in input order.
func (c *Compiler) CompileBatch(ctx context.Context, reqs []types.CompileRequest) []Result {
	results := make([]Result, len(reqs))
	for i, req := range reqs {
		results[i] = c.Compile(ctx, req)
	}
	return results
}

func (c *Compiler) compileMode(ctx context.Context, mode types.Mode, req types.CompileRequest) Result {
	switch mode {
	case types.ModeDefault:
		return c.compileDefault(ctx, req)
	case types.ModeEnhanced:
		return c.compileEnhanced(ctx, req)
	case types.ModeAdvanced:
		return c.compileAdvanced(ctx, req)
	}
	return failure("%v", errors.NewConfigError(errors.CodeUnknownMode,
		fmt.Sprintf("unknown rendering mode %q", string(mode))))
}

// compileDefault renders the platform layout with no custom markup or CSS.
func (c *Compiler) compileDefault(ctx context.Context, req types.CompileRequest) Result {
	html, warnings, renderErrs := c.renderer.Render(ctx, defaultLayout(), &req.Data, nil)

	compiled := &types.CompiledTemplate{
		Mode:       types.ModeDefault,
		StaticHTML: html,
		Islands:    []*types.Island{},
		CompiledAt: time.Now(),
		Warnings:   warnings,
		Errors:     append([]string{}, renderErrs...),
	}
	c.applySEO(compiled, req)
	return Result{Success: true, Compiled: compiled}
}

// compileEnhanced is the default layout plus the owner's custom CSS.
func (c *Compiler) compileEnhanced(ctx context.Context, req types.CompileRequest) Result {
	result := c.compileDefault(ctx, req)
	result.Compiled.Mode = types.ModeEnhanced
	result.Compiled.CustomCSS = sanitizeCSS(req.CustomCSS)
	return result
}

// compileAdvanced parses the owner's markup, identifies islands, and
// serializes the static output. On success the enhanced-mode compilation
// rides along as the fallback.
func (c *Compiler) compileAdvanced(ctx context.Context, req types.CompileRequest) Result {
	maxNodes := req.Options.MaxNodes
	if maxNodes <= 0 {
		maxNodes = c.cfg.MaxNodes
	}
	maxIslands := req.Options.MaxIslands
	if maxIslands <= 0 {
		maxIslands = c.cfg.MaxIslands
	}

	p := parser.New(maxNodes, c.cfg.DisallowedTags)
	tree, err := p.Parse(req.Source)
	if errors.IsFatal(err) {
		c.logger.Warn(ctx, err, "advanced compilation failed")
		return failure("%v", err)
	}

	identifier := islands.New(c.registry, maxIslands, c.cfg.UniversalAttributes)
	identified, err := identifier.Identify(tree)
	if errors.IsFatal(err) {
		c.logger.Warn(ctx, err, "advanced compilation failed")
		return failure("%v", err)
	}

	staticTree := identified.Tree
	if req.Options.Optimize || c.cfg.Optimize {
		staticTree = stripBlankText(staticTree)
	}

	html, renderWarnings, renderErrs := c.renderer.Render(ctx, staticTree, &req.Data, identified.Islands)

	warnings := append(append([]string{}, identified.Warnings...), renderWarnings...)
	compiled := &types.CompiledTemplate{
		Mode:       types.ModeAdvanced,
		StaticHTML: html,
		CustomCSS:  sanitizeCSS(req.CustomCSS),
		Islands:    identified.Islands,
		CompiledAt: time.Now(),
		Warnings:   warnings,
		Errors:     append([]string{}, renderErrs...),
	}
	c.applySEO(compiled, req)

	fallback := c.compileEnhanced(ctx, req)
	compiled.Fallback = fallback.Compiled

	return Result{Success: true, Compiled: compiled}
}

func (c *Compiler) applySEO(compiled *types.CompiledTemplate, req types.CompileRequest) {
	if !req.Options.SEOMetadata && !c.cfg.SEOMetadata {
		return
	}
	description := req.Data.Bio
	if len(description) > 160 {
		// Back up to a rune boundary so the cut never splits a multibyte
		// character.
		cut := 157
		for cut > 0 && !utf8.RuneStart(description[cut]) {
			cut--
		}
		description = description[:cut] + "..."
	}
	title := req.Data.Owner.DisplayName
	if title == "" {
		title = req.Data.Owner.Handle
	}
	compiled.SEO = &types.SEOMetadata{
		Title:       title + " — ThreadStead",
		Description: description,
	}
}

// defaultLayout is the canonical platform page: hero with photo, name, and
// bio, then posts, links, and guestbook. Expressed as a template tree so it
// flows through the same renderer as custom markup.
func defaultLayout() *types.TemplateNode {
	return types.NewRoot(
		types.NewElement("profilehero", nil,
			types.NewElement("profilephoto", []types.Attr{{Key: "size", Value: "lg"}}),
			types.NewElement("displayname", []types.Attr{{Key: "as", Value: "h1"}}),
			types.NewElement("bio", nil),
		),
		types.NewElement("main", []types.Attr{{Key: "class", Value: "profile-body"}},
			types.NewElement("blogposts", nil),
			types.NewElement("websitedisplay", nil),
			types.NewElement("guestbook", nil),
		),
	)
}

// stripBlankText drops whitespace-only text nodes, sharing untouched
// subtrees with the input.
func stripBlankText(node *types.TemplateNode) *types.TemplateNode {
	if node.Kind == types.NodeText || len(node.Children) == 0 {
		return node
	}

	changed := false
	children := make([]*types.TemplateNode, 0, len(node.Children))
	for _, child := range node.Children {
		if child.Kind == types.NodeText && strings.TrimSpace(child.Text) == "" {
			changed = true
			continue
		}
		stripped := stripBlankText(child)
		if stripped != child {
			changed = true
		}
		children = append(children, stripped)
	}
	if !changed {
		return node
	}

	clone := *node
	clone.Children = children
	return &clone
}

// sanitizeCSS blocks the few constructs that would let custom CSS escape
// its style element or pull remote content.
func sanitizeCSS(css string) string {
	if css == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"</style", "",
		"javascript:", "",
		"expression(", "",
		"@import", "",
	)
	return replacer.Replace(css)
}

func failure(format string, args ...any) Result {
	return Result{
		Success: false,
		Errors:  []string{fmt.Sprintf(format, args...)},
	}
}
