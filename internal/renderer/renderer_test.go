package renderer

import (
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadstead/threadstead/internal/components"
	"github.com/threadstead/threadstead/internal/config"
	"github.com/threadstead/threadstead/internal/islands"
	"github.com/threadstead/threadstead/internal/parser"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
)

func newTestRenderer(t *testing.T) (*Renderer, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	require.NoError(t, components.RegisterBuiltins(reg))
	return New(reg, config.DefaultContainerTags(), config.DefaultUniversalAttributes()), reg
}

func parseTree(t *testing.T, source string) *types.TemplateNode {
	t.Helper()
	p := parser.New(config.DefaultMaxNodes, config.DefaultDisallowedTags())
	root, err := p.Parse(source)
	require.NoError(t, err)
	return root
}

func testData() *types.ResidentData {
	data := components.SampleResidentData("pixel-smith")
	return &data
}

func TestRender_TextIsEscaped(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := types.NewRoot(types.NewText(`tags <b> & "quotes"`))

	html, warnings, errs := r.Render(context.Background(), root, testData(), nil)
	assert.Empty(t, warnings)
	assert.Empty(t, errs)
	assert.Contains(t, html, "&lt;b&gt;")
	assert.NotContains(t, html, "<b>")
}

func TestRender_ContainerAllowList(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := parseTree(t, `<section class="x"><blink>nope</blink><p>yes</p></section>`)

	html, warnings, _ := r.Render(context.Background(), root, testData(), nil)
	assert.Contains(t, html, `<section class="x">`)
	assert.Contains(t, html, "<p>yes</p>")
	assert.NotContains(t, html, "blink")
	assert.NotContains(t, html, "nope")
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "<blink>")
}

func TestRender_ComponentByTag(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := parseTree(t, `<Bio />`)

	data := testData()
	html, warnings, _ := r.Render(context.Background(), root, data, nil)
	assert.Empty(t, warnings)
	assert.Contains(t, html, `<p class="profile-bio">`)
	assert.Contains(t, html, "one pixel at a time")
}

func TestRender_DataComponentSecondaryLookup(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := types.NewRoot(types.NewElement("div", []types.Attr{
		{Key: "data-component", Value: "profilephoto"},
		{Key: "size", Value: "lg"},
	}))

	html, _, _ := r.Render(context.Background(), root, testData(), nil)
	assert.Contains(t, html, "profile-photo")
	assert.Contains(t, html, "photo-lg")
}

func TestRender_FailSoftComponent(t *testing.T) {
	r, reg := newTestRenderer(t)
	require.NoError(t, reg.Register(&registry.Registration{
		Name:  "Boom",
		Props: map[string]registry.PropSpec{},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			panic("construction failure")
		},
	}))

	root := parseTree(t, `<div><Boom /><Bio /></div>`)
	html, warnings, errs := r.Render(context.Background(), root, testData(), nil)

	assert.Contains(t, html, "stead-render-error")
	assert.Contains(t, html, `data-component="Boom"`)
	// The failing sibling must not take Bio down with it.
	assert.Contains(t, html, `profile-bio`)

	assert.Empty(t, warnings)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "Boom failed to render")
}

func TestRender_IslandPlaceholders(t *testing.T) {
	r, reg := newTestRenderer(t)
	identifier := islands.New(reg, config.DefaultMaxIslands, config.DefaultUniversalAttributes())

	result, err := identifier.Identify(parseTree(t, `<div><ProfilePhoto size="xl" shape="circle" /></div>`))
	require.NoError(t, err)
	require.Len(t, result.Islands, 1)

	html, warnings, errs := r.Render(context.Background(), result.Tree, testData(), result.Islands)
	assert.Empty(t, warnings)
	assert.Empty(t, errs)
	assert.Contains(t, html, `data-island="`+result.Islands[0].ID+`"`)
	assert.Contains(t, html, `data-component="ProfilePhoto"`)
	assert.Contains(t, html, "photo-xl")
	assert.Contains(t, html, "photo-circle")
}

func TestRender_ContainerComponentWrapsChildren(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := parseTree(t, `<ProfileHero variant="tape"><p>inside</p></ProfileHero>`)

	html, _, _ := r.Render(context.Background(), root, testData(), nil)
	assert.Contains(t, html, `hero-tape`)
	assert.Contains(t, html, "<p>inside</p>")
}

func TestRender_VoidContainerTag(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := parseTree(t, `<div><hr><img src="a.png" alt="pic"></div>`)

	html, warnings, _ := r.Render(context.Background(), root, testData(), nil)
	assert.Empty(t, warnings)
	assert.Contains(t, html, "<hr />")
	assert.Contains(t, html, `<img src="a.png" alt="pic" />`)
	assert.NotContains(t, html, "</img>")
}

func TestRender_PlainTagDropsEventHandlers(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := parseTree(t, `<div class="card" onclick="alert(1)" onmouseover="steal()">hi</div>`)

	html, warnings, _ := r.Render(context.Background(), root, testData(), nil)
	assert.Contains(t, html, `<div class="card">`)
	assert.NotContains(t, html, "onclick")
	assert.NotContains(t, html, "onmouseover")
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `"onclick"`)
}

func TestRender_PlainTagBlocksScriptURLs(t *testing.T) {
	r, _ := newTestRenderer(t)
	root := parseTree(t, `<div><a href="javascript:alert(1)">bad</a><a href="/posts/1">good</a></div>`)

	html, warnings, _ := r.Render(context.Background(), root, testData(), nil)
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, `<a href="/posts/1">good</a>`)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "script URL")
}

func TestRender_UnregisteredIslandIsError(t *testing.T) {
	r, reg := newTestRenderer(t)
	identifier := islands.New(reg, config.DefaultMaxIslands, config.DefaultUniversalAttributes())

	result, err := identifier.Identify(parseTree(t, `<div><FollowButton /></div>`))
	require.NoError(t, err)
	require.Len(t, result.Islands, 1)

	reg.Remove("FollowButton")
	html, _, errs := r.Render(context.Background(), result.Tree, testData(), result.Islands)

	assert.NotContains(t, html, "data-island")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "unregistered component FollowButton")
}
