package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadstead/threadstead/internal/config"
	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/types"
)

func newTestParser() *Parser {
	return New(config.DefaultMaxNodes, config.DefaultDisallowedTags())
}

func TestParse_SimpleTemplate(t *testing.T) {
	p := newTestParser()

	root, err := p.Parse(`<div class="hero">hello <span>world</span></div>`)
	require.NoError(t, err)
	require.Equal(t, types.NodeRoot, root.Kind)
	require.Len(t, root.Children, 1)

	div := root.Children[0]
	assert.Equal(t, types.NodeElement, div.Kind)
	assert.Equal(t, "div", div.Tag)
	class, ok := div.Attr("class")
	assert.True(t, ok)
	assert.Equal(t, "hero", class)

	require.Len(t, div.Children, 2)
	assert.Equal(t, types.NodeText, div.Children[0].Kind)
	assert.Equal(t, "hello ", div.Children[0].Text)
	assert.Equal(t, "span", div.Children[1].Tag)
}

func TestParse_SelfClosingComponentTag(t *testing.T) {
	p := newTestParser()

	root, err := p.Parse(`<ProfilePhoto size="xl" shape="circle" />`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	el := root.Children[0]
	// The tokenizer lowercases tag and attribute names.
	assert.Equal(t, "profilephoto", el.Tag)
	size, _ := el.Attr("size")
	assert.Equal(t, "xl", size)
	shape, _ := el.Attr("shape")
	assert.Equal(t, "circle", shape)
	assert.Empty(t, el.Children)
}

func TestParse_UnknownTagIsInert(t *testing.T) {
	p := newTestParser()

	root, err := p.Parse(`<MadeUpWidget><p>still here</p></MadeUpWidget>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "madeupwidget", root.Children[0].Tag)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "p", root.Children[0].Children[0].Tag)
}

func TestParse_UnterminatedTag(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse(`<div><span>left open`)
	require.Error(t, err)

	var se *errors.SteadError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.CodeUnterminatedTag, se.Code)
	assert.Contains(t, se.Message, "span")
}

func TestParse_InvalidNesting(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse(`<div><span></div></span>`)
	require.Error(t, err)

	var se *errors.SteadError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.CodeInvalidNesting, se.Code)
}

func TestParse_ErrorsCarrySourceLines(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse("<div>\n<p>\n</div>\n")
	var se *errors.SteadError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.CodeInvalidNesting, se.Code)
	assert.Equal(t, 3, se.Line, "mismatched close tag is on line 3")
	assert.Contains(t, se.Error(), "line 3")

	_, err = p.Parse("<section>\n\n<span>never closed\n")
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.CodeUnterminatedTag, se.Code)
	assert.Equal(t, 3, se.Line, "the open tag started on line 3")

	_, err = p.Parse("<div>\n<script>alert(1)</script>\n</div>")
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.CodeDisallowedTag, se.Code)
	assert.Equal(t, 2, se.Line)
}

func TestParse_StrayCloseTagDropped(t *testing.T) {
	p := newTestParser()

	root, err := p.Parse(`<div></p>text</div>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "text", root.Children[0].Children[0].Text)
}

func TestParse_DisallowedTags(t *testing.T) {
	p := newTestParser()

	for _, source := range []string{
		`<script>alert(1)</script>`,
		`<div><iframe src="https://example.com"></iframe></div>`,
		`<object data="x"></object>`,
	} {
		_, err := p.Parse(source)
		require.Error(t, err, "source %q should be rejected", source)

		var se *errors.SteadError
		require.True(t, stderrors.As(err, &se))
		assert.Equal(t, errors.CodeDisallowedTag, se.Code)
	}
}

func TestParse_NodeLimit(t *testing.T) {
	p := New(10, config.DefaultDisallowedTags())

	under := strings.Repeat("<div></div>", 10)
	root, err := p.Parse(under)
	require.NoError(t, err)
	assert.Equal(t, 10, root.CountNodes()-1)

	over := strings.Repeat("<div></div>", 11)
	_, err = p.Parse(over)
	require.Error(t, err)

	var se *errors.SteadError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.CodeNodeLimit, se.Code)
}

func TestParse_CommentsAndDoctypeSkipped(t *testing.T) {
	p := newTestParser()

	root, err := p.Parse(`<!-- decorations --><div>kept</div>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "div", root.Children[0].Tag)
}

func TestParse_VoidElements(t *testing.T) {
	p := newTestParser()

	root, err := p.Parse(`<div><img src="a.png"><br><hr></div>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Len(t, root.Children[0].Children, 3)
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser()
	source := `<div><ProfilePhoto size="md" /><p>hi</p></div>`

	first, err := p.Parse(source)
	require.NoError(t, err)
	second, err := p.Parse(source)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
