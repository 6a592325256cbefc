package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeValid(t *testing.T) {
	assert.True(t, ModeDefault.Valid())
	assert.True(t, ModeEnhanced.Valid())
	assert.True(t, ModeAdvanced.Valid())
	assert.False(t, Mode("").Valid())
	assert.False(t, Mode("sparkly").Valid())
}

func TestModeFallbackChain(t *testing.T) {
	assert.Equal(t, ModeEnhanced, ModeAdvanced.Fallback())
	assert.Equal(t, ModeDefault, ModeEnhanced.Fallback())
	assert.Equal(t, Mode(""), ModeDefault.Fallback(), "default is the floor of the chain")
}

func TestCountNodes(t *testing.T) {
	tree := NewRoot(
		NewElement("div", nil,
			NewElement("p", nil, NewText("hello")),
			NewText("world"),
		),
	)
	assert.Equal(t, 5, tree.CountNodes())

	var nilNode *TemplateNode
	assert.Equal(t, 0, nilNode.CountNodes())
}

func TestNodeAttr(t *testing.T) {
	node := NewElement("img", []Attr{{Key: "src", Value: "a.png"}, {Key: "alt", Value: ""}})

	v, ok := node.Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "a.png", v)

	v, ok = node.Attr("alt")
	assert.True(t, ok, "empty-valued attributes are still present")
	assert.Equal(t, "", v)

	_, ok = node.Attr("missing")
	assert.False(t, ok)
}

func TestIslandCountIncludesNested(t *testing.T) {
	compiled := &CompiledTemplate{
		Islands: []*Island{
			{ID: "island-1", Component: "Tabs", Children: []*Island{
				{ID: "island-2", Component: "Tab"},
				{ID: "island-3", Component: "Tab", Children: []*Island{
					{ID: "island-4", Component: "Bio"},
				}},
			}},
			{ID: "island-5", Component: "ProfilePhoto"},
		},
	}
	assert.Equal(t, 5, compiled.IslandCount())
}

func TestNodeKindString(t *testing.T) {
	assert.Equal(t, "root", NodeRoot.String())
	assert.Equal(t, "element", NodeElement.String())
	assert.Equal(t, "text", NodeText.String())
	assert.Equal(t, "unknown", NodeKind(9).String())
}
