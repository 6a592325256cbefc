// Package parser turns profile template source text into a template AST.
//
// The template language is a constrained XML-like dialect: a tree of
// elements and text, no scripting, no processing instructions. Parsing is
// pure: the same source always yields the same tree, and nothing outside
// the returned tree is touched. Unknown tags are kept as inert containers
// so a template referencing a component that was never registered still
// compiles; only the tags on the deny list abort parsing.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/types"
)

// voidTags never take children and never appear on the open-element stack.
var voidTags = map[string]struct{}{
	"area": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "source": {}, "track": {}, "wbr": {},
}

// Parser converts template source into an AST, enforcing the configured
// node ceiling and tag deny list.
type Parser struct {
	maxNodes   int
	disallowed map[string]struct{}
}

// New creates a parser. maxNodes bounds the tree size; values below one
// fall back to the platform default. disallowedTags are rejected outright.
func New(maxNodes int, disallowedTags []string) *Parser {
	if maxNodes < 1 {
		maxNodes = 200
	}
	denied := make(map[string]struct{}, len(disallowedTags))
	for _, tag := range disallowedTags {
		denied[strings.ToLower(tag)] = struct{}{}
	}
	return &Parser{
		maxNodes:   maxNodes,
		disallowed: denied,
	}
}

// Parse tokenizes source and builds the template tree. The returned error,
// when non-nil, is a *errors.SteadError classifying the syntax failure and
// carrying the source line it was raised on.
func (p *Parser) Parse(source string) (*types.TemplateNode, error) {
	root := types.NewRoot()
	stack := []*types.TemplateNode{root}
	// openLines parallels stack: the source line each open tag started on.
	openLines := []int{1}
	nodeCount := 0
	line := 1

	z := html.NewTokenizer(strings.NewReader(source))
	for {
		tt := z.Next()
		tokenLine := line
		line += bytes.Count(z.Raw(), []byte{'\n'})

		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				if len(stack) > 1 {
					open := stack[len(stack)-1]
					return nil, errors.NewParseError(errors.CodeUnterminatedTag,
						fmt.Sprintf("tag <%s> is never closed", open.Tag)).
						WithLocation(openLines[len(openLines)-1], 0)
				}
				return root, nil
			}
			return nil, errors.NewParseError(errors.CodeInvalidNesting,
				"template is not well formed").WithCause(z.Err()).WithLocation(tokenLine, 0)

		case html.TextToken:
			text := string(z.Text())
			if text == "" {
				continue
			}
			nodeCount++
			if err := p.checkLimit(nodeCount); err != nil {
				return nil, err
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, types.NewText(text))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if _, denied := p.disallowed[tok.Data]; denied {
				return nil, errors.NewParseError(errors.CodeDisallowedTag,
					fmt.Sprintf("tag <%s> is not allowed in templates", tok.Data)).
					WithLocation(tokenLine, 0)
			}
			nodeCount++
			if err := p.checkLimit(nodeCount); err != nil {
				return nil, err
			}

			attrs := make([]types.Attr, 0, len(tok.Attr))
			for _, a := range tok.Attr {
				attrs = append(attrs, types.Attr{Key: a.Key, Value: a.Val})
			}
			el := types.NewElement(tok.Data, attrs)

			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, el)

			_, void := voidTags[tok.Data]
			if tt == html.StartTagToken && !void {
				stack = append(stack, el)
				openLines = append(openLines, tokenLine)
			}

		case html.EndTagToken:
			tok := z.Token()
			if _, void := voidTags[tok.Data]; void {
				continue
			}
			if len(stack) == 1 {
				return nil, errors.NewParseError(errors.CodeInvalidNesting,
					fmt.Sprintf("closing tag </%s> has no matching opening tag", tok.Data)).
					WithLocation(tokenLine, 0)
			}
			top := stack[len(stack)-1]
			if top.Tag != tok.Data {
				if stackContains(stack, tok.Data) {
					return nil, errors.NewParseError(errors.CodeInvalidNesting,
						fmt.Sprintf("closing tag </%s> while <%s> is still open", tok.Data, top.Tag)).
						WithLocation(tokenLine, 0)
				}
				// Stray close for a tag that was never opened; drop it.
				continue
			}
			stack = stack[:len(stack)-1]
			openLines = openLines[:len(openLines)-1]

		case html.CommentToken, html.DoctypeToken:
			// Comments and doctypes carry no meaning in templates.
		}
	}
}

func (p *Parser) checkLimit(nodeCount int) error {
	if nodeCount > p.maxNodes {
		return errors.NewLimitError(errors.CodeNodeLimit,
			fmt.Sprintf("template exceeds the %d node limit", p.maxNodes))
	}
	return nil
}

func stackContains(stack []*types.TemplateNode, tag string) bool {
	// stack[0] is the root sentinel.
	for i := 1; i < len(stack); i++ {
		if stack[i].Tag == tag {
			return true
		}
	}
	return false
}
