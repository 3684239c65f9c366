// Package markdown renders generated README documents.
//
// All entry points share one goldmark engine with the GitHub Flavored Markdown
// extension (tables, strikethrough, task lists, autolinks), so the terminal
// view, the HTML preview and the title lookup agree on how a document parses.
// Raw HTML embedded in a document is not passed through.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

var engine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ParseBody parses a Markdown body into a Goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return engine.Parser().Parse(text.NewReader(body))
}

// RenderHTML converts body to an HTML fragment.
func RenderHTML(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(body, &buf); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to render markdown").Build()
	}
	return buf.Bytes(), nil
}

// Title returns the plain text of the first heading in body, or "".
func Title(body []byte) string {
	var title string
	_ = gmast.Walk(ParseBody(body), func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			title = strings.TrimSpace(plainText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

// plainText concatenates the text content below n, dropping markup.
func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *gmast.Text:
			b.Write(node.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		case *gmast.AutoLink:
			b.Write(node.URL(source))
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}
