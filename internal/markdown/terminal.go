package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	gmast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

var (
	headingStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Underline(true),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
	}

	codeSpanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Background(lipgloss.Color("236"))

	codeBlockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)

	codeLangStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	quoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	italicStyle   = lipgloss.NewStyle().Italic(true)
	boldStyle     = lipgloss.NewStyle().Bold(true)
	strikeStyle   = lipgloss.NewStyle().Strikethrough(true)
	tableHead     = lipgloss.NewStyle().Bold(true)
)

const minWidth = 20

// RenderTerminal renders body for a terminal that is width cells wide.
// Paragraphs are word-wrapped; code blocks keep their lines untouched.
func RenderTerminal(body []byte, width int) string {
	if width < minWidth {
		width = minWidth
	}
	r := &termRenderer{source: body}
	return strings.Join(r.blocks(ParseBody(body), width, false), "\n\n") + "\n"
}

type termRenderer struct {
	source []byte
}

func (r *termRenderer) blocks(parent gmast.Node, width int, tight bool) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c, width, tight); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *termRenderer) block(n gmast.Node, width int, tight bool) string {
	switch node := n.(type) {
	case *gmast.Heading:
		level := node.Level
		if level > len(headingStyles) {
			level = len(headingStyles)
		}
		return headingStyles[level-1].Width(width).Render(r.inline(node))

	case *gmast.Paragraph, *gmast.TextBlock:
		return wrap(r.inline(node), width)

	case *gmast.FencedCodeBlock:
		code := r.lines(node)
		if lang := string(node.Language(r.source)); lang != "" {
			code = codeLangStyle.Render(lang) + "\n" + code
		}
		return codeBlockStyle.Render(code)

	case *gmast.CodeBlock:
		return codeBlockStyle.Render(r.lines(node))

	case *gmast.HTMLBlock:
		return dimStyle.Render(r.lines(node))

	case *gmast.Blockquote:
		inner := strings.Join(r.blocks(node, width-2, false), "\n\n")
		return prefixLines(inner, quoteStyle.Render("│ "), quoteStyle.Render("│ "))

	case *gmast.List:
		return r.list(node, width)

	case *gmast.ThematicBreak:
		return dimStyle.Render(strings.Repeat("─", width))

	case *east.Table:
		return r.table(node)

	default:
		sep := "\n\n"
		if tight {
			sep = "\n"
		}
		return strings.Join(r.blocks(n, width, tight), sep)
	}
}

func (r *termRenderer) list(l *gmast.List, width int) string {
	var items []string
	num := l.Start
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		indent := strings.Repeat(" ", lipgloss.Width(marker))

		sep := "\n\n"
		if l.IsTight {
			sep = "\n"
		}
		inner := strings.Join(r.blocks(c, width-len(indent), l.IsTight), sep)
		items = append(items, prefixLines(inner, dimStyle.Render(marker), indent))
	}
	if l.IsTight {
		return strings.Join(items, "\n")
	}
	return strings.Join(items, "\n\n")
}

func (r *termRenderer) table(t *east.Table) string {
	var rows [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.inline(cell))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Alignments))
	for _, cells := range rows {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for ri, cells := range rows {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			style := lipgloss.NewStyle().Width(widths[i])
			if i < len(t.Alignments) {
				switch t.Alignments[i] {
				case east.AlignRight:
					style = style.Align(lipgloss.Right)
				case east.AlignCenter:
					style = style.Align(lipgloss.Center)
				}
			}
			if ri == 0 {
				style = style.Inherit(tableHead)
			}
			if i > 0 {
				b.WriteString(dimStyle.Render(" │ "))
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
		if ri == 0 {
			for i, w := range widths {
				if i > 0 {
					b.WriteString(dimStyle.Render("─┼─"))
				}
				b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// lines returns the raw source lines of a block node.
func (r *termRenderer) lines(n gmast.Node) string {
	var b strings.Builder
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(r.source))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *termRenderer) inline(parent gmast.Node) string {
	var b strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Text:
			b.Write(node.Value(r.source))
			switch {
			case node.HardLineBreak():
				b.WriteString("\n")
			case node.SoftLineBreak():
				b.WriteString(" ")
			}
		case *gmast.String:
			b.Write(node.Value)
		case *gmast.CodeSpan:
			b.WriteString(codeSpanStyle.Render(plainText(node, r.source)))
		case *gmast.Emphasis:
			style := italicStyle
			if node.Level >= 2 {
				style = boldStyle
			}
			b.WriteString(style.Render(r.inline(node)))
		case *east.Strikethrough:
			b.WriteString(strikeStyle.Render(r.inline(node)))
		case *gmast.Link:
			label := r.inline(node)
			dest := string(node.Destination)
			b.WriteString(linkStyle.Render(label))
			if dest != "" && dest != plainText(node, r.source) {
				b.WriteString(dimStyle.Render(" (" + dest + ")"))
			}
		case *gmast.AutoLink:
			b.WriteString(linkStyle.Render(string(node.URL(r.source))))
		case *gmast.Image:
			alt := plainText(node, r.source)
			if alt == "" {
				alt = string(node.Destination)
			}
			b.WriteString(dimStyle.Render("[image: " + alt + "]"))
		case *east.TaskCheckBox:
			if node.IsChecked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		case *gmast.RawHTML:
			// dropped, like in the HTML rendering
		default:
			b.WriteString(r.inline(node))
		}
	}
	return b.String()
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// prefixLines puts first in front of the first line of s and rest in front of
// every following line.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}
