package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

// DefaultPageTitle is used when a document has no heading.
const DefaultPageTitle = "README.md"

// PageOptions controls the standalone preview page.
type PageOptions struct {
	// Lang is the value of the html lang attribute; defaults to "en".
	Lang string
	// Title overrides the title taken from the first rendered heading.
	Title string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="readmegen">
<title>{{.Title}}</title>
<style>
body{margin:0;background:#f6f8fa;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif;line-height:1.5;color:#1f2328}
.markdown-body{box-sizing:border-box;max-width:980px;margin:2rem auto;padding:2rem 3rem;background:#fff;border:1px solid #d0d7de;border-radius:6px}
pre{background:#f6f8fa;padding:1rem;overflow:auto;border-radius:6px}
code{font-family:ui-monospace,SFMono-Regular,Menlo,Consolas,monospace;font-size:85%}
table{border-collapse:collapse}th,td{border:1px solid #d0d7de;padding:6px 13px}
blockquote{margin:0;padding:0 1em;color:#656d76;border-left:.25em solid #d0d7de}
</style>
</head>
<body>
<article class="markdown-body">
{{.Body}}</article>
</body>
</html>
`))

// Page renders body as a complete HTML document.
func Page(body []byte, opts PageOptions) ([]byte, error) {
	fragment, err := RenderHTML(body)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = HeadingTitle(fragment)
	}
	if title == "" {
		title = DefaultPageTitle
	}
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Lang  string
		Title string
		Body  template.HTML
	}{
		Lang:  lang,
		Title: title,
		// #nosec G203 -- fragment comes from goldmark with raw HTML disabled.
		Body: template.HTML(fragment),
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to render preview page").Build()
	}
	return buf.Bytes(), nil
}

// HeadingTitle returns the text of the first h1-h6 element in an HTML
// document or fragment, or "" when there is none.
func HeadingTitle(fragment []byte) string {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return ""
	}
	if h := findFirst(doc, isHeading); h != nil {
		return strings.Join(strings.Fields(extractText(h)), " ")
	}
	return ""
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return false
	}
	return n.Data[1] >= '1' && n.Data[1] <= '6'
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// extractText extracts all text content from a node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return b.String()
}
