package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// relativeLinkTransformer points relative links at other posts on the site and relative
// images at the site's image directory.
type relativeLinkTransformer struct {
	siteURL string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Image:
			if isRelativeLink(string(v.Destination)) {
				v.Destination = []byte(t.siteURL + "/images/" + path.Base(string(v.Destination)))
			}
		case *ast.Link:
			dest := string(v.Destination)
			if isRelativeLink(dest) && !strings.HasPrefix(dest, "#") {
				slug := path.Base(dest)
				for _, ext := range []string{".mdx", ".md", ".html"} {
					slug = strings.TrimSuffix(slug, ext)
				}
				v.Destination = []byte(t.siteURL + "/blog/" + slug)
			}
		}

		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	if dest == "" {
		return false
	}

	// Protocol-relative
	if strings.HasPrefix(dest, "//") {
		return false
	}
	if strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	return !strings.Contains(dest, ":")
}

// MarkdownRenderer defines the interface for converting markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown []byte) ([]byte, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer returns a GFM renderer. When siteURL is set, relative links and images
// are rewritten against it.
func NewMarkdownRenderer(siteURL string) MarkdownRenderer {
	parserOptions := []parser.Option{parser.WithAutoHeadingID()}
	if siteURL != "" {
		parserOptions = append(parserOptions, parser.WithASTTransformers(
			util.Prioritized(&relativeLinkTransformer{siteURL: strings.TrimSuffix(siteURL, "/")}, 100),
		))
	}

	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

func (r *MarkdownRendererImpl) Render(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return buf.Bytes(), nil
}
