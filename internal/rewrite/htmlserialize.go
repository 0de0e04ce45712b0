package rewrite

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never get a closing tag (HTML5 §13.1.2).
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// rawTextElements carry their children verbatim: no HTML entity decoding
// or escaping happens inside them (HTML5 §13.2.5.3).
var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

// renderHTML serializes doc the way this rewriter needs, not the way
// html.Render does: only the five mandatorily-escaped characters are
// re-escaped in text and attribute values, and every attribute is emitted
// double-quoted regardless of how it was written in the source.
// html.Render's broader escaping would mangle already-decoded character
// references the tokenizer resolved on parse.
func renderHTML(w io.Writer, doc *html.Node) error {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := renderNode(w, c); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(w io.Writer, n *html.Node) error {
	switch n.Type {
	case html.DoctypeNode:
		_, err := fmt.Fprintf(w, "<!DOCTYPE %s>", n.Data)
		return err
	case html.CommentNode:
		_, err := fmt.Fprintf(w, "<!--%s-->", n.Data)
		return err
	case html.TextNode:
		_, err := io.WriteString(w, escapeText(n.Data))
		return err
	case html.ElementNode:
		return renderElement(w, n)
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := renderNode(w, c); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func renderElement(w io.Writer, n *html.Node) error {
	name := n.Data
	if _, err := fmt.Fprintf(w, "<%s", name); err != nil {
		return err
	}
	for _, attr := range n.Attr {
		key := attr.Key
		if attr.Namespace != "" {
			key = attr.Namespace + ":" + attr.Key
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(attr.Val)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if voidElements[name] {
		return nil
	}

	if rawTextElements[name] {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				if _, err := io.WriteString(w, c.Data); err != nil {
					return err
				}
			}
		}
		_, err := fmt.Fprintf(w, "</%s>", name)
		return err
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := renderNode(w, c); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", name)
	return err
}

// escapeText re-escapes only "&" and "<" and ">", the minimum needed to
// keep text content from being reparsed as markup.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// escapeAttr re-escapes the five mandatorily-escaped characters inside a
// double-quoted attribute value.
func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
