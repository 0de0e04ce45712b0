package rewrite

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// urlAttrs are the element attributes rewritten by the common pipeline,
// each resolved against the document's effective base URL.
var urlAttrs = map[string]bool{
	"href": true, "src": true, "poster": true, "data": true,
	"action": true, "formaction": true, "background": true,
	"cite": true, "longdesc": true, "usemap": true,
}

// eventHandlerPrefix marks inline event-handler attributes, rewritten
// with the JS-classic rewriter.
const eventHandlerPrefix = "on"

// HeadInjection carries the ambient content the converter wants inserted
// into every rewritten HTML document: the Dynamic Rewriter Helper
// bootstrap snippet and, optionally, a user-supplied custom stylesheet
// link.
type HeadInjection struct {
	RuntimeScriptSrcs []string
	PreHeadSnippet    string
	CustomCSSHref     string
}

// HTMLRewriter rewrites an HTML payload: every attribute, inline script,
// and inline style that carries a URL reference.
type HTMLRewriter struct {
	pipeline *Pipeline
	css      *CSSRewriter
	js       *JSRewriter
	modules  *ModuleTracker
}

// NewHTMLRewriter builds an HTMLRewriter over a shared pipeline.
func NewHTMLRewriter(p *Pipeline, modules *ModuleTracker) *HTMLRewriter {
	return &HTMLRewriter{
		pipeline: p,
		css:      NewCSSRewriter(p),
		js:       NewJSRewriter(p, modules),
		modules:  modules,
	}
}

// Rewrite parses payload, rewrites every reference against doc, and
// serializes the result.
func (r *HTMLRewriter) Rewrite(payload []byte, doc DocumentContext, inject HeadInjection) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("rewrite: parsing html: %w", err)
	}

	effectiveBase := doc.OriginalURL
	var headNode *html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			name := strings.ToLower(n.Data)

			if name == "head" && headNode == nil {
				headNode = n
			}

			if name == "base" {
				if href := attrVal(n, "href"); href != "" {
					if resolved, err := ResolveAbsolute(effectiveBase, href); err == nil {
						effectiveBase = resolved
					}
				}
			}

			if name == "script" || name == "link" {
				removeAttr(n, "integrity")
			}

			if name == "meta" && strings.EqualFold(attrVal(n, "http-equiv"), "refresh") {
				r.rewriteMetaRefresh(n, effectiveBase, doc)
			}

			originalSrc := attrVal(n, "src")

			r.rewriteAttrs(n, effectiveBase, doc)

			if name == "script" && originalSrc != "" && strings.EqualFold(attrVal(n, "type"), "module") && r.modules != nil {
				if target, err := r.pipeline.CanonicalizeReference(originalSrc, DocumentContext{OriginalURL: effectiveBase}); err == nil {
					r.modules.MarkModule(string(target))
				}
			}

			if name == "script" && attrVal(n, "src") == "" {
				isModule := strings.EqualFold(attrVal(n, "type"), "module")
				text := textContent(n)
				rewritten := r.js.Rewrite(text, DocumentContext{
					OriginalURL:   effectiveBase,
					CanonicalPath: doc.CanonicalPath,
					BundlePrefix:  doc.BundlePrefix,
				}, isModule)
				setTextContent(n, rewritten)
			}

			if name == "style" {
				text := textContent(n)
				rewritten := r.css.Rewrite(text, DocumentContext{
					OriginalURL:   effectiveBase,
					CanonicalPath: doc.CanonicalPath,
					BundlePrefix:  doc.BundlePrefix,
				})
				setTextContent(n, rewritten)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if headNode != nil {
		r.injectHead(headNode, inject)
	}

	var buf bytes.Buffer
	if err := renderHTML(&buf, root); err != nil {
		return nil, fmt.Errorf("rewrite: serializing html: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRewriter) rewriteAttrs(n *html.Node, base string, doc DocumentContext) {
	for i, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		switch {
		case urlAttrs[key]:
			rewritten, ok, err := r.pipeline.RewriteRelative(attr.Val, DocumentContext{
				OriginalURL:   base,
				CanonicalPath: doc.CanonicalPath,
				BundlePrefix:  doc.BundlePrefix,
			})
			if err == nil && ok {
				n.Attr[i].Val = rewritten
			}
		case key == "srcset":
			n.Attr[i].Val = r.rewriteSrcset(attr.Val, base, doc)
		case key == "style":
			n.Attr[i].Val = r.css.Rewrite(attr.Val, DocumentContext{
				OriginalURL:   base,
				CanonicalPath: doc.CanonicalPath,
				BundlePrefix:  doc.BundlePrefix,
			})
		case strings.HasPrefix(key, eventHandlerPrefix) && len(key) > len(eventHandlerPrefix):
			n.Attr[i].Val = r.js.Rewrite(attr.Val, DocumentContext{
				OriginalURL:   base,
				CanonicalPath: doc.CanonicalPath,
				BundlePrefix:  doc.BundlePrefix,
			}, false)
		}
	}
}

// rewriteSrcset splits a srcset attribute on commas and rewrites the URL
// portion of each candidate, preserving its descriptor.
func (r *HTMLRewriter) rewriteSrcset(srcset, base string, doc DocumentContext) string {
	parts := strings.Split(srcset, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		rewritten, ok, err := r.pipeline.RewriteRelative(fields[0], DocumentContext{
			OriginalURL:   base,
			CanonicalPath: doc.CanonicalPath,
			BundlePrefix:  doc.BundlePrefix,
		})
		if err != nil || !ok {
			out = append(out, part)
			continue
		}
		if len(fields) > 1 {
			out = append(out, rewritten+" "+strings.Join(fields[1:], " "))
		} else {
			out = append(out, rewritten)
		}
	}
	return strings.Join(out, ", ")
}

// rewriteMetaRefresh rewrites the url= target of <meta http-equiv="refresh">.
func (r *HTMLRewriter) rewriteMetaRefresh(n *html.Node, base string, doc DocumentContext) {
	for i, attr := range n.Attr {
		if strings.ToLower(attr.Key) != "content" {
			continue
		}
		idx := strings.Index(strings.ToLower(attr.Val), "url=")
		if idx < 0 {
			continue
		}
		prefix := attr.Val[:idx+len("url=")]
		target := attr.Val[idx+len("url="):]
		rewritten, ok, err := r.pipeline.RewriteRelative(target, DocumentContext{
			OriginalURL:   base,
			CanonicalPath: doc.CanonicalPath,
			BundlePrefix:  doc.BundlePrefix,
		})
		if err == nil && ok {
			n.Attr[i].Val = prefix + rewritten
		}
	}
}

// injectHead inserts the Dynamic Rewriter Helper bootstrap as the first
// child of <head> and an optional custom stylesheet link as the last.
func (r *HTMLRewriter) injectHead(head *html.Node, inject HeadInjection) {
	// Insertion order matters: the config snippet must land before the
	// runtime script tag, since the runtime reads its config at load
	// time (mirrors wombat.js's wbinfo-before-wombat.js convention).
	firstChild := head.FirstChild

	if inject.PreHeadSnippet != "" {
		script := &html.Node{
			Type: html.ElementNode,
			Data: "script",
			Attr: []html.Attribute{{Key: "type", Val: "text/javascript"}},
		}
		script.AppendChild(&html.Node{Type: html.TextNode, Data: inject.PreHeadSnippet})
		if firstChild != nil {
			head.InsertBefore(script, firstChild)
		} else {
			head.AppendChild(script)
		}
	}

	for i := len(inject.RuntimeScriptSrcs) - 1; i >= 0; i-- {
		runtime := &html.Node{
			Type: html.ElementNode,
			Data: "script",
			Attr: []html.Attribute{
				{Key: "type", Val: "text/javascript"},
				{Key: "src", Val: inject.RuntimeScriptSrcs[i]},
			},
		}
		if firstChild != nil {
			head.InsertBefore(runtime, firstChild)
		} else {
			head.AppendChild(runtime)
		}
	}

	if inject.CustomCSSHref != "" {
		link := &html.Node{
			Type: html.ElementNode,
			Data: "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: inject.CustomCSSHref},
			},
		}
		head.AppendChild(link)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, key) {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// textContent concatenates the text of n's children.
func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// setTextContent replaces n's text children with a single new one.
func setTextContent(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			n.RemoveChild(c)
		}
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
