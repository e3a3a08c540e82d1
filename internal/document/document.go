// Package document parses markup into a mutable tree and enumerates the
// image references that the embedding pipeline operates on.
package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrParse indicates the source markup could not be parsed.
var ErrParse = errors.New("document parse failed")

// Document wraps a parsed HTML tree. The tree is mutable: image nodes are
// rewritten in place before the document is rendered for assembly.
type Document struct {
	root       *html.Node
	isFragment bool
	baseDir    string
}

// ImageRef is one image-bearing node found during the scan.
// IDs are assigned sequentially in scan order before any concurrent work,
// so they are stable regardless of task completion order.
type ImageRef struct {
	ID     string
	Node   *html.Node
	Src    string
	Width  int // requested width in pixels, 0 = unspecified
	Height int // requested height in pixels, 0 = unspecified
}

// Parse parses markup into a Document. baseDir is the directory the source
// file came from; relative image locators resolve against it.
// Handles both full documents and fragments.
func Parse(markup, baseDir string) (*Document, error) {
	root, isFragment, err := parseHTML(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &Document{root: root, isFragment: isFragment, baseDir: baseDir}, nil
}

// BaseDir returns the directory relative locators resolve against.
func (d *Document) BaseDir() string { return d.baseDir }

// Images returns one ImageRef per image-bearing node, in the order nodes
// appear in the source. Identifiers are "part-0", "part-1", ... assigned
// here, once, before the refs are handed to concurrent tasks.
func (d *Document) Images() []*ImageRef {
	var refs []*ImageRef
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Img {
			return
		}
		src := attr(n, "src")
		if src == "" {
			return
		}
		refs = append(refs, &ImageRef{
			ID:     fmt.Sprintf("part-%d", len(refs)),
			Node:   n,
			Src:    src,
			Width:  dimensionAttr(n, "width"),
			Height: dimensionAttr(n, "height"),
		})
	})
	return refs
}

// Render serializes the tree back to markup. Fragments render without the
// <html><body> wrapper the parser would otherwise add.
func (d *Document) Render() (string, error) {
	var buf strings.Builder
	if d.isFragment {
		for c := d.root.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", fmt.Errorf("%w: rendering: %v", ErrParse, err)
			}
		}
		return buf.String(), nil
	}
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("%w: rendering: %v", ErrParse, err)
	}
	return buf.String(), nil
}

// SetSource rewrites the node's src attribute to a cid: reference.
// Called by the task that owns the node, after its part exists.
func (r *ImageRef) SetSource(contentID string) {
	setAttr(r.Node, "src", "cid:"+contentID)
}

// SetDimensions writes explicit width/height attributes onto the node so a
// rendering client has correct intrinsic size without decoding the payload.
func (r *ImageRef) SetDimensions(width, height int) {
	setAttr(r.Node, "width", strconv.Itoa(width))
	setAttr(r.Node, "height", strconv.Itoa(height))
}

// parseHTML parses content, detecting full documents vs fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		root, err := html.Parse(strings.NewReader(content))
		return root, false, err
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// dimensionAttr parses a width/height attribute as a pixel count.
// Non-numeric values (percentages, "auto") count as unspecified.
func dimensionAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	if err != nil || v <= 0 {
		return 0
	}
	return v
}
