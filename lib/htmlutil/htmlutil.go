package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"inmatesearch-backend/lib/telemetry"
	"inmatesearch-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = telemetry.Tracer("inmatesearch.lib.htmlutil")

// elements that end with a space so that adjacent cells don't run together
var blockElements = map[string]bool{
	"td": true, "th": true, "tr": true, "table": true,
	"p": true, "div": true, "li": true, "h1": true, "h2": true, "h3": true,
}

// GetText concatenates every text node under node. <br> and the end of block
// elements become a space so that "Line1<br>Line2" does not collapse into
// "Line1Line2".
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style":
			return
		case "br":
			buffer.WriteByte(' ')
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
	if node.Type == html.ElementNode && blockElements[node.Data] {
		buffer.WriteByte(' ')
	}
}

// CollapsedText is the whitespace-collapsed text of every node in sel.
func CollapsedText(sel *goquery.Selection) string {
	var out strings.Builder
	for _, n := range sel.Nodes {
		out.WriteString(GetText(n))
		out.WriteByte(' ')
	}
	return textutil.Collapse(out.String())
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors returns the text and resolved href of every <a> in sel. Links
// are resolved against base when it is not nil.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}
		if href == "" {
			continue
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := textutil.Collapse(GetText(n))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
