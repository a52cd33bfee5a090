// Package formprobe parses a page's HTML and summarizes its form
// controls. The locator logs this summary when every strategy for a
// field comes up empty, so the operator can see what the page actually
// contained.
package formprobe

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const maxControls = 100

// Control is one interactive form element found on the page.
type Control struct {
	Tag         string   // input, select, textarea
	Type        string   // input type attribute, if any
	Name        string
	ID          string
	Placeholder string
	Label       string   // text of the associated <label>, if resolvable
	Options     []string // visible option texts for selects
}

// Probe extracts form controls from raw HTML. A parse failure yields an
// empty result, never an error: the probe is diagnostic only.
func Probe(rawHTML string) []Control {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	labelsByID := map[string]string{}
	collectLabels(doc, labelsByID)

	var controls []Control
	collectControls(doc, labelsByID, "", &controls)
	return controls
}

// Summary renders controls as one compact line per control for logging.
func Summary(controls []Control) string {
	if len(controls) == 0 {
		return "no form controls found on page"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d form control(s):", len(controls))
	for i, c := range controls {
		fmt.Fprintf(&b, "\n  #%d <%s", i, c.Tag)
		if c.Type != "" {
			fmt.Fprintf(&b, " type=%q", c.Type)
		}
		if c.Name != "" {
			fmt.Fprintf(&b, " name=%q", c.Name)
		}
		if c.ID != "" {
			fmt.Fprintf(&b, " id=%q", c.ID)
		}
		if c.Placeholder != "" {
			fmt.Fprintf(&b, " placeholder=%q", c.Placeholder)
		}
		b.WriteString(">")
		if c.Label != "" {
			fmt.Fprintf(&b, " label=%q", c.Label)
		}
		if len(c.Options) > 0 {
			fmt.Fprintf(&b, " options=%v", c.Options)
		}
	}
	return b.String()
}

func collectLabels(n *html.Node, out map[string]string) {
	if n.Type == html.ElementNode && n.Data == "label" {
		if forID := attr(n, "for"); forID != "" {
			out[forID] = strings.TrimSpace(nodeText(n))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLabels(c, out)
	}
}

func collectControls(n *html.Node, labelsByID map[string]string, enclosingLabel string, out *[]Control) {
	if len(*out) >= maxControls {
		return
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "input", "select", "textarea":
			ctl := Control{
				Tag:         n.Data,
				Type:        attr(n, "type"),
				Name:        attr(n, "name"),
				ID:          attr(n, "id"),
				Placeholder: attr(n, "placeholder"),
			}
			if ctl.ID != "" {
				ctl.Label = labelsByID[ctl.ID]
			}
			if ctl.Label == "" {
				ctl.Label = enclosingLabel
			}
			if n.Data == "select" {
				ctl.Options = optionTexts(n)
			}
			*out = append(*out, ctl)
			return
		case "label":
			enclosingLabel = strings.TrimSpace(nodeText(n))
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectControls(c, labelsByID, enclosingLabel, out)
	}
}

func optionTexts(sel *html.Node) []string {
	var opts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "option" {
			opts = append(opts, strings.TrimSpace(nodeText(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(sel)
	return opts
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
