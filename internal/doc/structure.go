// Package doc parses the backend's markdown-lite draft dialect into a typed
// node tree. The same tree backs both the on-screen document pane and the
// paginated PDF export, so the two can differ in layout but never in content.
package doc

import (
	"regexp"
	"strings"
)

// Node is one block of a structured draft: a Heading, a Paragraph, or a List.
type Node interface {
	node()
}

type Heading struct {
	Text string
}

type Paragraph struct {
	Text string
}

type List struct {
	Ordered bool
	Items   []string
}

func (Heading) node()   {}
func (Paragraph) node() {}
func (List) node()      {}

var (
	unorderedRe = regexp.MustCompile(`^[-*]\s+`)
	orderedRe   = regexp.MustCompile(`^\d+\.\s+`)
)

// Structure converts raw draft text into an ordered node sequence. It is a
// deterministic single pass over lines; emphasis markers consumed by the
// heading rule are stripped, so the transform is one-way.
func Structure(text string) []Node {
	var (
		nodes []Node
		para  []string
		list  *List
	)

	flushPara := func() {
		if len(para) > 0 {
			nodes = append(nodes, Paragraph{Text: strings.Join(para, " ")})
			para = nil
		}
	}
	flushList := func() {
		if list != nil {
			nodes = append(nodes, *list)
			list = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			flushPara()
			flushList()

		case isHeading(line):
			flushPara()
			flushList()
			nodes = append(nodes, Heading{Text: strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "**"), "**"))})

		case unorderedRe.MatchString(line):
			flushPara()
			if list != nil && list.Ordered {
				flushList()
			}
			if list == nil {
				list = &List{Ordered: false}
			}
			list.Items = append(list.Items, unorderedRe.ReplaceAllString(line, ""))

		case orderedRe.MatchString(line):
			flushPara()
			if list != nil && !list.Ordered {
				flushList()
			}
			if list == nil {
				list = &List{Ordered: true}
			}
			list.Items = append(list.Items, orderedRe.ReplaceAllString(line, ""))

		default:
			// Body text always ends a list.
			flushList()
			para = append(para, line)
		}
	}

	flushPara()
	flushList()
	return nodes
}

// isHeading reports whether a trimmed line is a whole-line bold span, i.e.
// it opens and closes with ** and contains no further double markers.
func isHeading(line string) bool {
	if len(line) < 5 {
		return false
	}
	if !strings.HasPrefix(line, "**") || !strings.HasSuffix(line, "**") {
		return false
	}
	return strings.Count(line, "**") == 2
}
