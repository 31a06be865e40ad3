// Package paginate re-flows a structured draft onto fixed-size pages. Layout
// is computed against an abstract text-measurement surface so the geometry
// math is testable without a PDF backend.
package paginate

import (
	"fmt"
	"strings"

	"lawclerk/internal/doc"
)

// Role selects the font used for an op.
type Role int

const (
	RoleBody Role = iota
	RoleHeading
)

// Geometry is the printable canvas in points.
type Geometry struct {
	Width      float64
	Height     float64
	Margin     float64
	LineHeight float64
}

// A4 returns the default export geometry.
func A4() Geometry {
	return Geometry{Width: 595.28, Height: 841.89, Margin: 40, LineHeight: 14}
}

// Op places one already-wrapped line of text on a page.
type Op struct {
	X    float64
	Y    float64
	Role Role
	Text string
}

// Page is an ordered sequence of render ops.
type Page struct {
	Ops []Op
}

// Measurer reports the rendered width of text in a given role. The PDF
// surface implements this with its font metrics; tests use a fixed-width fake.
type Measurer interface {
	TextWidth(text string, role Role) float64
}

// Thresholds below which a line must move to a fresh page. The heading
// reserve is larger so a heading never lands with no room for content
// beneath it.
const (
	headingReserve = 30
	bodyReserve    = 20
)

// Paginate lays the node sequence out onto pages. Page breaks are a pure
// function of the cumulative cursor against the geometry, never of node
// count, so identical input and geometry always produce identical pages.
func Paginate(nodes []doc.Node, g Geometry, m Measurer) []Page {
	l := &layout{g: g, m: m, y: g.Margin}
	l.newPage()

	for _, n := range nodes {
		switch n := n.(type) {
		case doc.Heading:
			if l.y > g.Height-headingReserve {
				l.newPage()
			}
			l.place(RoleHeading, plainText(n.Text))
			l.y += g.LineHeight + 3

		case doc.Paragraph:
			l.body(plainText(n.Text))
			l.gap()

		case doc.List:
			for i, item := range n.Items {
				if n.Ordered {
					l.body(fmt.Sprintf("%d. %s", i+1, plainText(item)))
				} else {
					l.body("- " + plainText(item))
				}
			}
			l.gap()
		}
	}
	return l.pages
}

type layout struct {
	g     Geometry
	m     Measurer
	y     float64
	pages []Page
}

func (l *layout) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = l.g.Margin
}

func (l *layout) place(role Role, text string) {
	p := &l.pages[len(l.pages)-1]
	p.Ops = append(p.Ops, Op{X: l.g.Margin, Y: l.y, Role: role, Text: text})
}

// body wraps text at the printable width and places each visual line,
// breaking to a new page whenever the cursor passes the body reserve.
func (l *layout) body(text string) {
	for _, line := range wrap(text, l.g.Width-2*l.g.Margin, l.m) {
		if l.y > l.g.Height-bodyReserve {
			l.newPage()
		}
		l.place(RoleBody, line)
		l.y += l.g.LineHeight
	}
}

// gap advances half a line height without rendering, the blank-line
// equivalent between blocks.
func (l *layout) gap() {
	l.y += l.g.LineHeight / 2
}

// wrap performs greedy word wrapping against the measurer. A single word
// wider than the line is placed on its own line rather than split.
func wrap(text string, maxWidth float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if m.TextWidth(candidate, RoleBody) > maxWidth {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = candidate
	}
	return append(lines, cur)
}

// plainText flattens inline emphasis spans to their bare text.
func plainText(s string) string {
	spans := doc.Spans(s)
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}
