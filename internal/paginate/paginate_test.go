package paginate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lawclerk/internal/doc"
)

// fixedMeasurer gives every rune the same width so wrapping is predictable.
type fixedMeasurer struct {
	perRune float64
}

func (m fixedMeasurer) TextWidth(text string, _ Role) float64 {
	return float64(len([]rune(text))) * m.perRune
}

func testGeometry() Geometry {
	return Geometry{Width: 200, Height: 120, Margin: 20, LineHeight: 14}
}

func TestPaginate_SingleParagraphFits(t *testing.T) {
	g := testGeometry()
	pages := Paginate(doc.Structure("hello world"), g, fixedMeasurer{perRune: 5})

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Ops, 1)
	op := pages[0].Ops[0]
	require.Equal(t, g.Margin, op.X)
	require.Equal(t, g.Margin, op.Y)
	require.Equal(t, RoleBody, op.Role)
	require.Equal(t, "hello world", op.Text)
}

func TestPaginate_WrapsAtPrintableWidth(t *testing.T) {
	g := testGeometry()
	// Printable width is 160pt; at 10pt per rune a line holds 16 runes.
	text := "alpha beta gamma delta epsilon"
	pages := Paginate(doc.Structure(text), g, fixedMeasurer{perRune: 10})

	require.Len(t, pages, 1)
	var lines []string
	for _, op := range pages[0].Ops {
		lines = append(lines, op.Text)
	}
	require.Equal(t, []string{"alpha beta gamma", "delta epsilon"}, lines)
}

func TestPaginate_EmphasisMarkersNeverReachOps(t *testing.T) {
	g := testGeometry()
	text := "**Summary *of* Authorities**\nThe *court* held **twice**.\n\n- **key** point\n1. a *minor* one"
	pages := Paginate(doc.Structure(text), g, fixedMeasurer{perRune: 5})

	var lines []string
	for _, page := range pages {
		for _, op := range page.Ops {
			require.NotContains(t, op.Text, "*")
			lines = append(lines, op.Text)
		}
	}
	require.Contains(t, lines, "Summary of Authorities")
	require.Contains(t, lines, "The court held twice.")
	require.Contains(t, lines, "- key point")
	require.Contains(t, lines, "1. a minor one")
}

func TestPaginate_BodyNeverPastReserve(t *testing.T) {
	g := testGeometry()
	text := strings.Repeat("word word word word word word word word\n\n", 20)
	pages := Paginate(doc.Structure(text), g, fixedMeasurer{perRune: 6})

	require.Greater(t, len(pages), 1)
	for _, page := range pages {
		for _, op := range page.Ops {
			switch op.Role {
			case RoleHeading:
				require.LessOrEqual(t, op.Y, g.Height-headingReserve)
			default:
				require.LessOrEqual(t, op.Y, g.Height-bodyReserve)
			}
		}
	}
}

func TestPaginate_HeadingBreaksEarlierThanBody(t *testing.T) {
	g := testGeometry()
	m := fixedMeasurer{perRune: 5}

	// Fill the page so the cursor sits in the zone where a body line still
	// fits (y <= height-20) but a heading must break (y > height-30). At
	// 5pt per rune the printable width holds three ten-rune words per line,
	// so fifteen words make a five-line paragraph: the cursor lands on
	// 20 + 5*14 + 7 = 97.
	filler := strings.TrimSpace(strings.Repeat("abcdefghij ", 15))
	pages := Paginate(doc.Structure(filler+"\n\n**Late Heading**\ntail"), g, m)

	require.Len(t, pages, 2)
	first := pages[1].Ops[0]
	require.Equal(t, RoleHeading, first.Role)
	require.Equal(t, g.Margin, first.Y)
	require.Equal(t, "Late Heading", first.Text)
}

func TestPaginate_HeadingAdvancesExtra(t *testing.T) {
	g := testGeometry()
	pages := Paginate(doc.Structure("**Title**\nbody"), g, fixedMeasurer{perRune: 5})

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Ops, 2)
	require.Equal(t, g.Margin+g.LineHeight+3, pages[0].Ops[1].Y)
}

func TestPaginate_ListItemsCarryMarkers(t *testing.T) {
	pages := Paginate(doc.Structure("1. first\n2. second\n\n- loose"), testGeometry(), fixedMeasurer{perRune: 5})

	var lines []string
	for _, op := range pages[0].Ops {
		lines = append(lines, op.Text)
	}
	require.Equal(t, []string{"1. first", "2. second", "- loose"}, lines)
}

func TestPaginate_Reproducible(t *testing.T) {
	g := testGeometry()
	m := fixedMeasurer{perRune: 7}
	text := "**H**\n" + strings.Repeat("lorem ipsum dolor sit amet\n\n", 12)

	first := Paginate(doc.Structure(text), g, m)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, Paginate(doc.Structure(text), g, m))
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF("**Memo**\nShort body text.\n\n- point one\n- point two", A4(), &buf)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
