package doc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructure_MixedDraft(t *testing.T) {
	nodes := Structure("**Intro**\nHello world.\n\n- a\n- b\n1. x")

	require.Equal(t, []Node{
		Heading{Text: "Intro"},
		Paragraph{Text: "Hello world."},
		List{Ordered: false, Items: []string{"a", "b"}},
		List{Ordered: true, Items: []string{"x"}},
	}, nodes)
}

func TestStructure_MultiLineParagraphJoinsWithSpace(t *testing.T) {
	nodes := Structure("first line\nsecond line\n\nnext para")

	require.Equal(t, []Node{
		Paragraph{Text: "first line second line"},
		Paragraph{Text: "next para"},
	}, nodes)
}

func TestStructure_BodyTextEndsList(t *testing.T) {
	nodes := Structure("- one\n- two\ntrailing prose")

	require.Equal(t, []Node{
		List{Ordered: false, Items: []string{"one", "two"}},
		Paragraph{Text: "trailing prose"},
	}, nodes)
}

func TestStructure_ListKindChangeClosesList(t *testing.T) {
	nodes := Structure("1. first\n2. second\n- bullet")

	require.Equal(t, []Node{
		List{Ordered: true, Items: []string{"first", "second"}},
		List{Ordered: false, Items: []string{"bullet"}},
	}, nodes)
}

func TestStructure_HeadingFlushesOpenBlocks(t *testing.T) {
	nodes := Structure("some prose\n**Facts**\n- a")

	require.Equal(t, []Node{
		Paragraph{Text: "some prose"},
		Heading{Text: "Facts"},
		List{Ordered: false, Items: []string{"a"}},
	}, nodes)
}

func TestStructure_BoldMidLineIsNotHeading(t *testing.T) {
	nodes := Structure("**lead** and **tail**")

	require.Equal(t, []Node{Paragraph{Text: "**lead** and **tail**"}}, nodes)
}

func TestStructure_AsteriskBulletVsEmphasis(t *testing.T) {
	// "* " opens a bullet; "**" opens a heading candidate instead.
	nodes := Structure("* item\n**Title**")

	require.Equal(t, []Node{
		List{Ordered: false, Items: []string{"item"}},
		Heading{Text: "Title"},
	}, nodes)
}

func TestStructure_HeadingTextTrimsEdgeSpaces(t *testing.T) {
	nodes := Structure("**Title **\n** Spaced Heading **")

	require.Equal(t, []Node{
		Heading{Text: "Title"},
		Heading{Text: "Spaced Heading"},
	}, nodes)
}

func TestStructure_EmptyAndBlankInput(t *testing.T) {
	require.Empty(t, Structure(""))
	require.Empty(t, Structure("\n\n   \n"))
}

func TestStructure_Deterministic(t *testing.T) {
	const text = "**H**\npara one\n\n1. a\n2. b\n\ntail"
	first := Structure(text)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Structure(text))
	}
}

func TestSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{
			name: "plain",
			in:   "no markers here",
			want: []Span{{Text: "no markers here", Style: SpanPlain}},
		},
		{
			name: "strong",
			in:   "a **b** c",
			want: []Span{
				{Text: "a ", Style: SpanPlain},
				{Text: "b", Style: SpanStrong},
				{Text: " c", Style: SpanPlain},
			},
		},
		{
			name: "em",
			in:   "a *b* c",
			want: []Span{
				{Text: "a ", Style: SpanPlain},
				{Text: "b", Style: SpanEm},
				{Text: " c", Style: SpanPlain},
			},
		},
		{
			name: "strong wins over em",
			in:   "**b** then *i*",
			want: []Span{
				{Text: "b", Style: SpanStrong},
				{Text: " then ", Style: SpanPlain},
				{Text: "i", Style: SpanEm},
			},
		},
		{
			name: "unclosed markers stay literal",
			in:   "a ** b",
			want: []Span{{Text: "a ** b", Style: SpanPlain}},
		},
		{
			name: "empty double marker stays literal",
			in:   "****",
			want: []Span{{Text: "****", Style: SpanPlain}},
		},
		{
			name: "empty double marker mid-text",
			in:   "a **** b",
			want: []Span{{Text: "a **** b", Style: SpanPlain}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Spans(tc.in))
		})
	}
}
