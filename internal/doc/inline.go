package doc

import "strings"

// SpanStyle is the presentational weight of one run of inline text.
type SpanStyle int

const (
	SpanPlain SpanStyle = iota
	SpanEm
	SpanStrong
)

// Span is a run of text with a single style.
type Span struct {
	Text  string
	Style SpanStyle
}

// Spans splits block text (headings, paragraphs, list items) into
// plain/em/strong runs. Double markers pair before single markers, so a lone
// * adjacent to a ** span stays literal rather than opening an emphasis run.
// Zero-length inner text never becomes a styled run; unpaired and empty
// markers stay literal. Every renderer consumes blocks through here, so
// marker handling cannot diverge between surfaces.
func Spans(text string) []Span {
	var out []Span
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Span{Text: plain.String(), Style: SpanPlain})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], "**") {
			if rel := strings.Index(text[i+2:], "**"); rel > 0 {
				end := i + 2 + rel
				flush()
				out = append(out, Span{Text: text[i+2 : end], Style: SpanStrong})
				i = end + 2
				continue
			}
		}
		if text[i] == '*' {
			if rel := strings.IndexByte(text[i+1:], '*'); rel > 0 {
				end := i + 1 + rel
				if end+1 >= len(text) || text[end+1] != '*' {
					flush()
					out = append(out, Span{Text: text[i+1 : end], Style: SpanEm})
					i = end + 1
					continue
				}
			}
		}
		plain.WriteByte(text[i])
		i++
	}
	flush()
	return out
}
