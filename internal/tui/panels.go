package tui

import (
	"fmt"
	"strings"

	"lawclerk/internal/app"
	"lawclerk/internal/doc"
)

// Panel renderers are pure string builders over engine snapshots so they can
// be exercised without a terminal. Optional fields render as fallbacks or not
// at all, never as errors.

func renderAnalysisPanel(t Theme, a *app.AnalysisResult, width int) string {
	if a == nil || a.Empty() {
		return t.Placeholder.Render("No analysis yet. Send a query or upload a document.")
	}

	var b strings.Builder
	section := func(title string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Section.Render(title))
		b.WriteString("\n")
	}
	items := func(list []string) {
		for _, it := range list {
			b.WriteString(t.DocBody.Width(width).Render("- " + it))
			b.WriteString("\n")
		}
	}

	if len(a.Facts) > 0 {
		section("Facts")
		items(a.Facts)
	}
	if len(a.Parties) > 0 {
		section("Parties")
		for _, p := range a.Parties {
			line := fmt.Sprintf("- %s (%s)", p.Name, p.DisplayRole())
			if p.Details != "" {
				line += ": " + p.Details
			}
			b.WriteString(t.DocBody.Width(width).Render(line))
			b.WriteString("\n")
		}
	}
	if len(a.Jurisdictions) > 0 {
		section("Jurisdictions")
		items(a.Jurisdictions)
	}
	if len(a.LegalIssues) > 0 {
		section("Legal Issues")
		items(a.LegalIssues)
	}
	if len(a.CausesOfAction) > 0 {
		section("Causes of Action")
		items(a.CausesOfAction)
	}
	if len(a.PenalCodes) > 0 {
		section("Penal Codes")
		for _, pc := range a.PenalCodes {
			line := "- " + pc.Code
			if pc.Description != "" {
				line += ": " + pc.Description
			}
			if pc.Relevance != "" {
				line += " (" + pc.Relevance + ")"
			}
			b.WriteString(t.DocBody.Width(width).Render(line))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCasesPanel(t Theme, snap app.Snapshot, width int) string {
	var b strings.Builder
	if snap.Summary != "" {
		b.WriteString(t.DocBody.Width(width).Render(snap.Summary))
		b.WriteString("\n\n")
	}
	if len(snap.Cases) == 0 {
		b.WriteString(t.Placeholder.Render("No cases found yet."))
		return b.String()
	}

	// Backend order is preserved; the server already ranks.
	for i, c := range snap.Cases {
		if i > 0 {
			b.WriteString("\n")
		}
		tier := c.Tier().String()
		badge := t.TierBadge(tier).Render(fmt.Sprintf("[%s %d]", strings.ToUpper(tier), c.RelevanceScore))
		b.WriteString(badge + " " + t.CaseTitle.Render(c.DisplayTitle()))
		b.WriteString("\n")
		b.WriteString(t.CaseCitation.Render("  " + c.DisplayCitation()))
		b.WriteString("\n")
		if c.RelevanceReason != "" {
			b.WriteString(t.DocBody.Width(width).Render("  " + c.RelevanceReason))
			b.WriteString("\n")
		}
		if c.Snippet != "" {
			b.WriteString(t.Placeholder.Width(width).Render("  " + c.Snippet))
			b.WriteString("\n")
		}
		if c.PDFLink != "" {
			b.WriteString(t.CaseLink.Render("  " + c.PDFLink))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderQuestions formats outstanding clarification questions for the chat
// stream.
func renderQuestions(t Theme, questions []string, attempts int) string {
	var b strings.Builder
	b.WriteString(t.Question.Render(fmt.Sprintf("I need a few details before searching (round %d):", attempts)))
	for i, q := range questions {
		b.WriteString("\n")
		b.WriteString(t.DocBody.Render(fmt.Sprintf("  %d. %s", i+1, q)))
	}
	b.WriteString("\n")
	b.WriteString(t.Placeholder.Render("Answer in one message; all questions at once is fine."))
	return b.String()
}

// renderDocumentPanel structures the draft dialect and styles it for the
// terminal. The same tree feeds the PDF paginator.
func renderDocumentPanel(t Theme, document string, width int) string {
	if strings.TrimSpace(document) == "" {
		return t.Placeholder.Render("No draft yet. Use /draft memo, motion or complaint.")
	}

	nodes := doc.Structure(document)
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch n := n.(type) {
		case doc.Heading:
			b.WriteString(t.DocHeading.Width(width).Render(styleSpans(t, n.Text)))
		case doc.Paragraph:
			b.WriteString(t.DocBody.Width(width).Render(styleSpans(t, n.Text)))
		case doc.List:
			for j, item := range n.Items {
				if j > 0 {
					b.WriteString("\n")
				}
				marker := "- "
				if n.Ordered {
					marker = fmt.Sprintf("%d. ", j+1)
				}
				b.WriteString(t.DocBody.Width(width).Render(marker + styleSpans(t, item)))
			}
		}
	}
	return b.String()
}

func styleSpans(t Theme, text string) string {
	var b strings.Builder
	for _, sp := range doc.Spans(text) {
		switch sp.Style {
		case doc.SpanStrong:
			b.WriteString(t.DocStrong.Render(sp.Text))
		case doc.SpanEm:
			b.WriteString(t.DocEm.Render(sp.Text))
		default:
			b.WriteString(sp.Text)
		}
	}
	return b.String()
}
