package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaseResult_TierBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  RelevanceTier
	}{
		{score: 0, want: TierLow},
		{score: 39, want: TierLow},
		{score: 40, want: TierMedium},
		{score: 69, want: TierMedium},
		{score: 70, want: TierHigh},
		{score: 100, want: TierHigh},
	}
	for _, tc := range tests {
		got := CaseResult{RelevanceScore: tc.score}.Tier()
		require.Equalf(t, tc.want, got, "score %d", tc.score)
	}
}

func TestCaseResult_MissingScoreIsLow(t *testing.T) {
	// A case with no relevance_score decodes to the zero value.
	require.Equal(t, TierLow, CaseResult{Title: "Doe v. Roe"}.Tier())
}

func TestCaseResult_DisplayDefaults(t *testing.T) {
	var c CaseResult
	require.Equal(t, "Untitled", c.DisplayTitle())
	require.Equal(t, "No citation", c.DisplayCitation())

	c = CaseResult{Title: "Doe v. Roe", Citation: "123 F.3d 456"}
	require.Equal(t, "Doe v. Roe", c.DisplayTitle())
	require.Equal(t, "123 F.3d 456", c.DisplayCitation())
}

func TestParty_DisplayRoleDefault(t *testing.T) {
	require.Equal(t, "Unknown", Party{Name: "J. Doe"}.DisplayRole())
	require.Equal(t, "Plaintiff", Party{Name: "J. Doe", Role: "Plaintiff"}.DisplayRole())
}

func TestAnalysisResult_Empty(t *testing.T) {
	require.True(t, AnalysisResult{}.Empty())
	require.False(t, AnalysisResult{Facts: []string{"a fact"}}.Empty())
	require.False(t, AnalysisResult{PenalCodes: []PenalCode{{Code: "PC 484"}}}.Empty())
}
