package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/spanmark/internal/document"
)

// Issue kinds reported by Check.
const (
	IssueStale      = "stale"
	IssueOutOfRange = "out_of_range"
	IssueEmpty      = "empty"
)

// IssueDTO describes one span that no longer fits the document.
type IssueDTO struct {
	Position int    `json:"position"`
	SpanID   string `json:"span_id"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Stored   string `json:"stored"`
	Current  string `json:"current,omitempty"`
	// Diff marks deletions as [-x-] and insertions as {+x+}.
	Diff string `json:"diff,omitempty"`
}

// Check compares every span against tokens and returns the ones whose
// ids or text no longer match, in list order.
func Check(tokens []document.Token, objects []document.Span) []IssueDTO {
	issues := []IssueDTO{}
	dmp := diffmatchpatch.New()
	for i, span := range objects {
		issue := IssueDTO{Position: i, SpanID: span.ID().String(), Label: span.Label, Stored: span.Text}
		if len(span.TokenIDs) == 0 {
			issue.Kind = IssueEmpty
			issues = append(issues, issue)
			continue
		}
		current, err := document.TextOf(tokens, span.TokenIDs)
		if err != nil {
			issue.Kind = IssueOutOfRange
			issues = append(issues, issue)
			continue
		}
		if current == span.Text {
			continue
		}
		issue.Kind = IssueStale
		issue.Current = current
		issue.Diff = inlineDiff(dmp, span.Text, current)
		issues = append(issues, issue)
	}
	return issues
}

func inlineDiff(dmp *diffmatchpatch.DiffMatchPatch, before, after string) string {
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
