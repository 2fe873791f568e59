package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/pkg/formatter"
)

const reportTimeLayout = "2006-01-02 15:04 MST"

// Report renders the case's recommendation history in the requested format
func (uc *InterviewUsecase) Report(
	ctx context.Context, caseID, userID string, format entity.ResultFormat,
) (*entity.Report, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	history, err := uc.History(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}

	content, err := f.Format(buildReportDocument(history))
	if err != nil {
		return nil, fmt.Errorf("format report: %w", err)
	}

	return &entity.Report{
		FileName:    "visa-recommendation-" + history.Case.ID + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

func buildReportDocument(h *entity.CaseHistory) *formatter.Document {
	doc := &formatter.Document{Title: "Visa Recommendation Report"}

	status := "open"
	if h.Case.InterviewLocked {
		status = "locked"
	}
	doc.Sections = append(doc.Sections, formatter.Section{
		Heading: "Case",
		Lines: []string{
			"Case: " + h.Case.ID,
			"Interview: " + status,
			"Last activity: " + h.Case.LastActivityAt.Format(reportTimeLayout),
		},
	})

	current := formatter.Section{Heading: "Current recommendation"}
	if h.Current == nil {
		current.Lines = []string{"No recommendation yet."}
	} else {
		current.Lines = recommendationLines(h.Current)
	}
	doc.Sections = append(doc.Sections, current)

	if len(h.Recommendations) > 1 {
		previous := formatter.Section{Heading: "Previous recommendations"}
		for _, rec := range h.Recommendations {
			if rec.IsCurrent {
				continue
			}
			previous.Lines = append(previous.Lines, fmt.Sprintf("%s %s (%s), %s",
				rec.CreatedAt.Format(reportTimeLayout), rec.VisaCode, rec.VisaName, source(rec)))
		}
		doc.Sections = append(doc.Sections, previous)
	}

	sessions := formatter.Section{Heading: "Interview sessions"}
	for _, s := range h.Sessions {
		sessions.Lines = append(sessions.Lines, sessionLine(s))
	}
	if len(sessions.Lines) == 0 {
		sessions.Lines = []string{"No interview sessions."}
	}
	doc.Sections = append(doc.Sections, sessions)

	return doc
}

func recommendationLines(rec *entity.Recommendation) []string {
	lines := []string{
		fmt.Sprintf("Visa: %s (%s)", rec.VisaCode, rec.VisaName),
		"Source: " + source(rec),
		"Created: " + rec.CreatedAt.Format(reportTimeLayout),
	}
	if rec.LockedAt != nil {
		lines = append(lines, "Locked: "+rec.LockedAt.Format(reportTimeLayout))
	}
	return append(lines, "Rationale: "+rec.Rationale)
}

func source(rec *entity.Recommendation) string {
	if rec.UserConfirmed {
		return "selected by user"
	}
	return "interview result"
}

func sessionLine(s *entity.InterviewSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s started %s, %s", s.ID, s.StartedAt.Format(reportTimeLayout), s.Status)
	if s.FinishedAt != nil {
		fmt.Fprintf(&b, " at %s", s.FinishedAt.Format(reportTimeLayout))
	}
	if s.FinishedAt != nil && s.Status == entity.SessionStatusCompleted {
		fmt.Fprintf(&b, " after %s", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}
	return b.String()
}
