package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/futig/visa-interview/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I will help you find the US visa category that fits your situation.

I ask a few short questions and narrow the visa categories down after every answer.
The result is a suggested starting point for working with legal professionals.

To begin, send /start followed by your case ID.`

	MsgHelp = `🤖 Commands:

/start <case ID> - start an interview for your case
/progress - show interview progress
/complete - finish now with the best remaining match
/history - show earlier interviews and recommendations
/report [markdown|pdf|docx] - download the recommendation report
/reset - start the interview over
/lock - lock the current recommendation
/whoami - show the user ID to link your cases to
/cancel - detach this chat from the interview
/help - show this message`

	MsgWhoAmI = `🪪 Your interview user ID is:
%s

Cases created for this ID can be interviewed from this chat.`

	MsgNeedCaseID       = `ℹ️ Send /start followed by your case ID, for example:
/start 3f1c2a9e-6a51-4d7e-9c8b-2b0d4e5f6a7b`
	MsgNoSession        = `ℹ️ No interview is attached to this chat. Send /start <case ID>.`
	MsgUseButtons       = `👆 Please answer with one of the buttons above.`
	MsgConfirmReset     = `⚠️ Start over? Answers of the current interview will be discarded.`
	MsgResetCancelled   = `👌 Continuing the current interview.`
	MsgChooseVisa       = `📋 Pick one of the remaining visa categories:`
	MsgLocked           = `🔒 The recommendation is locked. New interviews for this case are closed.`
	MsgDetached         = `👋 This chat is no longer attached to an interview. Send /start <case ID> to continue.`
	MsgPreparingReport  = `⏳ Preparing the report...`
	MsgNoRecommendation = `ℹ️ There is no recommendation for this case yet.`

	ErrGeneric         = `❌ Something went wrong. Please try again or send /start.`
	ErrCaseNotFound    = `❌ Case not found. Check the case ID, /whoami shows the user ID it must belong to.`
	ErrSessionNotFound = `❌ Interview not found. Send /start <case ID>.`
	ErrSessionInactive = `❌ This interview is no longer active. Send /start <case ID> to begin a new one.`
	ErrSessionExpired  = `⌛ This interview has expired. Send /start <case ID> to begin a new one.`
	ErrCaseLocked      = `🔒 The interview for this case is locked.`
	ErrForbidden       = `⛔ This interview belongs to another user.`
	ErrInvalidInput    = `❌ That answer is not valid here. Please try again.`
	ErrRaceLost        = `⚠️ Another interview was started for this case at the same time. Send /start again.`
	ErrTimeout         = `❌ The operation took too long. Please try again.`
	ErrRateLimited     = `⚠️ Too many requests. Please wait a little.`
)

// RenderQuestion formats the question shown with answer buttons
func RenderQuestion(q *entity.Question, answered int, remaining []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "❓ Question %d\n\n%s", answered+1, q.Prompt)
	if q.Kind == entity.QuestionKindText {
		sb.WriteString("\n\n✍️ Type your answer.")
	}
	if len(remaining) > 0 {
		fmt.Fprintf(&sb, "\n\n🔎 %d visa categories still possible", len(remaining))
	}

	return sb.String()
}

// RenderRecommendation formats a finished interview
func RenderRecommendation(rec *entity.Recommendation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "✅ Recommended visa: %s (%s)\n\n%s", rec.VisaCode, rec.VisaName, rec.Rationale)
	if rec.UserConfirmed {
		sb.WriteString("\n\n👤 Selected by you.")
	}
	if rec.IsLocked() {
		sb.WriteString("\n\n🔒 Locked.")
	}

	return sb.String()
}

// RenderProgress formats a progress snapshot with a progress bar
func RenderProgress(p *entity.Progress) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 Interview %s\n\n%s\n\n", p.Session.Status, renderProgressBar(p.CompletionPercentage))
	fmt.Fprintf(&sb, "Answered: %d\n", p.TotalQuestionsAnswered)
	if p.Session.Status == entity.SessionStatusActive {
		fmt.Fprintf(&sb, "About %d question(s) left\n", p.EstimatedQuestionsRemaining)
	}
	if len(p.RemainingVisaCodes) > 0 {
		fmt.Fprintf(&sb, "Possible visas: %s\n", strings.Join(p.RemainingVisaCodes, ", "))
	}
	fmt.Fprintf(&sb, "Last activity: %s", p.LastActivityAt.UTC().Format(time.RFC822))

	return sb.String()
}

// RenderHistory lists the sessions and recommendations of a case
func RenderHistory(h *entity.CaseHistory) string {
	var sb strings.Builder

	sb.WriteString("🗂 Interview history\n")
	if h.Case.InterviewLocked {
		sb.WriteString("🔒 Locked\n")
	}

	sb.WriteString("\nInterviews:\n")
	if len(h.Sessions) == 0 {
		sb.WriteString("  none\n")
	}
	for _, s := range h.Sessions {
		fmt.Fprintf(&sb, "  • %s, %s\n", s.StartedAt.UTC().Format(time.RFC822), s.Status)
	}

	sb.WriteString("\nRecommendations:\n")
	if len(h.Recommendations) == 0 {
		sb.WriteString("  none\n")
	}
	for _, rec := range h.Recommendations {
		marker := ""
		if rec.IsCurrent {
			marker = " ⭐"
		}
		fmt.Fprintf(&sb, "  • %s (%s)%s\n", rec.VisaCode, rec.VisaName, marker)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(percent int) string {
	percent = max(0, min(percent, 100))
	filled := percent / 10

	return fmt.Sprintf("[%s%s] %d%%", strings.Repeat("▓", filled), strings.Repeat("░", 10-filled), percent)
}
