package keyboard

import (
	"strconv"

	"github.com/futig/visa-interview/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const candidatesPerRow = 3

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// QuestionKeyboard shows one button per option followed by interview controls.
// Text questions get only the controls, the answer is typed.
func (b *Builder) QuestionKeyboard(q *entity.Question) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}

	if q.Kind != entity.QuestionKindText {
		for i, opt := range q.Options {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionAnswer, strconv.Itoa(i))),
			))
		}
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Pick a visa myself", EncodeCallback(ActionCommand, CmdChoose)),
			tgbotapi.NewInlineKeyboardButtonData("✅ Finish now", EncodeCallback(ActionCommand, CmdComplete)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Progress", EncodeCallback(ActionCommand, CmdProgress)),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionCommand, CmdReset)),
		),
	)

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CandidatesKeyboard lets the user pick one of the remaining visa codes
func (b *Builder) CandidatesKeyboard(codes []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}

	var row []tgbotapi.InlineKeyboardButton
	for _, code := range codes {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(code, EncodeCallback(ActionSelect, code)))
		if len(row) == candidatesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Back to questions", EncodeCallback(ActionCommand, CmdNext)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ResultKeyboard offers report downloads, plus lock and restart while the case is open
func (b *Builder) ResultKeyboard(locked bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 .md", EncodeCallback(ActionDownload, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📕 .pdf", EncodeCallback(ActionDownload, string(entity.FormatPDF))),
			tgbotapi.NewInlineKeyboardButtonData("📘 .docx", EncodeCallback(ActionDownload, string(entity.FormatDOCX))),
		),
	}

	if !locked {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔒 Lock this recommendation", EncodeCallback(ActionCommand, CmdLock)),
		), tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionCommand, CmdReset)),
		))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConfirmKeyboard asks to confirm a destructive action
func (b *Builder) ConfirmKeyboard(action string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes", EncodeCallback(ActionConfirm, action)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, ConfirmNo)),
		),
	)
}
