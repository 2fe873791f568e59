package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions
const (
	ActionAnswer   = "ans"     // value: option index
	ActionSelect   = "sel"     // value: visa code
	ActionCommand  = "act"     // value: one of the Cmd* constants
	ActionConfirm  = "confirm" // value: confirmed action or ConfirmNo
	ActionDownload = "dl"      // value: report format
)

// Values of ActionCommand
const (
	CmdNext     = "next"
	CmdComplete = "complete"
	CmdChoose   = "choose"
	CmdReset    = "reset"
	CmdLock     = "lock"
	CmdProgress = "progress"
)

const ConfirmNo = "no"

// maxCallbackData is the Telegram limit for callback_data
const maxCallbackData = 64

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid callback format: %q", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	data := action + ":" + value
	if len(data) > maxCallbackData {
		// Telegram rejects the whole keyboard otherwise
		data = data[:maxCallbackData]
	}
	return data
}
