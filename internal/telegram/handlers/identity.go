package handlers

import (
	"strconv"

	"github.com/google/uuid"
)

// userNamespace scopes interview user IDs derived from Telegram accounts
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://t.me/visa-interview-engine"))

// InterviewUserID maps a Telegram account to the stable user ID cases are owned by
func InterviewUserID(telegramUserID int64) string {
	return uuid.NewSHA1(userNamespace, []byte(strconv.FormatInt(telegramUserID, 10))).String()
}
