// Package secrets resolves the Telegram bot token: environment first (the
// cron deployment), OS keyring second (interactive machines).
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	KeyringService = "carscout"
	keyringAccount = "telegram-bot-token"

	envToken = "TELEGRAM_BOT_TOKEN"
)

// GetBotToken returns the bot token or an error when neither source has
// one. Resolution failure is not fatal to a run; the caller downgrades to
// a disabled notifier.
func GetBotToken() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envToken)); v != "" {
		return v, nil
	}

	tok, err := keyring.Get(KeyringService, keyringAccount)
	if err == nil && strings.TrimSpace(tok) != "" {
		return tok, nil
	}
	return "", errors.New("telegram bot token not found (set TELEGRAM_BOT_TOKEN or store it with `scout token set`)")
}

func SetBotToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, token)
}

func DeleteBotToken() error {
	return keyring.Delete(KeyringService, keyringAccount)
}
