package matrix

import (
	"context"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/crypto/cryptohelper"

	"videoprompt/log"
)

const defaultPickleKey = "videoprompt-pickle-key"

// InitCrypto enables end-to-end encryption with a SQLite crypto store.
// Without a database path the bot only sees unencrypted rooms.
func InitCrypto(ctx context.Context, client *mautrix.Client, dbPath, pickleKey string) error {
	if dbPath == "" {
		log.Warn("Crypto DB path not set. E2EE disabled.")
		return nil
	}

	pKey := []byte(pickleKey)
	if len(pKey) == 0 {
		pKey = []byte(defaultPickleKey)
	}

	helper, err := cryptohelper.NewCryptoHelper(client, pKey, dbPath)
	if err != nil {
		return fmt.Errorf("failed to create crypto helper: %w", err)
	}
	if err := helper.Init(ctx); err != nil {
		return fmt.Errorf("failed to init crypto: %w", err)
	}

	client.Crypto = helper
	log.Info("🔒 End-to-End Encryption initialized")
	return nil
}

// newZerolog builds the logger mautrix writes its sync and crypto
// diagnostics to. It defaults to warn to keep sync noise out of the console.
func newZerolog(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "mautrix").Logger().
		Level(lvl)
}
