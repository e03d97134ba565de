package matrix

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/term"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"videoprompt/log"
)

const passwordEnv = "MATRIX_PASSWORD"

type Config struct {
	Homeserver        string `toml:"homeserver"`
	UserID            string `toml:"user_id"`
	CredentialsDBPath string `toml:"credentials_db_path"`
	CryptoDBPath      string `toml:"crypto_db_path"`
	PickleKey         string `toml:"pickle_key"`
	AutoJoinInvites   bool   `toml:"auto_join_invites"`
	LogLevel          string `toml:"log_level"`
}

// CredentialStore is the on-disk session. The access token is sealed with
// a key derived from the account password.
type CredentialStore struct {
	Homeserver    string   `json:"homeserver"`
	UserID        string   `json:"user_id"`
	DeviceID      string   `json:"device_id"`
	EncryptedData []byte   `json:"encrypted_data"`
	Nonce         [24]byte `json:"nonce"`
	Salt          []byte   `json:"salt"`
}

func deriveKey(password string, salt []byte) [32]byte {
	derived := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	var key [32]byte
	copy(key[:], derived)
	return key
}

func getPassword() (string, error) {
	if password := os.Getenv(passwordEnv); password != "" {
		return password, nil
	}

	fmt.Print("🔑 Enter Matrix password (or set " + passwordEnv + " env var): ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

func sealCredentials(homeserver, userID, deviceID, accessToken, password string) (*CredentialStore, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key := deriveKey(password, salt)
	return &CredentialStore{
		Homeserver:    homeserver,
		UserID:        userID,
		DeviceID:      deviceID,
		EncryptedData: secretbox.Seal(nil, []byte(accessToken), &nonce, &key),
		Nonce:         nonce,
		Salt:          salt,
	}, nil
}

func (s *CredentialStore) accessToken(password string) (string, error) {
	if len(s.Salt) == 0 {
		return "", errors.New("credentials file has no salt; delete it and log in again")
	}
	key := deriveKey(password, s.Salt)
	decrypted, ok := secretbox.Open(nil, s.EncryptedData, &s.Nonce, &key)
	if !ok {
		return "", errors.New("failed to decrypt credentials - wrong password?")
	}
	return string(decrypted), nil
}

func writeCredentials(path string, store *CredentialStore) error {
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func loadCredentials(path, password string) (*mautrix.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var store CredentialStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := store.accessToken(password)
	if err != nil {
		return nil, err
	}

	client, err := mautrix.NewClient(store.Homeserver, id.UserID(store.UserID), token)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	client.DeviceID = id.DeviceID(store.DeviceID)
	return client, nil
}

func loginAndSaveCredentials(ctx context.Context, cfg *Config, password string) (*mautrix.Client, error) {
	log.Infof("Logging into %s as %s...", cfg.Homeserver, cfg.UserID)

	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), "")
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	resp, err := client.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: cfg.UserID,
		},
		Password:                 password,
		InitialDeviceDisplayName: "videoprompt",
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	client.AccessToken = resp.AccessToken
	client.DeviceID = resp.DeviceID

	store, err := sealCredentials(cfg.Homeserver, cfg.UserID, string(resp.DeviceID), resp.AccessToken, password)
	if err != nil {
		return nil, err
	}
	if err := writeCredentials(cfg.CredentialsDBPath, store); err != nil {
		return nil, err
	}

	log.Infof("Credentials saved to %s", cfg.CredentialsDBPath)
	return client, nil
}

// GetMatrixClient restores the saved session, or logs in with the password
// and saves a new one.
func GetMatrixClient(ctx context.Context, cfg *Config) (*mautrix.Client, error) {
	password, err := getPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to get password: %w", err)
	}

	var client *mautrix.Client
	if _, statErr := os.Stat(cfg.CredentialsDBPath); os.IsNotExist(statErr) {
		log.Info("First-time login detected...")
		client, err = loginAndSaveCredentials(ctx, cfg, password)
	} else {
		log.Info("Loading existing session...")
		client, err = loadCredentials(cfg.CredentialsDBPath, password)
	}
	if err != nil {
		return nil, err
	}

	client.Log = newZerolog(cfg.LogLevel)
	return client, nil
}
