package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const tokenFile = "token"

func tokenPath() string {
	return filepath.Join(home, tokenFile)
}

// currentToken prefers $NETVIEW_TOKEN over the token saved by login.
func currentToken() (string, error) {
	if v := strings.TrimSpace(os.Getenv(tokenEnv)); v != "" {
		return v, nil
	}
	data, err := os.ReadFile(tokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", errLoginRequired
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errLoginRequired
	}
	return token, nil
}

func saveToken(token string) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(tokenPath(), []byte(token+"\n"), 0o600)
}

func clearToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
