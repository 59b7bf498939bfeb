package keyring

import (
	"errors"
	"fmt"
	"strings"

	zk "github.com/zalando/go-keyring"
)

const (
	serviceName = "timesheet-cli"
	tokenPrefix = "token:"
)

var ErrNoToken = errors.New("api token not found")

// Tokens are stored per backend so switching base_url does not leak a token
// to another host.
func account(baseURL string) string {
	return tokenPrefix + strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

func SaveToken(baseURL, token string) error {
	if strings.TrimSpace(baseURL) == "" {
		return errors.New("base url is required")
	}
	if token == "" {
		return errors.New("token is required")
	}
	if err := zk.Set(serviceName, account(baseURL), token); err != nil {
		return fmt.Errorf("save token to keyring: %w", err)
	}
	return nil
}

func LoadToken(baseURL string) (string, error) {
	token, err := zk.Get(serviceName, account(baseURL))
	if err != nil {
		if errors.Is(err, zk.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token from keyring: %w", err)
	}
	return token, nil
}

func DeleteToken(baseURL string) error {
	err := zk.Delete(serviceName, account(baseURL))
	if err != nil && !errors.Is(err, zk.ErrNotFound) {
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	return nil
}
