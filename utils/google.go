// utils/google.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"os"

	"chelmassage/config"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Scopes requested from the service account.
const (
	ScopeCalendar     = "https://www.googleapis.com/auth/calendar"
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeGmailSend    = "https://www.googleapis.com/auth/gmail.send"
	ScopeStorage      = "https://www.googleapis.com/auth/devstorage.read_write"
)

// ErrCredentialsMissing means the service account key file could not be found.
var ErrCredentialsMissing = errors.New("google service account key file not found")

// GoogleClientOptions builds API client options from the configured service account key file.
func GoogleClientOptions(scopes ...string) ([]option.ClientOption, error) {
	path := config.AppConfig.GoogleCredentialsFile
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, path)
		}
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	return []option.ClientOption{
		option.WithCredentialsFile(path),
		option.WithScopes(scopes...),
	}, nil
}

// DelegatedClientOptions impersonates subject through domain-wide delegation.
// Gmail requires this for service accounts since they have no mailbox of their own.
func DelegatedClientOptions(ctx context.Context, subject string, scopes ...string) ([]option.ClientOption, error) {
	path := config.AppConfig.GoogleCredentialsFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, path)
		}
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("google credentials: parse key: %w", err)
	}
	jwtCfg.Subject = subject
	return []option.ClientOption{
		option.WithHTTPClient(jwtCfg.Client(ctx)),
	}, nil
}
