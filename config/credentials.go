package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceAccount holds the fields of the Google key file the server reports on.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// LoadServiceAccount reads the key file at path. The calendar and spreadsheet
// must be shared with the returned ClientEmail.
func LoadServiceAccount(path string) (ServiceAccount, error) {
	var sa ServiceAccount
	data, err := os.ReadFile(path)
	if err != nil {
		return sa, err
	}
	if err := json.Unmarshal(data, &sa); err != nil {
		return sa, fmt.Errorf("parse %s: %w", path, err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return sa, fmt.Errorf("%s is not a service account key", path)
	}
	return sa, nil
}
