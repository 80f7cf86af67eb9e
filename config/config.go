package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AppDir returns the application directory used for persisted state
// (credentials, downloaded encoder binaries). TRACKTIDY_HOME overrides the
// default location under the user's config directory.
func AppDir() string {
	if custom := os.Getenv("TRACKTIDY_HOME"); custom != "" {
		return custom
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to current directory if the config dir is unavailable
		return filepath.Join(".", ".tracktidy")
	}

	return filepath.Join(configDir, "tracktidy")
}

// BinDir returns the directory where downloaded encoder binaries live.
func BinDir() string {
	return filepath.Join(AppDir(), "bin")
}

// Credentials holds the Spotify client id/secret used by the cover art
// fetcher. Entered once, persisted, reused on later runs.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// IsSet reports whether both fields are present.
func (c Credentials) IsSet() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// CredentialsPath returns the path to the persisted credential file.
func CredentialsPath() string {
	return filepath.Join(AppDir(), "spotify_creds.json")
}

// LoadCredentials reads the credential record. Environment variables
// SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET take precedence over the file.
// A missing file yields empty credentials, not an error.
func LoadCredentials() (Credentials, error) {
	env := Credentials{
		ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
	}
	if env.IsSet() {
		return env, nil
	}

	data, err := os.ReadFile(CredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return creds, nil
}

// SaveCredentials persists the credential record for future runs.
func SaveCredentials(creds Credentials) error {
	if err := os.MkdirAll(AppDir(), 0755); err != nil {
		return fmt.Errorf("failed to create app directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(CredentialsPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// ResetCredentials removes the persisted credential file.
func ResetCredentials() error {
	err := os.Remove(CredentialsPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
