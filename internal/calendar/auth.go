// Package calendar provides OAuth client construction for the Google backend.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// OAuthConfig builds the oauth2 config for Google Calendar access.
// Token acquisition (the consent flow) is the host's concern; the core only
// consumes an already-authorized token.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{gcal.CalendarScope},
	}
}

// ClientFromTokenFile builds an authorized HTTP client from a token JSON
// file previously saved by the consent flow. The oauth2 transport refreshes
// the access token transparently.
func ClientFromTokenFile(ctx context.Context, config *oauth2.Config, path string) (*http.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	return config.Client(ctx, &token), nil
}
