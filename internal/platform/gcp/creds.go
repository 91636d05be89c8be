package gcp

import (
	"encoding/json"
	"strings"

	"google.golang.org/api/option"

	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
)

// ClientOptionsFromEnv reads GOOGLE_APPLICATION_CREDENTIALS_JSON, then
// GOOGLE_APPLICATION_CREDENTIALS. Nothing set means application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	raw := envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	if raw == "" {
		raw = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")
	}
	return credentialOptions(raw)
}

// credentialOptions treats inline JSON as key material and anything else as a path.
func credentialOptions(raw string) []option.ClientOption {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil
	case strings.HasPrefix(raw, "{") && json.Valid([]byte(raw)):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(raw)}
	}
}
