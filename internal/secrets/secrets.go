// Package secrets resolves the OpenAI API key from a secret backend.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Provider fetches a raw secret payload by name.
type Provider interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Env reads secrets from environment variables, for local development.
type Env struct{}

// Fetch returns the value of the environment variable name.
func (Env) Fetch(_ context.Context, name string) ([]byte, error) {
	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	return []byte(value), nil
}

// conventionalKeyNames are the JSON field names checked, in order, before
// falling back to scanning for an sk- prefixed value.
var conventionalKeyNames = []string{
	"OPENAI_API_KEY",
	"openai_api_key",
	"api_key",
	"key",
	"ChatGPTKey",
	"chatgptkey",
	"chatgpt_key",
}

// ExtractAPIKey pulls the OpenAI API key out of a secret payload. The payload
// may be the bare key or a JSON object holding it under one of several
// conventional field names; as a last resort any string value starting with
// "sk-" is accepted.
func ExtractAPIKey(payload []byte) (string, error) {
	raw := strings.TrimSpace(string(payload))
	if raw == "" {
		return "", fmt.Errorf("secret payload is empty")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		// Not JSON: treat the whole payload as the key.
		return raw, nil
	}

	for _, name := range conventionalKeyNames {
		if value, ok := fields[name].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}
	if key, ok := findPrefixedKey(fields); ok {
		return key, nil
	}
	return "", fmt.Errorf("no API key found in secret payload (checked %s and sk- prefixed values)",
		strings.Join(conventionalKeyNames, ", "))
}

// findPrefixedKey walks arbitrarily nested maps and lists looking for any
// string value that starts with "sk-".
func findPrefixedKey(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		cleaned := strings.TrimSpace(v)
		if strings.HasPrefix(cleaned, "sk-") {
			return cleaned, true
		}
	case map[string]any:
		for _, nested := range v {
			if key, ok := findPrefixedKey(nested); ok {
				return key, true
			}
		}
	case []any:
		for _, nested := range v {
			if key, ok := findPrefixedKey(nested); ok {
				return key, true
			}
		}
	}
	return "", false
}

// APIKey fetches the named secret and extracts the OpenAI API key from it.
func APIKey(ctx context.Context, provider Provider, name string) (string, error) {
	payload, err := provider.Fetch(ctx, name)
	if err != nil {
		return "", fmt.Errorf("fetch secret %s: %w", name, err)
	}
	key, err := ExtractAPIKey(payload)
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", name, err)
	}
	return key, nil
}
