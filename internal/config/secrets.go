package config

import "fmt"

// Secret keys read by the core components.
const (
	KeyStoreID   = "STORE_ID"
	KeyLLMAPIKey = "LLM_API_KEY"
)

// Secrets is the read-only lookup components use for named secrets.
type Secrets interface {
	Secret(key string) (string, bool)
}

// MissingError reports a required secret that is not configured.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

// Require returns the named secret or a *MissingError.
func Require(s Secrets, key string) (string, error) {
	if s == nil {
		return "", &MissingError{Key: key}
	}
	v, ok := s.Secret(key)
	if !ok || v == "" {
		return "", &MissingError{Key: key}
	}
	return v, nil
}

// StaticSecrets is a fixed key/value Secrets, handy for tests and embedding.
type StaticSecrets map[string]string

func (s StaticSecrets) Secret(key string) (string, bool) {
	v, ok := s[key]
	return v, ok && v != ""
}
