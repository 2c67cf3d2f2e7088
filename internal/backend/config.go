package backend

import (
	"fmt"
	"time"

	"budgetvs/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SessionTTL  time.Duration
	MaxSessions int
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:        backendType,
		SessionTTL:  appConfig.SessionTTL,
		MaxSessions: appConfig.MaxSessions,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %v", c.SessionTTL)
	}
	if c.Type == MemoryBackend && c.MaxSessions < 1 {
		return fmt.Errorf("memory backend needs room for at least one session, got %d", c.MaxSessions)
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
