package driven

// ConfigStore provides persistent application configuration.
// Keys use dot notation (e.g. "llm.model", "server.addr").
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when unset.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 when unset.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false when unset.
	GetBool(key string) bool

	// Set stores a value and persists it.
	Set(key string, value any) error

	// Path returns the backing file path.
	Path() string
}
