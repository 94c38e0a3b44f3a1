// Package tracing wires the optional Langfuse observability callback
// for eino model calls. Tracing is off unless both Langfuse keys are
// present in the environment, so local runs stay silent.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// Config holds the Langfuse connection settings.
type Config struct {
	// Host is the Langfuse API endpoint. Defaults to a local instance.
	Host string
	// PublicKey and SecretKey authenticate against the Langfuse project.
	PublicKey string
	SecretKey string
}

// FromEnv reads LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and
// LANGFUSE_SECRET_KEY. The second return value is false when either key
// is missing, meaning tracing should stay disabled.
func FromEnv() (Config, bool) {
	cfg := Config{
		Host:      os.Getenv("LANGFUSE_HOST"),
		PublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
		SecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
	}
	if cfg.PublicKey == "" || cfg.SecretKey == "" {
		return Config{}, false
	}
	if cfg.Host == "" {
		cfg.Host = "http://localhost:3000"
	}
	return cfg, true
}

// Setup builds the Langfuse callback handler for cfg. The returned
// flush function must be called before process exit so buffered traces
// are delivered.
func Setup(cfg Config) (callbacks.Handler, func()) {
	return langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      cfg.Host,
		PublicKey: cfg.PublicKey,
		SecretKey: cfg.SecretKey,
	})
}

// SetupFromEnv combines [FromEnv] and [Setup]. When tracing is not
// configured the handler and flush function are nil and the final
// return value is false.
func SetupFromEnv() (callbacks.Handler, func(), bool) {
	cfg, ok := FromEnv()
	if !ok {
		return nil, nil, false
	}
	handler, flush := Setup(cfg)
	return handler, flush, true
}
