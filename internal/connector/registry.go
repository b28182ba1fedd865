package connector

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
)

// Registry caches clients per credential so a configured client is
// built once and reused across requests. Keys are credential hashes,
// never the credentials themselves.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
	logger  *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		logger:  log,
	}
}

// Acquire returns the client for the given configuration, creating it
// on first use. Returns ErrNotConfigured when no API key is set.
func (r *Registry) Acquire(cfg *Config) (*Client, error) {
	// Normalize before hashing so defaulted and explicit configs
	// resolve to the same client.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := credentialKey(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[key]; ok {
		return client, nil
	}

	client, err := New(cfg, r.logger)
	if err != nil {
		return nil, err
	}

	r.clients[key] = client
	return client, nil
}

func credentialKey(cfg *Config) string {
	h := sha256.New()
	h.Write([]byte(cfg.APIKey))
	h.Write([]byte{0})
	h.Write([]byte(cfg.AuthConfigID))
	h.Write([]byte{0})
	h.Write([]byte(cfg.BaseURL))
	return hex.EncodeToString(h.Sum(nil))
}
