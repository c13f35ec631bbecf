package credentials

import (
	"github.com/pkg/errors"

	"github.com/orderdesk/go-chatbot-client/internal/config"
)

// New builds the credential store backend selected by configuration.
// Supported backends: "file" (default) and "redis".
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.GetStoreBackend() {
	case "", "file":
		return NewFileStore(cfg.GetStateFile())
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
			Prefix:   cfg.GetRedisPrefix(),
		})
	default:
		return nil, errors.Errorf("[credentials.New] unknown store backend %q", cfg.GetStoreBackend())
	}
}
