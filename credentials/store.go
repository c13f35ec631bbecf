package credentials

import "github.com/pkg/errors"

// Storage keys for the two credential slots. They are written independently;
// restore logic treats partial state as unauthenticated.
const (
	TokenKey = "chatbot_token"
	UserKey  = "chatbot_user"
)

var ErrNotFound = errors.New("credential not found")

// Store is durable keyed string storage for the session token and user
// record. Implementations must survive process restarts (the fake excepted).
// No expiry enforcement happens at this layer.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
