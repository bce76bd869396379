package dispatch

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"surgical-scheduling-backend/internal/protocol"
)

// ErrUnroutable marks a message whose (receiver, kind) pair has no
// registered handler. Unknown combinations fail here; nothing is dropped
// silently.
var ErrUnroutable = errors.New("unroutable message")

// HandlerFunc processes one envelope and may answer with an outbound
// envelope, e.g. a REQUEST producing an INFORM.
type HandlerFunc func(env *protocol.Envelope) (*protocol.Envelope, error)

type routeKey struct {
	receiver protocol.Role
	kind     string
}

// Router delivers each envelope to exactly one addressed handler. It holds
// no business logic; its only contract is total, correct addressing.
type Router struct {
	mu       sync.RWMutex
	handlers map[routeKey]HandlerFunc
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{handlers: make(map[routeKey]HandlerFunc)}
}

// Register maps a (receiver, kind) pair to its handler. Registering the
// same pair twice overwrites the previous handler.
func (r *Router) Register(receiver protocol.Role, kind string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[routeKey{receiver: receiver, kind: kind}] = h
}

// Dispatch validates the envelope's addressing and invokes the matching
// handler synchronously, returning its result.
func (r *Router) Dispatch(env *protocol.Envelope) (*protocol.Envelope, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil envelope", ErrUnroutable)
	}
	if !protocol.ValidRole(env.Receiver) {
		return nil, fmt.Errorf("%w: unknown receiver %q", ErrUnroutable, env.Receiver)
	}
	if env.Content.Type == "" {
		return nil, fmt.Errorf("%w: envelope %s has no content type", ErrUnroutable, env.ID)
	}

	r.mu.RLock()
	handler, ok := r.handlers[routeKey{receiver: env.Receiver, kind: env.Content.Type}]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no handler for receiver %q kind %q",
			ErrUnroutable, env.Receiver, env.Content.Type)
	}

	log.Printf("Router delivering message %s to %s (kind=%s)", env.ID, env.Receiver, env.Content.Type)
	return handler(env)
}
