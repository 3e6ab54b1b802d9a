package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/elliotchance/orderedmap/v2"
)

var (
	ErrCommandExists   = errors.New("command is already registered")
	ErrCommandNotFound = errors.New("command not found")
)

// Handler implements a command. Arguments arrive as decoded JSON values.
type Handler func(ctx context.Context, args ...interface{}) (interface{}, error)

// Executor runs commands by ID.
type Executor interface {
	Execute(ctx context.Context, id string, args ...interface{}) (interface{}, error)
}

// Registry holds the registered commands in registration order.
type Registry struct {
	log logger.Logger

	mu       sync.RWMutex
	handlers *orderedmap.OrderedMap[string, Handler]
}

func NewRegistry() *Registry {
	registry := &Registry{
		handlers: orderedmap.NewOrderedMap[string, Handler](),
	}
	config.InitLogger(&registry.log, registry)

	return registry
}

// Register adds a command and returns a function that removes it again.
func (r *Registry) Register(id string, handler Handler) (func(), error) {
	if handler == nil {
		return nil, fmt.Errorf("nil handler for command \"%s\"", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, loaded := r.handlers.Get(id); loaded {
		return nil, fmt.Errorf("%w: \"%s\"", ErrCommandExists, id)
	}
	r.handlers.Set(id, handler)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.handlers.Delete(id)
		})
	}, nil
}

// Execute runs the command with the given ID.
func (r *Registry) Execute(ctx context.Context, id string, args ...interface{}) (interface{}, error) {
	r.mu.RLock()
	handler, ok := r.handlers.Get(id)
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: \"%s\"", ErrCommandNotFound, id)
	}

	r.log.Debug("Executing command \"%s\" with %d argument(s).", id, len(args))
	return handler(ctx, args...)
}

// Has returns true if a command with the given ID is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handlers.Get(id)
	return ok
}

// Commands returns the IDs of the registered commands in registration order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, r.handlers.Len())
	for el := r.handlers.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key)
	}
	return ids
}

// RegisterListCommand registers ListCommands, which returns the IDs of every registered command.
func (r *Registry) RegisterListCommand() (func(), error) {
	return r.Register(ListCommands, func(_ context.Context, _ ...interface{}) (interface{}, error) {
		return r.Commands(), nil
	})
}
