package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/taleframe/taleframe-backend/internal/repos"
)

// Stores bundles the shared store handles passed to processors that declare
// NeedsStore. Pure processors receive nil.
type Stores struct {
	Tasks  repos.TaskRepo
	Scenes repos.SceneRepo
}

// Processor is the capability contract every step implementation satisfies.
// Terminal means the executor enqueues no order+1 successor after it; the
// fan-out after scene parsing and the notify hand-off after the image step are
// special-cased elsewhere.
type Processor interface {
	Order() int
	Name() string
	NeedsStore() bool
	Terminal() bool
	Run(ctx context.Context, payload, pipelineID string, stores *Stores) (string, error)
}

// Registry resolves a task's order to its processor. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	mu         sync.RWMutex
	processors map[int]Processor
}

func NewRegistry() *Registry {
	return &Registry{processors: make(map[int]Processor)}
}

func (r *Registry) Register(p Processor) error {
	if p == nil {
		return fmt.Errorf("nil processor")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.processors[p.Order()]; exists {
		return fmt.Errorf("processor already registered for order=%d", p.Order())
	}
	r.processors[p.Order()] = p
	return nil
}

func (r *Registry) Get(order int) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[order]
	return p, ok
}
