package register

import (
	"sort"
	"sync"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
)

// Registry opens registers on first use and keeps them for the life of the
// process.
type Registry struct {
	deps Deps

	mu        sync.RWMutex
	registers map[string]*Register
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:      deps,
		registers: make(map[string]*Register),
	}
}

func (rg *Registry) Get(id string) (*Register, error) {
	rg.mu.RLock()
	reg, ok := rg.registers[id]
	rg.mu.RUnlock()
	if ok {
		return reg, nil
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()
	if reg, ok := rg.registers[id]; ok {
		return reg, nil
	}
	reg, err := New(id, rg.deps)
	if err != nil {
		return nil, err
	}
	rg.registers[id] = reg
	return reg, nil
}

func (rg *Registry) IDs() []string {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	ids := make([]string, 0, len(rg.registers))
	for id := range rg.registers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (rg *Registry) Catalog() *catalog.Catalog {
	return rg.deps.Catalog
}
