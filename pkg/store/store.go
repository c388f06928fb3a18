// Package store provides in-memory storage for named variable scopes.
package store

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/types"
)

var (
	// ErrNotFound is returned when a scope does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a scope under a taken name.
	ErrAlreadyExists = errors.New("already exists")
)

// Scope is a named set of variable definitions together with their resolved
// values.
type Scope struct {
	Name        string              `json:"name"`
	RevisionID  string              `json:"revisionId"`
	Definitions []parser.Definition `json:"definitions"`
	CreateTime  time.Time           `json:"createTime"`
	UpdateTime  time.Time           `json:"updateTime"`

	// Values holds the resolved definitions. The map is never modified after
	// it is stored.
	Values map[string]types.Value `json:"-"`
}

// Store is a thread-safe in-memory storage for scopes.
type Store struct {
	mu     sync.RWMutex
	scopes map[string]*Scope

	revCounter int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		scopes: make(map[string]*Scope),
	}
}

// CreateScope stores a new scope.
func (s *Store) CreateScope(name string, defs []parser.Definition, values map[string]types.Value) (*Scope, error) {
	if name == "" {
		return nil, fmt.Errorf("scope name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scopes[name]; exists {
		return nil, fmt.Errorf("scope %q: %w", name, ErrAlreadyExists)
	}

	now := time.Now()
	sc := &Scope{
		Name:        name,
		RevisionID:  s.nextRevision(),
		Definitions: slices.Clone(defs),
		Values:      maps.Clone(values),
		CreateTime:  now,
		UpdateTime:  now,
	}
	s.scopes[name] = sc
	return sc.snapshot(), nil
}

// GetScope retrieves a scope by name.
func (s *Store) GetScope(name string) (*Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scopes[name]
	if !ok {
		return nil, fmt.Errorf("scope %q: %w", name, ErrNotFound)
	}
	return sc.snapshot(), nil
}

// ListScopes returns all scopes ordered by name.
func (s *Store) ListScopes() []*Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Scope, 0, len(s.scopes))
	for _, sc := range s.scopes {
		result = append(result, sc.snapshot())
	}
	slices.SortFunc(result, func(a, b *Scope) int { return strings.Compare(a.Name, b.Name) })
	return result
}

// UpdateScope replaces the definitions and values of a scope and assigns a
// new revision.
func (s *Store) UpdateScope(name string, defs []parser.Definition, values map[string]types.Value) (*Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scopes[name]
	if !ok {
		return nil, fmt.Errorf("scope %q: %w", name, ErrNotFound)
	}

	updated := *sc
	updated.Definitions = slices.Clone(defs)
	updated.Values = maps.Clone(values)
	updated.RevisionID = s.nextRevision()
	updated.UpdateTime = time.Now()
	s.scopes[name] = &updated
	return updated.snapshot(), nil
}

// DeleteScope removes a scope.
func (s *Store) DeleteScope(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scopes[name]; !ok {
		return fmt.Errorf("scope %q: %w", name, ErrNotFound)
	}
	delete(s.scopes, name)
	return nil
}

// nextRevision must be called with the write lock held.
func (s *Store) nextRevision() string {
	s.revCounter++
	return fmt.Sprintf("%06d-%s", s.revCounter, uuid.NewString()[:8])
}

// snapshot returns a copy the caller may keep. Values is shared since it is
// never modified in place.
func (sc *Scope) snapshot() *Scope {
	c := *sc
	c.Definitions = slices.Clone(sc.Definitions)
	return &c
}
