package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrTableNotFound is returned for unknown table IDs.
var ErrTableNotFound = errors.New("table not found")

// Registry tracks the tables served by this process.
type Registry struct {
	logger *log.Logger
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		logger: logger.WithPrefix("registry"),
		tables: make(map[string]*Table),
	}
}

// Register adds a table. Registering the same ID twice is an error.
func (r *Registry) Register(table *Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[table.ID]; ok {
		return fmt.Errorf("table %s already registered", table.ID)
	}
	r.tables[table.ID] = table
	r.logger.Info("Table registered", "table", table.ID)
	return nil
}

// Table retrieves a table by ID.
func (r *Registry) Table(id string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return table, nil
}

// Remove closes a table and drops it from the registry.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	table, ok := r.tables[id]
	delete(r.tables, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return table.Close(ctx)
}

// List returns a summary of every table sorted by ID.
func (r *Registry) List() []TableInfo {
	r.mu.RLock()
	tables := make([]*Table, 0, len(r.tables))
	for _, table := range r.tables {
		tables = append(tables, table)
	}
	r.mu.RUnlock()

	infos := make([]TableInfo, 0, len(tables))
	for _, table := range tables {
		infos = append(infos, table.Info())
	}
	slices.SortFunc(infos, func(a, b TableInfo) int { return strings.Compare(a.ID, b.ID) })
	return infos
}

// Close shuts down every table, saving each seated player's stack.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	tables := r.tables
	r.tables = make(map[string]*Table)
	r.mu.Unlock()

	var errs []error
	for _, table := range tables {
		if err := table.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
