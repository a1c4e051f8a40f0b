package memory

import (
	"context"
	"sync"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
)

const errEntryNotFound = "path does not exist"

// Namespace is an in-memory PathResolver over per-team filesystem
// entries. The real namespace is owned by an external metadata
// subsystem; this stands in for it in tests and dev mode.
type Namespace struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]map[string]repository.PathEntry
}

func NewNamespace() *Namespace {
	return &Namespace{entries: make(map[uuid.UUID]map[string]repository.PathEntry)}
}

// AddEntry registers an entry and, implicitly, its ancestor folders.
func (n *Namespace) AddEntry(teamID uuid.UUID, path string, isDir bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.entries[teamID] == nil {
		n.entries[teamID] = make(map[string]repository.PathEntry)
	}
	n.entries[teamID][path] = repository.PathEntry{Path: path, IsDir: isDir}
	for _, ancestor := range link.Ancestors(path) {
		if _, ok := n.entries[teamID][ancestor]; !ok {
			n.entries[teamID][ancestor] = repository.PathEntry{Path: ancestor, IsDir: true}
		}
	}
}

func (n *Namespace) Stat(ctx context.Context, teamID uuid.UUID, path string) (*repository.PathEntry, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	entry, ok := n.entries[teamID][path]
	if !ok {
		return nil, apperrors.PathNotFound(errEntryNotFound)
	}
	out := entry
	return &out, nil
}

// Directory is an in-memory MemberDirectory.
type Directory struct {
	mu      sync.RWMutex
	members map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewDirectory() *Directory {
	return &Directory{members: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

func (d *Directory) AddMember(teamID, memberID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.members[teamID] == nil {
		d.members[teamID] = make(map[uuid.UUID]struct{})
	}
	d.members[teamID][memberID] = struct{}{}
}

func (d *Directory) Exists(ctx context.Context, teamID, memberID uuid.UUID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.members[teamID][memberID]
	return ok, nil
}
