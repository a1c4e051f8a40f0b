package memory

import (
	"context"
	"sort"
	"sync"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
)

const (
	errLinkNotFound      = "shared link not found"
	errLinkExists        = "shared link already exists"
	errCursorAnchorGone  = "listing anchor no longer exists"
	errCursorGenMismatch = "link set was rewritten since the cursor was issued"
)

// LinkStore is a mutex-guarded in-memory LinkRepository. It backs tests
// and the single-node dev mode, and mirrors the conditional-write
// semantics of the Postgres adapter.
type LinkStore struct {
	mu         sync.RWMutex
	byURL      map[string]*link.Record
	generation uint64
}

func NewLinkStore() *LinkStore {
	return &LinkStore{byURL: make(map[string]*link.Record), generation: 1}
}

func (s *LinkStore) Create(ctx context.Context, rec *link.Record) (*link.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byURL {
		if existing.TeamID != rec.TeamID || existing.OwningPath != rec.OwningPath {
			continue
		}
		if rec.Family == link.FamilyLegacy && existing.Family == link.FamilyLegacy {
			// Idempotent per path: hand back the live record.
			return copyRecord(existing), false, nil
		}
		if rec.Family == link.FamilySettings && existing.Family == link.FamilySettings &&
			existing.OwnerID == rec.OwnerID {
			return nil, false, apperrors.Conflict(errLinkExists)
		}
	}

	if _, ok := s.byURL[rec.URL]; ok {
		return nil, false, apperrors.Conflict(errLinkExists)
	}

	s.byURL[rec.URL] = copyRecord(rec)
	return copyRecord(rec), true, nil
}

func (s *LinkStore) GetByURL(ctx context.Context, url string) (*link.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byURL[url]
	if !ok {
		return nil, apperrors.NotFound(errLinkNotFound)
	}
	return copyRecord(rec), nil
}

func (s *LinkStore) GetByPath(ctx context.Context, teamID uuid.UUID, path string) (*link.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.byURL {
		if rec.TeamID == teamID && rec.OwningPath == path && rec.Family == link.FamilyLegacy {
			return copyRecord(rec), nil
		}
	}
	return nil, apperrors.NotFound(errLinkNotFound)
}

func (s *LinkStore) ListByPaths(ctx context.Context, teamID uuid.UUID, paths []string) ([]*link.Record, error) {
	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*link.Record, 0)
	for _, rec := range s.byURL {
		if rec.TeamID != teamID {
			continue
		}
		if _, ok := wanted[rec.OwningPath]; ok {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (s *LinkStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, after *repository.OwnerCursor, limit int) (*repository.LinkPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*link.Record, 0)
	for _, rec := range s.byURL {
		if rec.OwnerID == ownerID {
			owned = append(owned, rec)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.Before(owned[j].CreatedAt)
		}
		return owned[i].ID < owned[j].ID
	})

	start := 0
	if after != nil {
		anchor := -1
		for i, rec := range owned {
			if rec.ID == after.LinkID && rec.CreatedAt.Equal(after.CreatedAt) {
				anchor = i
				break
			}
		}
		if anchor < 0 {
			return nil, apperrors.CursorReset(errCursorAnchorGone)
		}
		start = anchor + 1
	}

	end := start + limit
	hasMore := false
	if end < len(owned) {
		hasMore = true
	} else {
		end = len(owned)
	}

	page := &repository.LinkPage{HasMore: hasMore, Generation: s.generation}
	for _, rec := range owned[start:end] {
		page.Records = append(page.Records, copyRecord(rec))
	}
	return page, nil
}

func (s *LinkStore) UpdateSettings(ctx context.Context, rec *link.Record) (*link.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byURL[rec.URL]
	if !ok {
		return nil, apperrors.NotFound(errLinkNotFound)
	}
	existing.Requested = rec.Requested
	existing.PasswordHash = rec.PasswordHash
	existing.ExpiresAt = rec.ExpiresAt
	return copyRecord(existing), nil
}

func (s *LinkStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byURL[url]; !ok {
		return apperrors.NotFound(errLinkNotFound)
	}
	delete(s.byURL, url)
	return nil
}

func (s *LinkStore) Generation(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, nil
}

// Compact models a compacting rewrite of the store: the stable ordering
// may shift, so the generation is bumped and outstanding cursors fail
// with a reset instead of returning inconsistent pages.
func (s *LinkStore) Compact() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

func copyRecord(rec *link.Record) *link.Record {
	out := *rec
	if rec.ExpiresAt != nil {
		t := *rec.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
