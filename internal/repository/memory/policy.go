package memory

import (
	"context"
	"sync"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"

	"github.com/google/uuid"
)

// PolicyStore is an in-memory snapshot of team and shared-folder link
// policies. Policies are seeded by configuration or tests; the sharing
// core only reads them.
type PolicyStore struct {
	mu      sync.RWMutex
	teams   map[uuid.UUID]*policy.Policy
	folders map[uuid.UUID]map[string]*policy.Policy
}

func NewPolicyStore() *PolicyStore {
	return &PolicyStore{
		teams:   make(map[uuid.UUID]*policy.Policy),
		folders: make(map[uuid.UUID]map[string]*policy.Policy),
	}
}

func (s *PolicyStore) SetTeamPolicy(teamID uuid.UUID, p *policy.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[teamID] = p
}

func (s *PolicyStore) SetFolderPolicy(teamID uuid.UUID, folderPath string, p *policy.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folders[teamID] == nil {
		s.folders[teamID] = make(map[string]*policy.Policy)
	}
	s.folders[teamID][folderPath] = p
}

func (s *PolicyStore) TeamPolicy(ctx context.Context, teamID uuid.UUID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teams[teamID], nil
}

// FolderPolicy resolves the nearest enclosing shared-folder policy: the
// path itself first, then each ancestor up to the root.
func (s *PolicyStore) FolderPolicy(ctx context.Context, teamID uuid.UUID, path string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := s.folders[teamID]
	if folders == nil {
		return nil, nil
	}
	if p, ok := folders[path]; ok {
		return p, nil
	}
	for _, ancestor := range link.Ancestors(path) {
		if p, ok := folders[ancestor]; ok {
			return p, nil
		}
	}
	return nil, nil
}
