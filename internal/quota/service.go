package quota

import (
	"context"
	"fmt"

	"sharelink-service/internal/audit"
	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
)

const (
	errBatchTooLargeFmt = "batch exceeds %d members"
	errQuotaFloorFmt    = "quota for member %s is below the %d GB minimum"
)

// Service is the batch validation and mutation engine for per-member
// custom storage quotas. Call-level checks (batch size, quota floor) are
// atomic and run before any repository access; per-member outcomes are
// independent, so one invalid member never fails the batch.
type Service struct {
	quotas  repository.QuotaRepository
	members repository.MemberDirectory
	audit   *audit.Logger
}

func NewService(quotas repository.QuotaRepository, members repository.MemberDirectory, auditLogger *audit.Logger) *Service {
	return &Service{quotas: quotas, members: members, audit: auditLogger}
}

// Set assigns custom quotas to team members.
func (s *Service) Set(ctx context.Context, teamID uuid.UUID, entries []Entry) ([]Result, error) {
	if len(entries) > MaxBatchSize {
		return nil, apperrors.TooManyUsers(fmt.Sprintf(errBatchTooLargeFmt, MaxBatchSize))
	}
	// The floor is a caller-input error for the whole call, checked
	// before anything is written.
	for _, entry := range entries {
		if entry.QuotaGB < MinQuotaGB {
			return nil, apperrors.BadRequest(fmt.Sprintf(errQuotaFloorFmt, entry.MemberID, MinQuotaGB))
		}
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		ok, err := s.members.Exists(ctx, teamID, entry.MemberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			results = append(results, invalidUser(entry.MemberID))
			continue
		}

		if err := s.quotas.Upsert(ctx, entry.MemberID, entry.QuotaGB); err != nil {
			return nil, err
		}
		gb := entry.QuotaGB
		results = append(results, Result{MemberID: entry.MemberID, Status: StatusSuccess, QuotaGB: &gb})
	}

	s.recordAudit(teamID, audit.ActionSet, len(entries))
	return results, nil
}

// Remove clears custom quotas, returning members to the team default.
func (s *Service) Remove(ctx context.Context, teamID uuid.UUID, memberIDs []uuid.UUID) ([]Result, error) {
	if len(memberIDs) > MaxBatchSize {
		return nil, apperrors.TooManyUsers(fmt.Sprintf(errBatchTooLargeFmt, MaxBatchSize))
	}

	results := make([]Result, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		ok, err := s.members.Exists(ctx, teamID, memberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			results = append(results, invalidUser(memberID))
			continue
		}

		// Removing an absent override succeeds; no-override is a normal
		// state, not an error.
		if err := s.quotas.Remove(ctx, memberID); err != nil {
			return nil, err
		}
		results = append(results, Result{MemberID: memberID, Status: StatusSuccess})
	}

	s.recordAudit(teamID, audit.ActionRemove, len(memberIDs))
	return results, nil
}

// Get reports custom quotas. Members without an override yield a success
// result with an absent quota.
func (s *Service) Get(ctx context.Context, teamID uuid.UUID, memberIDs []uuid.UUID) ([]Result, error) {
	if len(memberIDs) > MaxBatchSize {
		return nil, apperrors.TooManyUsers(fmt.Sprintf(errBatchTooLargeFmt, MaxBatchSize))
	}

	overrides, err := s.quotas.GetBatch(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		ok, err := s.members.Exists(ctx, teamID, memberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			results = append(results, invalidUser(memberID))
			continue
		}

		result := Result{MemberID: memberID, Status: StatusSuccess}
		if gb, found := overrides[memberID]; found {
			result.QuotaGB = &gb
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *Service) recordAudit(teamID uuid.UUID, action audit.Action, count int) {
	if s.audit == nil {
		return
	}
	team := teamID
	s.audit.Record(&audit.Event{
		TeamID:       &team,
		ResourceType: audit.ResourceTypeCustomQuota,
		Action:       action,
		Status:       audit.StatusSuccess,
		Metadata:     map[string]any{"members": count},
	})
}

func invalidUser(memberID uuid.UUID) Result {
	return Result{MemberID: memberID, Status: StatusInvalidUser}
}
