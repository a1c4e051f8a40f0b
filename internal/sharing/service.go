package sharing

import (
	"context"
	"time"

	"sharelink-service/internal/audit"
	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"
	"sharelink-service/internal/infra/cache"
	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"
	"sharelink-service/pkg/token"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	errLoginRequired        = "login required"
	errTeamOnlyLink         = "link is restricted to the owning team"
	errFolderMembersOnly    = "link is restricted to members of the shared folder"
	errPasswordRequired     = "link password required"
	errPasswordMismatch     = "incorrect link password"
	errLinkExpired          = "shared link has expired"
	errMalformedURL         = "malformed shared link URL"
	errOwnerOnly            = "only the link owner may perform this operation"
	errLegacyNoSettings     = "legacy shared links do not support settings"
	errPasswordNotProvided  = "requested visibility is password but no password was provided"
	errSubPathOnFile        = "sub-path lookup is only supported on folder links"
	errFailedHashPassword   = "failed to hash link password"
	errFailedGenerateLinkID = "failed to generate link id"
)

// Metadata is the resolved, caller-facing view of a shared link.
type Metadata struct {
	ID        string
	URL       string
	Path      string
	IsDir     bool
	OwnerID   string
	Family    link.Family
	Requested link.RequestedVisibility
	Resolved  policy.ResolvedAccess

	// PasswordProtected is true when the link itself carries a password
	// or an active policy mandates one. Callers seeing shared_folder_only
	// consult this alongside the resolved visibility, since the closed
	// enum has no combined folder+password value.
	PasswordProtected bool

	ExpiresAt *time.Time
	CreatedAt time.Time

	// AlreadyExisted is set on create when an idempotent legacy create
	// returned the pre-existing link.
	AlreadyExisted bool
}

// Service implements the shared-link operations: create, lookup, list,
// modify, revoke. All failure outcomes are typed errors; nothing here
// panics across the boundary.
type Service struct {
	links    repository.LinkRepository
	policies repository.PolicyStore
	paths    repository.PathResolver
	enum     *Enumerator
	cache    *cache.MetadataCache
	audit    *audit.Logger
	log      zerolog.Logger
	baseURL  string
	now      func() time.Time
}

func NewService(
	links repository.LinkRepository,
	policies repository.PolicyStore,
	paths repository.PathResolver,
	enum *Enumerator,
	metadataCache *cache.MetadataCache,
	auditLogger *audit.Logger,
	log zerolog.Logger,
	baseURL string,
) *Service {
	return &Service{
		links:    links,
		policies: policies,
		paths:    paths,
		enum:     enum,
		cache:    metadataCache,
		audit:    auditLogger,
		log:      log,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// CreateLink creates a shared link on path. With nil settings the link
// belongs to the legacy path-keyed family and creation is idempotent per
// path; with settings it belongs to the URL-keyed family and a live link
// by the same owner on the same path is a conflict.
func (s *Service) CreateLink(ctx context.Context, caller Caller, rawPath string, settings *link.Settings) (*Metadata, error) {
	if err := requireVerified(caller); err != nil {
		return nil, err
	}

	path, err := link.NormalizePath(rawPath)
	if err != nil {
		return nil, err
	}
	entry, err := s.paths.Stat(ctx, caller.TeamID, path)
	if err != nil {
		return nil, err
	}

	teamPolicy, folderPolicy, err := s.loadPolicies(ctx, caller.TeamID, path)
	if err != nil {
		return nil, err
	}

	requested := link.RequestedPublic
	if settings != nil && settings.RequestedVisibility != nil {
		requested = *settings.RequestedVisibility
	}
	if err := ValidateRequested(requested, teamPolicy, folderPolicy); err != nil {
		return nil, err
	}

	passwordHash := ""
	if settings != nil && settings.LinkPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*settings.LinkPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.InternalServer(errFailedHashPassword, err)
		}
		passwordHash = string(hash)
	}
	if requested == link.RequestedPassword && passwordHash == "" {
		return nil, apperrors.Settings(errPasswordNotProvided)
	}

	family := link.FamilyLegacy
	if settings != nil {
		family = link.FamilySettings
	}

	rec, err := s.newRecord(caller, path, family, requested, passwordHash, settings)
	if err != nil {
		return nil, err
	}

	out, created, err := s.links.Create(ctx, rec)
	if err != nil {
		s.recordAudit(caller, audit.ResourceTypeSharedLink, rec.ID, audit.ActionCreate, audit.StatusFailure, nil)
		return nil, err
	}
	if created {
		s.log.Debug().Str("link_id", out.ID).Str("path", out.OwningPath).Msg("shared link created")
		s.recordAudit(caller, audit.ResourceTypeSharedLink, out.ID, audit.ActionCreate, audit.StatusSuccess,
			map[string]any{"path": out.OwningPath, "family": string(out.Family)})
	}

	md := s.buildMetadata(caller, out, entry.IsDir, teamPolicy, folderPolicy)
	md.AlreadyExisted = !created
	return md, nil
}

// GetLinkMetadata resolves a link URL to its metadata, enforcing the
// resolved visibility: link passwords, team restriction, folder
// restriction, and expiry. An optional sub-path addresses an entry
// inside a folder link.
func (s *Service) GetLinkMetadata(ctx context.Context, caller Caller, url string, subPath, password *string) (*Metadata, error) {
	if url == "" {
		return nil, apperrors.BadRequest(errMalformedURL)
	}

	rec, err := s.lookup(ctx, url)
	if err != nil {
		return nil, err
	}
	if rec.Expired(s.now()) {
		return nil, apperrors.Expired(errLinkExpired)
	}

	teamPolicy, folderPolicy, err := s.loadPolicies(ctx, rec.TeamID, rec.OwningPath)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeAccess(caller, rec, teamPolicy, folderPolicy, password); err != nil {
		return nil, err
	}

	entry, err := s.paths.Stat(ctx, rec.TeamID, rec.OwningPath)
	if err != nil {
		return nil, err
	}

	md := s.buildMetadata(caller, rec, entry.IsDir, teamPolicy, folderPolicy)

	if subPath != nil && *subPath != "" {
		if !entry.IsDir {
			return nil, apperrors.UnsupportedType(errSubPathOnFile)
		}
		sub, err := link.NormalizePath(*subPath)
		if err != nil {
			return nil, err
		}
		target := rec.OwningPath + sub
		if rec.OwningPath == "/" {
			target = sub
		}
		subEntry, err := s.paths.Stat(ctx, rec.TeamID, target)
		if err != nil {
			return nil, err
		}
		md.Path = subEntry.Path
		md.IsDir = subEntry.IsDir
	}

	return md, nil
}

// ListLinks enumerates links for the caller: all links they own (cursor
// paginated) or, when a path is given, the links covering that path.
func (s *Service) ListLinks(ctx context.Context, caller Caller, req ListRequest) ([]*Metadata, bool, *string, error) {
	if !caller.Authenticated {
		return nil, false, nil, apperrors.Unauthorized(errLoginRequired)
	}

	result, err := s.enum.List(ctx, caller, req)
	if err != nil {
		return nil, false, nil, err
	}

	teamPolicy, err := s.policies.TeamPolicy(ctx, caller.TeamID)
	if err != nil {
		return nil, false, nil, err
	}

	out := make([]*Metadata, 0, len(result.Records))
	for _, rec := range result.Records {
		folderPolicy, err := s.policies.FolderPolicy(ctx, rec.TeamID, rec.OwningPath)
		if err != nil {
			return nil, false, nil, err
		}
		isDir := false
		if entry, err := s.paths.Stat(ctx, rec.TeamID, rec.OwningPath); err == nil {
			isDir = entry.IsDir
		}
		out = append(out, s.buildMetadata(caller, rec, isDir, teamPolicy, folderPolicy))
	}

	return out, result.HasMore, result.NextCursor, nil
}

// ModifySettings updates the owner-settable fields of a settings-family
// link. Legacy links carry no mutable settings.
func (s *Service) ModifySettings(ctx context.Context, caller Caller, url string, settings link.Settings, removeExpiration bool) (*Metadata, error) {
	if err := requireVerified(caller); err != nil {
		return nil, err
	}
	if url == "" {
		return nil, apperrors.BadRequest(errMalformedURL)
	}

	rec, err := s.links.GetByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if rec.Family == link.FamilyLegacy {
		return nil, apperrors.UnsupportedType(errLegacyNoSettings)
	}

	teamPolicy, folderPolicy, err := s.loadPolicies(ctx, rec.TeamID, rec.OwningPath)
	if err != nil {
		return nil, err
	}

	in := resolveInput(rec, teamPolicy, folderPolicy)
	access := Resolve(in, caller, rec.OwnerID, rec.TeamID)
	if !access.CanRevoke {
		return nil, denialError(access.RevokeDenialReason)
	}

	if settings.RequestedVisibility != nil {
		if err := ValidateRequested(*settings.RequestedVisibility, teamPolicy, folderPolicy); err != nil {
			return nil, err
		}
		rec.Requested = *settings.RequestedVisibility
	}
	if settings.LinkPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*settings.LinkPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.InternalServer(errFailedHashPassword, err)
		}
		rec.PasswordHash = string(hash)
	}
	if rec.Requested == link.RequestedPassword && rec.PasswordHash == "" {
		return nil, apperrors.Settings(errPasswordNotProvided)
	}
	if rec.Requested != link.RequestedPassword {
		rec.PasswordHash = ""
	}
	if removeExpiration {
		rec.ExpiresAt = nil
	} else if settings.ExpiresAt != nil {
		t := settings.ExpiresAt.UTC()
		rec.ExpiresAt = &t
	}

	out, err := s.links.UpdateSettings(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(url)
	s.recordAudit(caller, audit.ResourceTypeSharedLink, out.ID, audit.ActionModify, audit.StatusSuccess,
		map[string]any{"path": out.OwningPath})

	isDir := false
	if entry, err := s.paths.Stat(ctx, out.TeamID, out.OwningPath); err == nil {
		isDir = entry.IsDir
	}
	return s.buildMetadata(caller, out, isDir, teamPolicy, folderPolicy), nil
}

// RevokeLink destroys a shared link. Only the owner or a member with an
// administrative override may revoke.
func (s *Service) RevokeLink(ctx context.Context, caller Caller, url string) error {
	if url == "" {
		return apperrors.BadRequest(errMalformedURL)
	}

	rec, err := s.links.GetByURL(ctx, url)
	if err != nil {
		return err
	}

	teamPolicy, folderPolicy, err := s.loadPolicies(ctx, rec.TeamID, rec.OwningPath)
	if err != nil {
		return err
	}

	access := Resolve(resolveInput(rec, teamPolicy, folderPolicy), caller, rec.OwnerID, rec.TeamID)
	if !access.CanRevoke {
		s.recordAudit(caller, audit.ResourceTypeSharedLink, rec.ID, audit.ActionRevoke, audit.StatusDenied, nil)
		return denialError(access.RevokeDenialReason)
	}

	if err := s.links.Delete(ctx, url); err != nil {
		return err
	}
	s.cache.Invalidate(url)
	s.recordAudit(caller, audit.ResourceTypeSharedLink, rec.ID, audit.ActionRevoke, audit.StatusSuccess,
		map[string]any{"path": rec.OwningPath})
	return nil
}

func (s *Service) lookup(ctx context.Context, url string) (*link.Record, error) {
	if rec, ok := s.cache.Get(url); ok {
		return rec, nil
	}
	rec, err := s.links.GetByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	s.cache.Set(url, rec)
	return rec, nil
}

// authorizeAccess enforces the resolved visibility against the caller.
// Owners and team admins always see their own links.
func (s *Service) authorizeAccess(caller Caller, rec *link.Record, teamPolicy, folderPolicy *policy.Policy, password *string) error {
	if caller.Authenticated && caller.TeamID == rec.TeamID && (caller.MemberID == rec.OwnerID || caller.Admin) {
		return nil
	}

	resolved := ResolveVisibility(resolveInput(rec, teamPolicy, folderPolicy))

	switch resolved {
	case policy.TeamOnly, policy.TeamAndPassword:
		if !caller.Authenticated {
			return apperrors.Unauthorized(errLoginRequired)
		}
		if caller.TeamID != rec.TeamID {
			return apperrors.Forbidden(errTeamOnlyLink)
		}
	case policy.SharedFolderOnly:
		if !caller.Authenticated {
			return apperrors.Unauthorized(errLoginRequired)
		}
		if caller.TeamID != rec.TeamID {
			return apperrors.Forbidden(errFolderMembersOnly)
		}
	}

	// A policy-forced password counts even when the resolved visibility
	// collapsed to shared_folder_only, which has no combined enum value.
	forcesPassword := (teamPolicy != nil && teamPolicy.ForcesPassword) ||
		(folderPolicy != nil && folderPolicy.ForcesPassword)
	passwordRequired := rec.HasPassword() || forcesPassword ||
		resolved == policy.Password || resolved == policy.TeamAndPassword
	if passwordRequired {
		if !rec.HasPassword() {
			// A mandated password the link never got cannot be checked;
			// nothing satisfies the challenge.
			return apperrors.Forbidden(errPasswordRequired)
		}
		if password == nil {
			return apperrors.Forbidden(errPasswordRequired)
		}
		if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(*password)) != nil {
			return apperrors.Forbidden(errPasswordMismatch)
		}
	}

	return nil
}

func (s *Service) loadPolicies(ctx context.Context, teamID uuid.UUID, path string) (*policy.Policy, *policy.Policy, error) {
	teamPolicy, err := s.policies.TeamPolicy(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	folderPolicy, err := s.policies.FolderPolicy(ctx, teamID, path)
	if err != nil {
		return nil, nil, err
	}
	return teamPolicy, folderPolicy, nil
}

func (s *Service) newRecord(caller Caller, path string, family link.Family, requested link.RequestedVisibility, passwordHash string, settings *link.Settings) (*link.Record, error) {
	id, err := token.GenerateLinkID()
	if err != nil {
		return nil, apperrors.InternalServer(errFailedGenerateLinkID, err)
	}
	urlToken, err := token.GenerateLinkToken()
	if err != nil {
		return nil, apperrors.InternalServer(errFailedGenerateLinkID, err)
	}

	rec := &link.Record{
		ID:           id,
		URL:          s.baseURL + "/s/" + urlToken,
		Family:       family,
		OwningPath:   path,
		OwnerID:      caller.MemberID,
		TeamID:       caller.TeamID,
		Requested:    requested,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	if settings != nil && settings.ExpiresAt != nil {
		t := settings.ExpiresAt.UTC()
		rec.ExpiresAt = &t
	}
	return rec, nil
}

func (s *Service) buildMetadata(caller Caller, rec *link.Record, isDir bool, teamPolicy, folderPolicy *policy.Policy) *Metadata {
	in := resolveInput(rec, teamPolicy, folderPolicy)
	forcesPassword := (teamPolicy != nil && teamPolicy.ForcesPassword) ||
		(folderPolicy != nil && folderPolicy.ForcesPassword)

	return &Metadata{
		ID:                rec.ID,
		URL:               rec.URL,
		Path:              rec.OwningPath,
		IsDir:             isDir,
		OwnerID:           rec.OwnerID.String(),
		Family:            rec.Family,
		Requested:         rec.Requested,
		Resolved:          Resolve(in, caller, rec.OwnerID, rec.TeamID),
		PasswordProtected: rec.HasPassword() || forcesPassword,
		ExpiresAt:         rec.ExpiresAt,
		CreatedAt:         rec.CreatedAt,
	}
}

func (s *Service) recordAudit(caller Caller, resource audit.ResourceType, resourceID string, action audit.Action, status audit.Status, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	event := &audit.Event{
		ResourceType: resource,
		ResourceID:   resourceID,
		Action:       action,
		Status:       status,
		Metadata:     metadata,
	}
	if caller.Authenticated {
		actorID := caller.MemberID
		teamID := caller.TeamID
		event.ActorID = &actorID
		event.TeamID = &teamID
	}
	s.audit.Record(event)
}

func resolveInput(rec *link.Record, teamPolicy, folderPolicy *policy.Policy) ResolveInput {
	return ResolveInput{
		Requested:    rec.Requested,
		TeamPolicy:   teamPolicy,
		FolderPolicy: folderPolicy,
		HasPassword:  rec.HasPassword(),
	}
}

func requireVerified(caller Caller) error {
	if !caller.Authenticated {
		return apperrors.Unauthorized(errLoginRequired)
	}
	if !caller.EmailVerified {
		return apperrors.EmailNotVerified()
	}
	return nil
}

func denialError(reason policy.DenialReason) error {
	switch reason {
	case policy.DenialLoginRequired:
		return apperrors.Unauthorized(errLoginRequired)
	case policy.DenialTeamOnly:
		return apperrors.Forbidden(errTeamOnlyLink)
	default:
		return apperrors.Forbidden(errOwnerOnly)
	}
}
