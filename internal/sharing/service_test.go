package sharing

import (
	"context"
	"errors"
	"testing"
	"time"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"
	"sharelink-service/internal/infra/cache"
	"sharelink-service/internal/repository/memory"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceEnv struct {
	svc       *Service
	links     *memory.LinkStore
	policies  *memory.PolicyStore
	namespace *memory.Namespace
	team      uuid.UUID
	owner     Caller
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	links := memory.NewLinkStore()
	policies := memory.NewPolicyStore()
	namespace := memory.NewNamespace()
	enum := NewEnumerator(links, namespace, 10)
	svc := NewService(
		links, policies, namespace, enum,
		cache.NewMetadataCache(time.Minute), nil, zerolog.Nop(),
		"https://links.test",
	)

	team := uuid.New()
	namespace.AddEntry(team, "/docs/report.pdf", false)
	namespace.AddEntry(team, "/photos/2025/summer.jpg", false)

	return &serviceEnv{
		svc:       svc,
		links:     links,
		policies:  policies,
		namespace: namespace,
		team:      team,
		owner: Caller{
			MemberID:      uuid.New(),
			TeamID:        team,
			EmailVerified: true,
			Authenticated: true,
		},
	}
}

func (e *serviceEnv) teammate() Caller {
	return Caller{
		MemberID:      uuid.New(),
		TeamID:        e.team,
		EmailVerified: true,
		Authenticated: true,
	}
}

func strptr(s string) *string { return &s }

func TestCreateLinkLegacyIdempotent(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)
	assert.False(t, first.AlreadyExisted)
	assert.Equal(t, link.FamilyLegacy, first.Family)
	assert.Equal(t, "/docs/report.pdf", first.Path)

	second, err := env.svc.CreateLink(ctx, env.owner, "/Docs/Report.PDF", nil)
	require.NoError(t, err)
	assert.True(t, second.AlreadyExisted)
	assert.Equal(t, first.URL, second.URL)
}

func TestCreateLinkSettingsConflict(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{})
	require.NoError(t, err)

	_, err = env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestCreateLinkRequiresVerifiedEmail(t *testing.T) {
	env := newServiceEnv(t)

	unverified := env.owner
	unverified.EmailVerified = false

	_, err := env.svc.CreateLink(context.Background(), unverified, "/docs/report.pdf", nil)
	assert.True(t, errors.Is(err, apperrors.ErrEmailNotVerified))

	_, err = env.svc.CreateLink(context.Background(), Caller{}, "/docs/report.pdf", nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestCreateLinkPathMissing(t *testing.T) {
	env := newServiceEnv(t)

	_, err := env.svc.CreateLink(context.Background(), env.owner, "/docs/missing.pdf", nil)
	assert.True(t, errors.Is(err, apperrors.ErrPathNotFound))
}

func TestCreateLinkPasswordVisibilityNeedsPassword(t *testing.T) {
	env := newServiceEnv(t)

	requested := link.RequestedPassword
	_, err := env.svc.CreateLink(context.Background(), env.owner, "/docs/report.pdf", &link.Settings{
		RequestedVisibility: &requested,
	})
	assert.True(t, errors.Is(err, apperrors.ErrSettings))
}

func TestCreateLinkDisallowedByTeamPolicy(t *testing.T) {
	env := newServiceEnv(t)
	env.policies.SetTeamPolicy(env.team, &policy.Policy{
		AllowedVisibilities: []link.RequestedVisibility{link.RequestedTeamOnly},
	})

	_, err := env.svc.CreateLink(context.Background(), env.owner, "/docs/report.pdf", nil)
	assert.True(t, errors.Is(err, apperrors.ErrSettings))
}

func TestGetLinkMetadataPublicAnonymous(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)

	md, err := env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, policy.Public, md.Resolved.Visibility)
	assert.False(t, md.Resolved.CanRevoke)
	assert.Equal(t, policy.DenialLoginRequired, md.Resolved.RevokeDenialReason)
}

func TestGetLinkMetadataPasswordEnforced(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	requested := link.RequestedPassword
	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{
		RequestedVisibility: &requested,
		LinkPassword:        strptr("hunter2"),
	})
	require.NoError(t, err)
	assert.True(t, created.PasswordProtected)

	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, strptr("wrong"))
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	md, err := env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, strptr("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, policy.Password, md.Resolved.Visibility)

	// The owner is never challenged for their own link.
	_, err = env.svc.GetLinkMetadata(ctx, env.owner, created.URL, nil, nil)
	assert.NoError(t, err)
}

func TestGetLinkMetadataForcedPasswordWithoutHash(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	env.policies.SetTeamPolicy(env.team, &policy.Policy{ForcesPassword: true})

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, policy.Password, created.Resolved.Visibility)
	assert.True(t, created.PasswordProtected)

	// The link carries no hash, so the mandated password can never be
	// satisfied. Access is refused, not silently opened.
	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = env.svc.GetLinkMetadata(ctx, env.teammate(), created.URL, nil, strptr("anything"))
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	// The owner still sees their own link.
	md, err := env.svc.GetLinkMetadata(ctx, env.owner, created.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, created.URL, md.URL)
}

func TestGetLinkMetadataForcedPasswordWithHash(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	env.policies.SetTeamPolicy(env.team, &policy.Policy{ForcesPassword: true})

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{
		LinkPassword: strptr("hunter2"),
	})
	require.NoError(t, err)

	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	md, err := env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, strptr("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, policy.Password, md.Resolved.Visibility)
}

func TestGetLinkMetadataFolderMembersOnlyForcedPassword(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	// shared_folder_only dominates the resolved enum, but the folder's
	// password mandate still applies through the policy flags.
	env.policies.SetFolderPolicy(env.team, "/photos", &policy.Policy{
		MembersOnly:    true,
		ForcesPassword: true,
	})

	created, err := env.svc.CreateLink(ctx, env.owner, "/photos/2025/summer.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, policy.SharedFolderOnly, created.Resolved.Visibility)
	assert.True(t, created.PasswordProtected)

	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = env.svc.GetLinkMetadata(ctx, env.teammate(), created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestGetLinkMetadataTeamOnly(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	requested := link.RequestedTeamOnly
	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{
		RequestedVisibility: &requested,
	})
	require.NoError(t, err)

	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	outsider := Caller{MemberID: uuid.New(), TeamID: uuid.New(), Authenticated: true}
	_, err = env.svc.GetLinkMetadata(ctx, outsider, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = env.svc.GetLinkMetadata(ctx, env.teammate(), created.URL, nil, nil)
	assert.NoError(t, err)
}

func TestGetLinkMetadataExpired(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{
		ExpiresAt: &past,
	})
	require.NoError(t, err)

	_, err = env.svc.GetLinkMetadata(ctx, env.owner, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrExpired))
}

func TestGetLinkMetadataSubPath(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	folderLink, err := env.svc.CreateLink(ctx, env.owner, "/photos", nil)
	require.NoError(t, err)
	require.True(t, folderLink.IsDir)

	md, err := env.svc.GetLinkMetadata(ctx, env.owner, folderLink.URL, strptr("/2025/summer.jpg"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/photos/2025/summer.jpg", md.Path)
	assert.False(t, md.IsDir)

	// Sub-paths only make sense under folder links.
	fileLink, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)

	_, err = env.svc.GetLinkMetadata(ctx, env.owner, fileLink.URL, strptr("/anything"), nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedType))
}

func TestGetLinkMetadataUnknownURL(t *testing.T) {
	env := newServiceEnv(t)

	_, err := env.svc.GetLinkMetadata(context.Background(), env.owner, "https://links.test/s/nope", nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListLinksRequiresAuth(t *testing.T) {
	env := newServiceEnv(t)

	_, _, _, err := env.svc.ListLinks(context.Background(), Caller{}, ListRequest{})
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestModifySettingsLegacyUnsupported(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)

	_, err = env.svc.ModifySettings(ctx, env.owner, created.URL, link.Settings{}, false)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedType))
}

func TestModifySettingsOwnerOnly(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{})
	require.NoError(t, err)

	requested := link.RequestedTeamOnly
	_, err = env.svc.ModifySettings(ctx, env.teammate(), created.URL, link.Settings{
		RequestedVisibility: &requested,
	}, false)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestModifySettingsClearsPasswordOnVisibilityChange(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	requested := link.RequestedPassword
	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{
		RequestedVisibility: &requested,
		LinkPassword:        strptr("hunter2"),
	})
	require.NoError(t, err)

	public := link.RequestedPublic
	md, err := env.svc.ModifySettings(ctx, env.owner, created.URL, link.Settings{
		RequestedVisibility: &public,
	}, false)
	require.NoError(t, err)
	assert.False(t, md.PasswordProtected)

	// And the password is really gone: anonymous access succeeds.
	_, err = env.svc.GetLinkMetadata(ctx, Caller{}, created.URL, nil, nil)
	assert.NoError(t, err)
}

func TestModifySettingsRemoveExpiration(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", &link.Settings{
		ExpiresAt: &future,
	})
	require.NoError(t, err)
	require.NotNil(t, created.ExpiresAt)

	md, err := env.svc.ModifySettings(ctx, env.owner, created.URL, link.Settings{}, true)
	require.NoError(t, err)
	assert.Nil(t, md.ExpiresAt)
}

func TestRevokeLink(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)

	// A non-owner teammate cannot revoke.
	err = env.svc.RevokeLink(ctx, env.teammate(), created.URL)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, env.svc.RevokeLink(ctx, env.owner, created.URL))

	_, err = env.svc.GetLinkMetadata(ctx, env.owner, created.URL, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = env.svc.RevokeLink(ctx, env.owner, created.URL)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRevokeLinkAdminOverride(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateLink(ctx, env.owner, "/docs/report.pdf", nil)
	require.NoError(t, err)

	admin := env.teammate()
	admin.Admin = true
	assert.NoError(t, env.svc.RevokeLink(ctx, admin, created.URL))
}
