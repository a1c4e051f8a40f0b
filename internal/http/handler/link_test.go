package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sharelink-service/internal/auth"
	"sharelink-service/internal/infra/cache"
	"sharelink-service/internal/repository/memory"
	"sharelink-service/internal/sharing"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerEnv struct {
	handler *LinkHandler
	echo    *echo.Echo
	team    uuid.UUID
	owner   sharing.Caller
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	links := memory.NewLinkStore()
	policies := memory.NewPolicyStore()
	namespace := memory.NewNamespace()
	enum := sharing.NewEnumerator(links, namespace, 10)
	svc := sharing.NewService(
		links, policies, namespace, enum,
		cache.NewMetadataCache(time.Minute), nil, zerolog.Nop(),
		"https://links.test",
	)

	team := uuid.New()
	namespace.AddEntry(team, "/docs/report.pdf", false)

	return &handlerEnv{
		handler: NewLinkHandler(svc),
		echo:    echo.New(),
		team:    team,
		owner: sharing.Caller{
			MemberID:      uuid.New(),
			TeamID:        team,
			EmailVerified: true,
			Authenticated: true,
		},
	}
}

func (e *handlerEnv) request(t *testing.T, body string, caller *sharing.Caller) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.echo.NewContext(req, rec)
	if caller != nil {
		c.Set(auth.ContextKeyCaller, *caller)
	}
	return c, rec
}

func TestCreateSharedLinkWithSettingsHandler(t *testing.T) {
	env := newHandlerEnv(t)

	c, rec := env.request(t, `{"path": "/docs/report.pdf"}`, &env.owner)
	require.NoError(t, env.handler.CreateSharedLinkWithSettings(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp SharedLinkMetadataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/docs/report.pdf", resp.Path)
	assert.Equal(t, "legacy", resp.Family)
	assert.Equal(t, "public", resp.ResolvedVisibility)
	assert.True(t, resp.CanRevoke)
	assert.True(t, strings.HasPrefix(resp.URL, "https://links.test/s/"))

	// Idempotent re-create reports the existing link with 200.
	c, rec = env.request(t, `{"path": "/docs/report.pdf"}`, &env.owner)
	require.NoError(t, env.handler.CreateSharedLinkWithSettings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyExisted)
}

func TestCreateSharedLinkValidation(t *testing.T) {
	env := newHandlerEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing path", `{}`},
		{"bad visibility", `{"path": "/docs/report.pdf", "settings": {"requested_visibility": "friends_only"}}`},
		{"bad expires_at", `{"path": "/docs/report.pdf", "settings": {"expires_at": "tomorrow"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := env.request(t, tt.body, &env.owner)
			require.NoError(t, env.handler.CreateSharedLinkWithSettings(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateSharedLinkMalformedPathError(t *testing.T) {
	env := newHandlerEnv(t)

	c, _ := env.request(t, `{"path": "docs/report.pdf"}`, &env.owner)
	err := env.handler.CreateSharedLinkWithSettings(c)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedPath))
}

func TestGetSharedLinkMetadataHandler(t *testing.T) {
	env := newHandlerEnv(t)

	c, rec := env.request(t, `{"path": "/docs/report.pdf"}`, &env.owner)
	require.NoError(t, env.handler.CreateSharedLinkWithSettings(c))

	var created SharedLinkMetadataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Anonymous lookup of a public link succeeds.
	c, rec = env.request(t, `{"url": "`+created.URL+`"}`, nil)
	require.NoError(t, env.handler.GetSharedLinkMetadata(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SharedLinkMetadataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.CanRevoke)
	assert.Equal(t, "login_required", resp.RevokeFailureReason)
}

func TestGetSharedLinkMetadataRequiresURL(t *testing.T) {
	env := newHandlerEnv(t)

	c, rec := env.request(t, `{}`, nil)
	require.NoError(t, env.handler.GetSharedLinkMetadata(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSharedLinksHandlerRejectsPathWithCursor(t *testing.T) {
	env := newHandlerEnv(t)

	c, rec := env.request(t, `{"path": "/docs", "cursor": "abc"}`, &env.owner)
	require.NoError(t, env.handler.ListSharedLinks(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSharedLinksHandler(t *testing.T) {
	env := newHandlerEnv(t)

	c, _ := env.request(t, `{"path": "/docs/report.pdf"}`, &env.owner)
	require.NoError(t, env.handler.CreateSharedLinkWithSettings(c))

	c, rec := env.request(t, `{}`, &env.owner)
	require.NoError(t, env.handler.ListSharedLinks(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListSharedLinksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Links, 1)
	assert.False(t, resp.HasMore)
	assert.Nil(t, resp.Cursor)
}

func TestRevokeSharedLinkHandler(t *testing.T) {
	env := newHandlerEnv(t)

	c, rec := env.request(t, `{"path": "/docs/report.pdf"}`, &env.owner)
	require.NoError(t, env.handler.CreateSharedLinkWithSettings(c))

	var created SharedLinkMetadataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	outsider := sharing.Caller{
		MemberID:      uuid.New(),
		TeamID:        uuid.New(),
		EmailVerified: true,
		Authenticated: true,
	}
	c, _ = env.request(t, `{"url": "`+created.URL+`"}`, &outsider)
	err := env.handler.RevokeSharedLink(c)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	c, rec = env.request(t, `{"url": "`+created.URL+`"}`, &env.owner)
	require.NoError(t, env.handler.RevokeSharedLink(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = env.request(t, `{"url": "`+created.URL+`"}`, &env.owner)
	err = env.handler.RevokeSharedLink(c)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
