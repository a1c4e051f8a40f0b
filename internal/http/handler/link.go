package handler

import (
	"net/http"
	"time"

	"sharelink-service/internal/auth"
	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/sharing"

	"github.com/labstack/echo/v4"
)

// LinkHandler serves the shared-link RPC endpoints. Requests are POST
// bodies; all state selection lives in the body rather than the URL.
type LinkHandler struct {
	sharingService *sharing.Service
}

func NewLinkHandler(sharingService *sharing.Service) *LinkHandler {
	return &LinkHandler{sharingService: sharingService}
}

// LinkSettingsRequest is the wire shape of owner-settable link settings.
type LinkSettingsRequest struct {
	RequestedVisibility *string `json:"requested_visibility"`
	LinkPassword        *string `json:"link_password"`
	ExpiresAt           *string `json:"expires_at"`
}

func (r *LinkSettingsRequest) toSettings() (*link.Settings, string) {
	settings := &link.Settings{LinkPassword: r.LinkPassword}

	if r.RequestedVisibility != nil {
		requested := link.RequestedVisibility(*r.RequestedVisibility)
		if !requested.Valid() {
			return nil, msgInvalidVisibility
		}
		settings.RequestedVisibility = &requested
	}
	if r.ExpiresAt != nil {
		expires, err := time.Parse(time.RFC3339, *r.ExpiresAt)
		if err != nil {
			return nil, msgInvalidExpiresAt
		}
		settings.ExpiresAt = &expires
	}
	return settings, ""
}

type CreateSharedLinkRequest struct {
	Path     string               `json:"path"`
	Settings *LinkSettingsRequest `json:"settings"`
}

func (h *LinkHandler) CreateSharedLinkWithSettings(c echo.Context) error {
	var req CreateSharedLinkRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if req.Path == "" {
		return respondError(c, http.StatusBadRequest, msgPathRequired)
	}

	var settings *link.Settings
	if req.Settings != nil {
		parsed, msg := req.Settings.toSettings()
		if msg != "" {
			return respondError(c, http.StatusBadRequest, msg)
		}
		settings = parsed
	}

	md, err := h.sharingService.CreateLink(c.Request().Context(), auth.GetCaller(c), req.Path, settings)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if md.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, metadataResponse(md))
}

type GetSharedLinkMetadataRequest struct {
	URL          string  `json:"url"`
	Path         *string `json:"path"`
	LinkPassword *string `json:"link_password"`
}

func (h *LinkHandler) GetSharedLinkMetadata(c echo.Context) error {
	var req GetSharedLinkMetadataRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if req.URL == "" {
		return respondError(c, http.StatusBadRequest, msgURLRequired)
	}

	md, err := h.sharingService.GetLinkMetadata(c.Request().Context(), auth.GetCaller(c), req.URL, req.Path, req.LinkPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, metadataResponse(md))
}

type ListSharedLinksRequest struct {
	Path       *string `json:"path"`
	Cursor     *string `json:"cursor"`
	DirectOnly bool    `json:"direct_only"`
}

type ListSharedLinksResponse struct {
	Links   []SharedLinkMetadataResponse `json:"links"`
	HasMore bool                         `json:"has_more"`
	Cursor  *string                      `json:"cursor,omitempty"`
}

func (h *LinkHandler) ListSharedLinks(c echo.Context) error {
	var req ListSharedLinksRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if req.Path != nil && req.Cursor != nil {
		return respondError(c, http.StatusBadRequest, msgPathCursorExclusive)
	}

	records, hasMore, cursor, err := h.sharingService.ListLinks(c.Request().Context(), auth.GetCaller(c), sharing.ListRequest{
		Path:       req.Path,
		Cursor:     req.Cursor,
		DirectOnly: req.DirectOnly,
	})
	if err != nil {
		return err
	}

	links := make([]SharedLinkMetadataResponse, 0, len(records))
	for _, md := range records {
		links = append(links, metadataResponse(md))
	}
	return c.JSON(http.StatusOK, ListSharedLinksResponse{
		Links:   links,
		HasMore: hasMore,
		Cursor:  cursor,
	})
}

type ModifySharedLinkSettingsRequest struct {
	URL              string               `json:"url"`
	Settings         *LinkSettingsRequest `json:"settings"`
	RemoveExpiration bool                 `json:"remove_expiration"`
}

func (h *LinkHandler) ModifySharedLinkSettings(c echo.Context) error {
	var req ModifySharedLinkSettingsRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if req.URL == "" {
		return respondError(c, http.StatusBadRequest, msgURLRequired)
	}
	if req.Settings == nil && !req.RemoveExpiration {
		return respondError(c, http.StatusBadRequest, msgSettingsRequired)
	}

	settings := link.Settings{}
	if req.Settings != nil {
		parsed, msg := req.Settings.toSettings()
		if msg != "" {
			return respondError(c, http.StatusBadRequest, msg)
		}
		settings = *parsed
	}

	md, err := h.sharingService.ModifySettings(c.Request().Context(), auth.GetCaller(c), req.URL, settings, req.RemoveExpiration)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, metadataResponse(md))
}

type RevokeSharedLinkRequest struct {
	URL string `json:"url"`
}

func (h *LinkHandler) RevokeSharedLink(c echo.Context) error {
	var req RevokeSharedLinkRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if req.URL == "" {
		return respondError(c, http.StatusBadRequest, msgURLRequired)
	}

	if err := h.sharingService.RevokeLink(c.Request().Context(), auth.GetCaller(c), req.URL); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msgLinkRevoked)
}
