package handler

import (
	"net/http"

	"sharelink-service/internal/auth"
	"sharelink-service/internal/quota"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// QuotaHandler serves the member-space-limit RPC endpoints. All three are
// admin-only batch calls with independent per-member outcomes.
type QuotaHandler struct {
	quotaService *quota.Service
}

func NewQuotaHandler(quotaService *quota.Service) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService}
}

type QuotaEntryRequest struct {
	MemberID string `json:"member_id"`
	QuotaGB  uint32 `json:"quota_gb"`
}

type SetCustomQuotaRequest struct {
	UsersAndQuotas []QuotaEntryRequest `json:"users_and_quotas"`
}

type MembersRequest struct {
	Members []string `json:"members"`
}

type QuotaBatchResponse struct {
	Results []QuotaResultResponse `json:"results"`
}

func (h *QuotaHandler) SetCustomQuota(c echo.Context) error {
	caller := auth.GetCaller(c)
	if !caller.Admin {
		return respondError(c, http.StatusForbidden, msgAdminRequired)
	}

	var req SetCustomQuotaRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if len(req.UsersAndQuotas) == 0 {
		return respondError(c, http.StatusBadRequest, msgEntriesRequired)
	}

	entries := make([]quota.Entry, 0, len(req.UsersAndQuotas))
	for _, entry := range req.UsersAndQuotas {
		memberID, err := uuid.Parse(entry.MemberID)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidMemberID)
		}
		entries = append(entries, quota.Entry{MemberID: memberID, QuotaGB: entry.QuotaGB})
	}

	results, err := h.quotaService.Set(c.Request().Context(), caller.TeamID, entries)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuotaBatchResponse{Results: quotaResultsResponse(results)})
}

func (h *QuotaHandler) RemoveCustomQuota(c echo.Context) error {
	caller := auth.GetCaller(c)
	if !caller.Admin {
		return respondError(c, http.StatusForbidden, msgAdminRequired)
	}

	memberIDs, errMsg := parseMembers(c)
	if errMsg != "" {
		return respondError(c, http.StatusBadRequest, errMsg)
	}

	results, err := h.quotaService.Remove(c.Request().Context(), caller.TeamID, memberIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuotaBatchResponse{Results: quotaResultsResponse(results)})
}

func (h *QuotaHandler) GetCustomQuota(c echo.Context) error {
	caller := auth.GetCaller(c)
	if !caller.Admin {
		return respondError(c, http.StatusForbidden, msgAdminRequired)
	}

	memberIDs, errMsg := parseMembers(c)
	if errMsg != "" {
		return respondError(c, http.StatusBadRequest, errMsg)
	}

	results, err := h.quotaService.Get(c.Request().Context(), caller.TeamID, memberIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuotaBatchResponse{Results: quotaResultsResponse(results)})
}

func parseMembers(c echo.Context) ([]uuid.UUID, string) {
	var req MembersRequest
	if err := c.Bind(&req); err != nil {
		return nil, msgInvalidRequestBody
	}
	if len(req.Members) == 0 {
		return nil, msgMembersRequired
	}

	memberIDs := make([]uuid.UUID, 0, len(req.Members))
	for _, raw := range req.Members {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			return nil, msgInvalidMemberID
		}
		memberIDs = append(memberIDs, memberID)
	}
	return memberIDs, ""
}
