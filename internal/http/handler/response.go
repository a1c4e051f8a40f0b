package handler

import (
	"time"

	"sharelink-service/internal/quota"
	"sharelink-service/internal/sharing"

	"github.com/labstack/echo/v4"
)

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyMessage: message})
}

// SharedLinkMetadataResponse is the wire shape of a resolved shared link.
type SharedLinkMetadataResponse struct {
	ID                  string  `json:"id"`
	URL                 string  `json:"url"`
	Path                string  `json:"path"`
	IsDir               bool    `json:"is_dir"`
	OwnerID             string  `json:"owner_id"`
	Family              string  `json:"family"`
	RequestedVisibility string  `json:"requested_visibility"`
	ResolvedVisibility  string  `json:"resolved_visibility"`
	CanRevoke           bool    `json:"can_revoke"`
	RevokeFailureReason string  `json:"revoke_failure_reason,omitempty"`
	PasswordProtected   bool    `json:"password_protected"`
	ExpiresAt           *string `json:"expires_at,omitempty"`
	CreatedAt           string  `json:"created_at"`
	AlreadyExisted      bool    `json:"already_existed,omitempty"`
}

func metadataResponse(md *sharing.Metadata) SharedLinkMetadataResponse {
	resp := SharedLinkMetadataResponse{
		ID:                  md.ID,
		URL:                 md.URL,
		Path:                md.Path,
		IsDir:               md.IsDir,
		OwnerID:             md.OwnerID,
		Family:              string(md.Family),
		RequestedVisibility: string(md.Requested),
		ResolvedVisibility:  string(md.Resolved.Visibility),
		CanRevoke:           md.Resolved.CanRevoke,
		RevokeFailureReason: string(md.Resolved.RevokeDenialReason),
		PasswordProtected:   md.PasswordProtected,
		CreatedAt:           md.CreatedAt.UTC().Format(time.RFC3339),
		AlreadyExisted:      md.AlreadyExisted,
	}
	if md.ExpiresAt != nil {
		expires := md.ExpiresAt.UTC().Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}
	return resp
}

// QuotaResultResponse is the per-member outcome of a batch quota call.
type QuotaResultResponse struct {
	MemberID string  `json:"member_id"`
	Status   string  `json:"status"`
	QuotaGB  *uint32 `json:"quota_gb,omitempty"`
}

func quotaResultsResponse(results []quota.Result) []QuotaResultResponse {
	out := make([]QuotaResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, QuotaResultResponse{
			MemberID: r.MemberID.String(),
			Status:   string(r.Status),
			QuotaGB:  r.QuotaGB,
		})
	}
	return out
}
