package sharing

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"
)

const errCursorMalformed = "cursor is malformed; request a fresh listing"

// cursorPayload is the serialized snapshot position of an owner-scoped
// listing: the last-seen sort key plus the repository generation at the
// time the cursor was issued. Callers treat the encoded form as opaque.
type cursorPayload struct {
	CreatedAtUnixNano int64  `json:"c"`
	LinkID            string `json:"l"`
	Generation        uint64 `json:"g"`
}

func encodeCursor(p cursorPayload) string {
	raw, _ := json.Marshal(p)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (cursorPayload, error) {
	var p cursorPayload
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return p, apperrors.CursorReset(errCursorMalformed)
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.LinkID == "" {
		return p, apperrors.CursorReset(errCursorMalformed)
	}
	return p, nil
}

func (p cursorPayload) ownerCursor() *repository.OwnerCursor {
	return &repository.OwnerCursor{
		CreatedAt: time.Unix(0, p.CreatedAtUnixNano).UTC(),
		LinkID:    p.LinkID,
	}
}
