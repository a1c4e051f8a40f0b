package sharing

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	apperrors "sharelink-service/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestCursorRoundTrip(t *testing.T) {
	issued := cursorPayload{
		CreatedAtUnixNano: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano(),
		LinkID:            "lnk_01hxyz",
		Generation:        7,
	}

	decoded, err := decodeCursor(encodeCursor(issued))
	assert.NoError(t, err)
	assert.Equal(t, issued, decoded)

	after := decoded.ownerCursor()
	assert.Equal(t, issued.LinkID, after.LinkID)
	assert.Equal(t, time.Unix(0, issued.CreatedAtUnixNano).UTC(), after.CreatedAt)
}

func TestDecodeCursorMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not base64", "%%%%"},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{"missing link id", base64.RawURLEncoding.EncodeToString([]byte(`{"c":1,"g":1}`))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCursor(tt.in)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrCursorReset))
		})
	}
}
