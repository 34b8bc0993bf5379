// Package service holds the application logic between HTTP handlers and
// repositories.
package service

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"riptide/internal/models"
	"riptide/internal/repository"
)

// EncodeCursor packs a feed position into an opaque token. The token is
// base64url over "unixMicros:postID"; clients must treat it as a black box
// and hand it back unmodified.
func EncodeCursor(createdAt time.Time, id uint) string {
	raw := fmt.Sprintf("%d:%d", createdAt.UnixMicro(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. Any malformed token, including a
// tampered one, comes back as a validation error rather than a panic or a
// silent reset to the first page.
func DecodeCursor(token string) (*repository.FeedCursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, models.NewValidationError("invalid cursor")
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return nil, models.NewValidationError("invalid cursor")
	}

	return &repository.FeedCursor{
		CreatedAt: time.UnixMicro(micros).UTC(),
		ID:        uint(id),
	}, nil
}
