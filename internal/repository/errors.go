package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"riptide/internal/models"
)

// storeError classifies a failed storage call. Connection-level failures
// surface as StorageUnavailable so the HTTP edge answers 503 and callers
// know the data layer, not the request, is at fault. Everything else is an
// internal error.
func storeError(err error) *models.AppError {
	if isStorageUnavailable(err) {
		return models.NewStorageUnavailableError(err)
	}
	return models.NewInternalError(err)
}

func isStorageUnavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// database/sql reports a closed pool without an exported sentinel.
	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "connection refused")
}
