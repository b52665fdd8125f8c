// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/respawn/internal/logging"
)

// ErrPersistence wraps every failure to write a table. The table's
// transaction has been rolled back when it is returned.
var ErrPersistence = errors.New("persistence failure")

// closeWithLog closes statements and result sets after a load step. A close
// failure is logged at warn level and never fails the table load.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a connection on an Open error path, where the
// initialization error is the one worth returning.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
