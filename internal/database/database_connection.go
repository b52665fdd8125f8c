// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package database

import (
	"context"
	"fmt"
	"time"
)

// defaultQueryTimeout bounds loader statements issued without a deadline.
const defaultQueryTimeout = 30 * time.Second

// configureConnectionPool sizes the pool for a single batch writer. Table
// loads run one at a time inside a transaction, so a couple of connections
// cover the load plus a concurrent Count or snapshot read.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// ensureContext applies defaultQueryTimeout when ctx carries no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// Checkpoint flushes the write-ahead log into the database file so readers
// outside this process see every loaded table.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}
