package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"boothbook/internal/ports"
)

// ReadSnapshot runs fn inside a read-only REPEATABLE READ transaction, so the
// counts and the meeting list all see the same committed state.
func (db *DB) ReadSnapshot(ctx context.Context, fn func(context.Context, ports.StatsReader) error) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	err := db.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		return fn(ctx, reader{tx})
	})
	return classify("read snapshot", err)
}
