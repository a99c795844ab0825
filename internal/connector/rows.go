package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/seeqdb/seeq/internal/model"
)

// QueryRows runs one SQL statement through the pool and materializes the
// full result set. When the first attempt fails on what looks like a dead
// connection, it pings the pool (forcing a reconnect) and retries once
// before surfacing the error. Shared by all drivers.
func QueryRows(ctx context.Context, db *sqlx.DB, sqlText string) (*model.ResultSet, error) {
	rs, err := queryOnce(ctx, db, sqlText)
	if err == nil {
		return rs, nil
	}
	if !isDeadConnection(err) {
		return nil, err
	}
	if perr := db.PingContext(ctx); perr != nil {
		return nil, fmt.Errorf("reconnect after dead connection: %w", perr)
	}
	return queryOnce(ctx, db, sqlText)
}

func queryOnce(ctx context.Context, db *sqlx.DB, sqlText string) (*model.ResultSet, error) {
	rows, err := db.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	rs := &model.ResultSet{Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			// Drivers hand back raw bytes for text columns.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// isDeadConnection reports whether err indicates the underlying connection
// was closed or reset, as opposed to a SQL-level failure the caller should
// see as-is.
func isDeadConnection(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "bad connection") ||
		strings.Contains(msg, "connection is closed") ||
		strings.Contains(msg, "unexpected eof")
}
