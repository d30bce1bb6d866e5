package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow scans by calling the wrapped function.
type fakeRow func(dest ...any) error

func (f fakeRow) Scan(dest ...any) error { return f(dest...) }

func errRow(err error) fakeRow {
	return func(...any) error { return err }
}

func int64Row(v int64) fakeRow {
	return func(dest ...any) error {
		*dest[0].(*int64) = v
		return nil
	}
}

func boolRow(v bool) fakeRow {
	return func(dest ...any) error {
		*dest[0].(*bool) = v
		return nil
	}
}

// fakeTx records statements and serves scripted results in call order.
// Methods not overridden panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	execs      []string
	execArgs   [][]any
	execErrs   map[int]error
	queryRows  []fakeRow
	queries    []string
	committed  bool
	rolledBack bool
	closed     bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	idx := len(t.execs)
	t.execs = append(t.execs, sql)
	t.execArgs = append(t.execArgs, args)
	if err := t.execErrs[idx]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.queries = append(t.queries, sql)
	if len(t.queryRows) == 0 {
		return errRow(errors.New("unexpected query"))
	}
	row := t.queryRows[0]
	t.queryRows = t.queryRows[1:]
	return row
}

func (t *fakeTx) Commit(context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.rolledBack = true
	return nil
}

// fakeDB hands out a single fakeTx and routes non-transactional calls to it.
type fakeDB struct {
	tx       *fakeTx
	beginErr error
	queryErr error
	begins   int
	lastOpts pgx.TxOptions
}

var _ DB = (*fakeDB)(nil)

func newFakeDB() *fakeDB {
	return &fakeDB{tx: &fakeTx{execErrs: map[int]error{}}}
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return d.tx.Exec(ctx, sql, args...)
}

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return nil, errors.New("query not scripted")
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.tx.QueryRow(ctx, sql, args...)
}

func (d *fakeDB) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	d.begins++
	d.lastOpts = opts
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}
