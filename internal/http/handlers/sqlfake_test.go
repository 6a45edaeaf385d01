package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bizportal/internal/infra"
)

// fakeSQL implements infra.SQLExecutor for handler tests. Queries arrive as
// the raw sqlinline constants, so dispatch is a plain string switch inside
// the test's callbacks.
type fakeSQL struct {
	onQueryRow func(query string, args []any) ([]any, error)
	onQuery    func(query string, args []any) ([][]any, error)
	onExec     func(query string, args []any) (pgconn.CommandTag, error)
	calls      []sqlCall
}

type sqlCall struct {
	query string
	args  []any
}

var _ infra.SQLExecutor = (*fakeSQL)(nil)

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, sqlCall{query: query, args: args})
	if f.onQueryRow == nil {
		return fakeRow{err: fmt.Errorf("unexpected QueryRow: %.40s", query)}
	}
	vals, err := f.onQueryRow(query, args)
	return fakeRow{vals: vals, err: err}
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, sqlCall{query: query, args: args})
	if f.onQuery == nil {
		return nil, fmt.Errorf("unexpected Query: %.40s", query)
	}
	rows, err := f.onQuery(query, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{rows: rows}, nil
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, sqlCall{query: query, args: args})
	if f.onExec == nil {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected Exec: %.40s", query)
	}
	return f.onExec(query, args)
}

func (f *fakeSQL) called(query string) int {
	n := 0
	for _, c := range f.calls {
		if c.query == query {
			n++
		}
	}
	return n
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignAll(dest, r.vals)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return errors.New("scan without next")
	}
	return assignAll(dest, r.rows[r.idx-1])
}

func (r *fakeRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.rows) {
		return nil, errors.New("values without next")
	}
	return r.rows[r.idx-1], nil
}

func assignAll(dest, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i := range dest {
		if err := assign(dest[i], vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func assign(dest, val any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("scan destination %T is not a pointer", dest)
	}
	ev := dv.Elem()
	if val == nil {
		ev.Set(reflect.Zero(ev.Type()))
		return nil
	}
	vv := reflect.ValueOf(val)
	switch {
	case vv.Type().AssignableTo(ev.Type()):
		ev.Set(vv)
	case vv.Type().ConvertibleTo(ev.Type()):
		ev.Set(vv.Convert(ev.Type()))
	default:
		return fmt.Errorf("cannot scan %T into %T", val, dest)
	}
	return nil
}
