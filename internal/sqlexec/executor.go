package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
)

// DefaultTable is the table name queries are written against.
const DefaultTable = "mammals_df"

// Executor materializes the dataset into a private engine per call and runs
// one query against it. It holds no mutable state and is safe for concurrent
// use.
type Executor struct {
	store   *dataset.Store
	table   string
	logger  *zap.Logger
	metrics *Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithTable overrides the table name. The name is sanitized to an identifier.
func WithTable(name string) Option {
	return func(e *Executor) {
		if strings.TrimSpace(name) != "" {
			e.table = sanitizeIdentifier(name)
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records call outcomes and durations.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an Executor over store. A nil store behaves as an empty dataset.
func New(store *dataset.Store, opts ...Option) *Executor {
	if store == nil {
		store = dataset.Empty()
	}
	e := &Executor{store: store, table: DefaultTable, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the table name queries must reference.
func (e *Executor) Table() string { return e.table }

// Execute validates and runs req. All failures are reported in the returned
// Result; nothing is retried.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	start := time.Now()
	log := e.logger.With(zap.String("call_id", uuid.NewString()))

	res := e.execute(ctx, req, log)
	e.metrics.observe(res.Kind, time.Since(start))
	return res
}

func (e *Executor) execute(ctx context.Context, req Request, log *zap.Logger) Result {
	if err := req.Err(); err != nil {
		log.Error("malformed query request", zap.Error(err))
		return failure(err)
	}
	query := req.Query()
	if err := CheckPolicy(query); err != nil {
		log.Error("query rejected by policy", zap.String("query", query))
		return failure(err)
	}
	log.Info("executing sql query", zap.String("query", query))

	columns, rows, err := e.run(ctx, query)
	if err != nil {
		log.Error("sql query failed", zap.String("query", query), zap.Error(err))
		return Result{Message: msgExecutePrefix + err.Error(), Kind: apperr.QueryExecutionError}
	}
	log.Info("sql query executed", zap.Int("rows", len(rows)))
	if len(rows) == 0 {
		return Result{Columns: columns, Message: MsgEmpty, Kind: apperr.EmptyResult}
	}
	return Result{Columns: columns, Rows: rows, Message: MsgSuccess}
}

// run opens a fresh in-memory database, loads the table and runs query. The
// pool is pinned to one connection since every SQLite :memory: connection is
// a separate database.
func (e *Executor) run(ctx context.Context, query string) ([]string, []Row, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	if err := e.load(ctx, conn); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", e.table, err)
	}

	rs, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, nil, err
	}
	var rows []Row
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rows = append(rows, NewRow(columns, values))
	}
	if err := rs.Err(); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}

func (e *Executor) load(ctx context.Context, conn *sql.Conn) error {
	defs := make([]string, len(dataset.Schema))
	marks := make([]string, len(dataset.Schema))
	for i, c := range dataset.Schema {
		defs[i] = fmt.Sprintf("%q %s", c.Name, c.Type)
		marks[i] = "?"
	}
	// #nosec G201 -- table is sanitized and column names come from the fixed schema
	createSQL := fmt.Sprintf("CREATE TABLE %q (%s)", e.table, strings.Join(defs, ", "))
	if _, err := conn.ExecContext(ctx, createSQL); err != nil {
		return err
	}
	if e.store.Len() == 0 {
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insertSQL := fmt.Sprintf("INSERT INTO %q VALUES (%s)", e.table, strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < e.store.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, e.store.Row(i)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func failure(err error) Result {
	msg := err.Error()
	kind := apperr.KindOf(err)
	if ae, ok := err.(*apperr.E); ok {
		msg = ae.Message
	}
	return Result{Message: msg, Kind: kind}
}

// sanitizeIdentifier replaces anything outside [A-Za-z0-9_] with '_'.
func sanitizeIdentifier(name string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if len(safe) > 0 && safe[0] >= '0' && safe[0] <= '9' {
		safe = "t_" + safe
	}
	if safe == "" {
		safe = DefaultTable
	}
	return safe
}
