package sqlsource

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
	"go.uber.org/zap"

	"github.com/amzn/ion-cascading-config/ionconfig"
	"github.com/amzn/ion-cascading-config/ionvalue"
)

/*
 * Record storage.
 *
 * One table, three named queries managed with dotsql. Rows store Ion text;
 * content is validated by parsing on insert so the table only holds
 * well-formed Ion. Whether the records compile (declared namespaces, known
 * criteria) is checked only when a manager is built from them. Loading
 * orders by (name, id) for a
 * deterministic cascade, mirroring the ascending-filename order of the
 * directory source.
 */

const queries = `
-- name: create-records-table
CREATE TABLE IF NOT EXISTS ion_config_records (
    id      TEXT PRIMARY KEY,
    name    TEXT NOT NULL,
    content TEXT NOT NULL
);

-- name: insert-record
INSERT INTO ion_config_records (id, name, content) VALUES (?, ?, ?);

-- name: select-records
SELECT id, name, content FROM ion_config_records ORDER BY name, id;
`

type recordRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Content string `db:"content"`
}

// Store reads and writes configuration records in a database.
type Store struct {
	db     *sqlx.DB
	dot    *dotsql.DotSql
	logger *zap.Logger
}

// NewStore wraps an open database. A nil logger disables logging.
func NewStore(db *sqlx.DB, logger *zap.Logger) (*Store, error) {
	dot, err := dotsql.LoadFromString(queries)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, dot: dot, logger: logger}, nil
}

// EnsureSchema creates the records table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query, err := s.dot.Raw("create-records-table")
	if err != nil {
		return fmt.Errorf("query not found: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// Insert stores one record after validating the content parses as Ion.
func (s *Store) Insert(ctx context.Context, name, content string) (RecordID, error) {
	if _, err := ionvalue.ReadAllString(content); err != nil {
		return "", fmt.Errorf("record %s does not parse as ion: %w", name, err)
	}

	query, err := s.dot.Raw("insert-record")
	if err != nil {
		return "", fmt.Errorf("query not found: %w", err)
	}
	id := NewRecordID()
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), string(id), name, content); err != nil {
		return "", fmt.Errorf("failed to insert record %s: %w", name, err)
	}
	s.logger.Debug("inserted config record",
		zap.String("record_id", string(id)),
		zap.String("name", name))
	return id, nil
}

// Records loads every stored record in (name, id) order, expanding rows that
// hold multiple top-level values into one record per value.
func (s *Store) Records(ctx context.Context) ([]ionconfig.Record, error) {
	query, err := s.dot.Raw("select-records")
	if err != nil {
		return nil, fmt.Errorf("query not found: %w", err)
	}
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	var records []ionconfig.Record
	for _, row := range rows {
		values, err := ionvalue.ReadAllString(row.Content)
		if err != nil {
			return nil, fmt.Errorf("record %s (id %s) does not parse as ion: %w", row.Name, row.ID, err)
		}
		for _, v := range values {
			records = append(records, ionconfig.Record{Name: row.Name, Value: v})
		}
	}
	s.logger.Debug("loaded config records",
		zap.Int("rows", len(rows)),
		zap.Int("records", len(records)))
	return records, nil
}

// Manager compiles a manager from every stored record.
func (s *Store) Manager(ctx context.Context) (*ionconfig.Manager, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return ionconfig.FromRecords(records...)
}
