package docstore

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

func init() {
	// SQLite ships without REGEXP; back it with RE2 so pattern search works offline.
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, sqliteRegexp)
}

func sqliteRegexp(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := args[0].(string)
	if !ok {
		return nil, errors.New("regexp: pattern must be text")
	}
	var s string
	switch v := args[1].(type) {
	case nil:
		return int64(0), nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if re.MatchString(s) {
		return int64(1), nil
	}
	return int64(0), nil
}

// SQLiteStore keeps every collection in a single table of JSON bodies.
type SQLiteStore struct{ db *sqlx.DB }

// OpenSQLite opens (or creates) the database at dsn and ensures the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents(
  collection TEXT NOT NULL,
  id TEXT NOT NULL,
  body TEXT NOT NULL CHECK (json_valid(body)),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  PRIMARY KEY(collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{db: s.db, name: name}
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close(context.Context) error { return s.db.Close() }

type sqliteCollection struct {
	db   *sqlx.DB
	name string
}

type docRow struct {
	ID   string `db:"id"`
	Body string `db:"body"`
}

// jsonPath quotes the label so keys like "image-url" address one member.
func jsonPath(field string) string { return `$."` + field + `"` }

// where renders f as a SQL predicate over the documents table.
func (c *sqliteCollection) where(f Filter) (string, []any, error) {
	clauses := []string{"collection = ?"}
	args := []any{c.name}
	for _, cond := range f {
		if cond.Field == IDField {
			id, ok := cond.Value.(string)
			if !ok || cond.Op != OpEq {
				return "", nil, ErrInvalidID
			}
			if _, err := ParseID(id); err != nil {
				return "", nil, err
			}
			clauses = append(clauses, "id = ?")
			args = append(args, id)
			continue
		}
		if err := checkField(cond.Field); err != nil {
			return "", nil, err
		}
		switch cond.Op {
		case OpEq:
			clauses = append(clauses, "json_extract(body, ?) = ?")
			args = append(args, jsonPath(cond.Field), cond.Value)
		case OpGte:
			clauses = append(clauses, "json_extract(body, ?) >= ?")
			args = append(args, jsonPath(cond.Field), cond.Value)
		case OpMatch:
			clauses = append(clauses, "regexp(?, json_extract(body, ?))")
			args = append(args, "(?i)"+fmt.Sprint(cond.Value), jsonPath(cond.Field))
		default:
			return "", nil, fmt.Errorf("docstore: unsupported op %d", cond.Op)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func (c *sqliteCollection) Find(ctx context.Context, f Filter, opts FindOptions) ([]Document, error) {
	where, args, err := c.where(f)
	if err != nil {
		return nil, err
	}
	q := `SELECT id, body FROM documents WHERE ` + where
	if opts.SortField != "" {
		if err := checkField(opts.SortField); err != nil {
			return nil, err
		}
		dir := "ASC"
		if opts.SortDesc {
			dir = "DESC"
		}
		q += ` ORDER BY json_extract(body, ?) ` + dir + `, rowid ` + dir
		args = append(args, jsonPath(opts.SortField))
	} else {
		q += ` ORDER BY rowid`
	}
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var rows []docRow
	if err := c.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		doc := Document{}
		if err := json.Unmarshal([]byte(r.Body), &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", c.name, r.ID, err)
		}
		doc[IDField] = r.ID
		out = append(out, doc)
	}
	return out, nil
}

func (c *sqliteCollection) FindOne(ctx context.Context, f Filter) (Document, error) {
	docs, err := c.Find(ctx, f, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocument
	}
	return docs[0], nil
}

func (c *sqliteCollection) Insert(ctx context.Context, doc Document) (string, error) {
	if err := checkKeys(doc); err != nil {
		return "", err
	}
	body := make(Document, len(doc))
	for k, v := range doc {
		if k != IDField {
			body[k] = v
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	id := NewID()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO documents(collection, id, body, created_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	`, c.name, id, string(b))
	if err != nil {
		return "", err
	}
	return id, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UpdateOne rewrites the body with nested json_set calls in one statement,
// so $set and $inc land together or not at all.
func (c *sqliteCollection) UpdateOne(ctx context.Context, f Filter, u Update) (UpdateResult, error) {
	if u.empty() {
		return UpdateResult{}, errors.New("docstore: empty update")
	}
	expr := "body"
	var setArgs []any
	for _, k := range sortedKeys(u.Set) {
		if k == IDField {
			return UpdateResult{}, ErrBadField
		}
		if err := checkField(k); err != nil {
			return UpdateResult{}, err
		}
		b, err := json.Marshal(u.Set[k])
		if err != nil {
			return UpdateResult{}, err
		}
		expr = "json_set(" + expr + ", ?, json(?))"
		setArgs = append(setArgs, jsonPath(k), string(b))
	}
	for _, k := range sortedKeys(u.Inc) {
		if err := checkField(k); err != nil {
			return UpdateResult{}, err
		}
		expr = "json_set(" + expr + ", ?, COALESCE(json_extract(body, ?), 0) + ?)"
		setArgs = append(setArgs, jsonPath(k), jsonPath(k), u.Inc[k])
	}

	where, whereArgs, err := c.where(f)
	if err != nil {
		return UpdateResult{}, err
	}
	q := `UPDATE documents SET body = ` + expr + `, updated_at = CURRENT_TIMESTAMP
		WHERE rowid IN (SELECT rowid FROM documents WHERE ` + where + ` LIMIT 1)`
	res, err := c.db.ExecContext(ctx, q, append(setArgs, whereArgs...)...)
	if err != nil {
		return UpdateResult{}, err
	}
	n, _ := res.RowsAffected()
	return UpdateResult{Matched: n, Modified: n}, nil
}

func (c *sqliteCollection) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	where, args, err := c.where(f)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE rowid IN (SELECT rowid FROM documents WHERE `+where+` LIMIT 1)
	`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
