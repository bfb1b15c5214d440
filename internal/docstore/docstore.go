// Package docstore is a narrow document-database interface with MongoDB and
// SQLite backends. Documents are plain JSON-compatible maps; each backend
// normalizes its native values (object ids, dates, int32) before returning them.
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the key holding the store-assigned identifier.
const IDField = "_id"

// TimeLayout is fixed-width so that timestamps sort lexically on every backend.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrNoDocument = errors.New("docstore: no document")
	ErrInvalidID  = errors.New("docstore: malformed id")
	ErrBadField   = errors.New("docstore: bad field name")
)

// Document is one stored record.
type Document map[string]any

// ID returns the document identifier or "".
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

type Op int

const (
	OpEq Op = iota
	OpGte
	OpMatch
)

// Cond is one field condition. All conditions of a Filter must hold.
type Cond struct {
	Field string
	Op    Op
	Value any
}

type Filter []Cond

func ByID(id string) Filter { return Filter{{Field: IDField, Op: OpEq, Value: id}} }

func Eq(field string, v any) Cond { return Cond{Field: field, Op: OpEq, Value: v} }

func Gte(field string, v int64) Cond { return Cond{Field: field, Op: OpGte, Value: v} }

// Matches is a case-insensitive regular expression match on a string field.
func Matches(field, pattern string) Cond { return Cond{Field: field, Op: OpMatch, Value: pattern} }

// And returns a copy of f with the extra conditions appended.
func (f Filter) And(c ...Cond) Filter {
	out := make(Filter, 0, len(f)+len(c))
	out = append(out, f...)
	return append(out, c...)
}

// Update is applied atomically to a single document.
type Update struct {
	Set map[string]any
	Inc map[string]int64
}

func (u Update) empty() bool { return len(u.Set) == 0 && len(u.Inc) == 0 }

type UpdateResult struct {
	Matched  int64
	Modified int64
}

type FindOptions struct {
	SortField string
	SortDesc  bool
	Limit     int64
}

type Collection interface {
	Find(ctx context.Context, f Filter, opts FindOptions) ([]Document, error)
	FindOne(ctx context.Context, f Filter) (Document, error)
	Insert(ctx context.Context, doc Document) (string, error)
	UpdateOne(ctx context.Context, f Filter, u Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, f Filter) (int64, error)
}

type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// checkField is the one key policy for inserts, updates, filters and sorts:
// any top-level key except operator-like ("$x"), dotted or quoted names.
func checkField(name string) error {
	if name == "" || len(name) > 256 || !utf8.ValidString(name) ||
		strings.HasPrefix(name, "$") || strings.ContainsAny(name, ".\"\\\x00") {
		return ErrBadField
	}
	return nil
}

func checkKeys(doc Document) error {
	for k := range doc {
		if k == IDField {
			continue
		}
		if err := checkField(k); err != nil {
			return err
		}
	}
	return nil
}

// ParseID validates an object id in its 24 character hex form.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// NewID returns a fresh object id in hex form.
func NewID() string { return primitive.NewObjectID().Hex() }

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }
