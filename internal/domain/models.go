package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Product is a listing in the "products" collection. Recognized fields are
// typed; anything else the client sends is kept in Extra and stored as-is.
type Product struct {
	ID                string
	Name              *string
	Price             *float64
	ProductName       *string
	Email             *string
	CreatedAt         *string
	AvailableQuantity *int64
	ImportedQuantity  *int64
	Extra             map[string]any
}

// ImportedRecord is a row in the "imported" collection.
type ImportedRecord struct {
	ID         string
	ImportedBy *string
	ProductID  *string
	Extra      map[string]any
}

func (p *Product) targets() map[string]any {
	return map[string]any{
		"name":               &p.Name,
		"price":              &p.Price,
		"product_name":       &p.ProductName,
		"email":              &p.Email,
		"created_at":         &p.CreatedAt,
		"available_quantity": &p.AvailableQuantity,
		"imported_quantity":  &p.ImportedQuantity,
	}
}

// UnmarshalJSON decodes a client payload; a known field with the wrong type
// is an ErrInvalidArgument.
func (p *Product) UnmarshalJSON(data []byte) error {
	*p = Product{}
	id, extra, err := decodeObject(data, p.targets(), false)
	if err != nil {
		return err
	}
	p.ID, p.Extra = id, extra
	return nil
}

// DecodeStored decodes a stored document. Rows written by other clients may
// carry a known field with another type (a Decimal128 price, a string
// quantity); such values are kept in Extra instead of failing the read.
func (p *Product) DecodeStored(data []byte) error {
	*p = Product{}
	id, extra, err := decodeObject(data, p.targets(), true)
	if err != nil {
		return err
	}
	p.ID, p.Extra = id, extra
	return nil
}

// Fields returns every set field except the id, ready for storage.
func (p Product) Fields() map[string]any {
	out := copyExtra(p.Extra)
	putString(out, "name", p.Name)
	if p.Price != nil {
		out["price"] = *p.Price
	}
	putString(out, "product_name", p.ProductName)
	putString(out, "email", p.Email)
	putString(out, "created_at", p.CreatedAt)
	putInt(out, "available_quantity", p.AvailableQuantity)
	putInt(out, "imported_quantity", p.ImportedQuantity)
	return out
}

func (p Product) MarshalJSON() ([]byte, error) {
	out := p.Fields()
	if p.ID != "" {
		out["_id"] = p.ID
	}
	return json.Marshal(out)
}

// Validate enforces the counter invariants on a client payload.
func (p Product) Validate() error {
	if p.AvailableQuantity != nil && *p.AvailableQuantity < 0 {
		return fmt.Errorf("%w: available_quantity must not be negative", ErrInvalidArgument)
	}
	if p.ImportedQuantity != nil && *p.ImportedQuantity < 0 {
		return fmt.Errorf("%w: imported_quantity must not be negative", ErrInvalidArgument)
	}
	return nil
}

func (r *ImportedRecord) targets() map[string]any {
	return map[string]any{
		"imported_by": &r.ImportedBy,
		"product_id":  &r.ProductID,
	}
}

func (r *ImportedRecord) UnmarshalJSON(data []byte) error {
	*r = ImportedRecord{}
	id, extra, err := decodeObject(data, r.targets(), false)
	if err != nil {
		return err
	}
	r.ID, r.Extra = id, extra
	return nil
}

func (r *ImportedRecord) DecodeStored(data []byte) error {
	*r = ImportedRecord{}
	id, extra, err := decodeObject(data, r.targets(), true)
	if err != nil {
		return err
	}
	r.ID, r.Extra = id, extra
	return nil
}

func (r ImportedRecord) Fields() map[string]any {
	out := copyExtra(r.Extra)
	putString(out, "imported_by", r.ImportedBy)
	putString(out, "product_id", r.ProductID)
	return out
}

func (r ImportedRecord) MarshalJSON() ([]byte, error) {
	out := r.Fields()
	if r.ID != "" {
		out["_id"] = r.ID
	}
	return json.Marshal(out)
}

// decodeObject decodes a JSON object, routing known keys into targets and
// returning the string form of "_id" plus every other key. In lenient mode a
// known key that does not fit its target goes to the extras unchanged.
func decodeObject(data []byte, targets map[string]any, lenient bool) (string, map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidArgument)
	}
	var id string
	extra := map[string]any{}
	for k, v := range raw {
		if k == "_id" {
			// Non-string ids (e.g. {"$oid": ...}) are dropped; the store owns ids.
			_ = json.Unmarshal(v, &id)
			continue
		}
		if dst, ok := targets[k]; ok {
			// Decode into a fresh value: a failed Unmarshal may leave a
			// half-set pointer behind.
			tmp := reflect.New(reflect.TypeOf(dst).Elem())
			if err := json.Unmarshal(v, tmp.Interface()); err == nil {
				reflect.ValueOf(dst).Elem().Set(tmp.Elem())
				continue
			}
			if !lenient {
				return "", nil, fmt.Errorf("%w: field %q has the wrong type", ErrInvalidArgument, k)
			}
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return "", nil, fmt.Errorf("%w: field %q", ErrInvalidArgument, k)
		}
		extra[k] = val
	}
	if len(extra) == 0 {
		extra = nil
	}
	return id, extra, nil
}

func copyExtra(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+8)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func putString(m map[string]any, k string, v *string) {
	if v != nil {
		m[k] = *v
	}
}

func putInt(m map[string]any, k string, v *int64) {
	if v != nil {
		m[k] = *v
	}
}

func Ptr[T any](v T) *T { return &v }
