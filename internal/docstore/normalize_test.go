package docstore

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeBSONValues(t *testing.T) {
	oid := primitive.NewObjectID()
	when := time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	doc := normalizeDoc(bson.M{
		"_id":        oid,
		"created_at": primitive.NewDateTimeFromTime(when),
		"qty":        int32(7),
		"nested":     bson.M{"inner": int32(1)},
		"ordered":    bson.D{{Key: "k", Value: oid}},
		"list":       bson.A{int32(2), "x"},
	})

	if doc.ID() != oid.Hex() {
		t.Fatalf("id: want %s, got %v", oid.Hex(), doc["_id"])
	}
	if doc["created_at"] != "2025-03-04T05:06:07.008Z" {
		t.Fatalf("created_at: got %v", doc["created_at"])
	}
	if doc["qty"] != int64(7) {
		t.Fatalf("qty: got %#v", doc["qty"])
	}
	if doc["nested"].(map[string]any)["inner"] != int64(1) {
		t.Fatalf("nested: got %#v", doc["nested"])
	}
	if doc["ordered"].(map[string]any)["k"] != oid.Hex() {
		t.Fatalf("ordered: got %#v", doc["ordered"])
	}
	if l := doc["list"].([]any); l[0] != int64(2) || l[1] != "x" {
		t.Fatalf("list: got %#v", l)
	}
}

func TestMongoFilterTranslation(t *testing.T) {
	oid := primitive.NewObjectID()
	f, err := mongoFilter(ByID(oid.Hex()).And(Gte("available_quantity", 3), Matches("product_name", "ph")))
	if err != nil {
		t.Fatal(err)
	}
	if f["_id"] != oid {
		t.Fatalf("_id: got %#v", f["_id"])
	}
	if f["available_quantity"].(bson.M)["$gte"] != int64(3) {
		t.Fatalf("gte: got %#v", f["available_quantity"])
	}
	if re := f["product_name"].(primitive.Regex); re.Pattern != "ph" || re.Options != "i" {
		t.Fatalf("regex: got %#v", re)
	}

	if _, err := mongoFilter(ByID("zzz")); err != ErrInvalidID {
		t.Fatalf("want ErrInvalidID, got %v", err)
	}
}

func TestMongoUpdateTranslation(t *testing.T) {
	u, err := mongoUpdate(Update{Set: map[string]any{"name": "x"}, Inc: map[string]int64{"imported_quantity": 2}})
	if err != nil {
		t.Fatal(err)
	}
	if u["$set"].(bson.M)["name"] != "x" || u["$inc"].(bson.M)["imported_quantity"] != int64(2) {
		t.Fatalf("bad update: %#v", u)
	}
	if _, err := mongoUpdate(Update{}); err == nil {
		t.Fatal("empty update should fail")
	}
	if _, err := mongoUpdate(Update{Set: map[string]any{"_id": 1}}); err != ErrBadField {
		t.Fatalf("want ErrBadField, got %v", err)
	}

	u, err = mongoUpdate(Update{Set: map[string]any{"image-url": "http://x/y.png"}})
	if err != nil || u["$set"].(bson.M)["image-url"] != "http://x/y.png" {
		t.Fatalf("hyphenated key: %#v %v", u, err)
	}
	for _, bad := range []string{"a.b", "$rename"} {
		if _, err := mongoUpdate(Update{Set: map[string]any{bad: 1}}); err != ErrBadField {
			t.Errorf("set %q: want ErrBadField, got %v", bad, err)
		}
	}
}
