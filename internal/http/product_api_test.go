package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"exportimport/internal/docstore"
)

func TestRootAndHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, b := call(t, app, "GET", "/", "")
	if resp.StatusCode != http.StatusOK || string(b) != "it's running well" {
		t.Fatalf("root: %d %q", resp.StatusCode, b)
	}
	resp, b = call(t, app, "GET", "/healthz", "")
	if resp.StatusCode != http.StatusOK || decodeJSON[map[string]any](t, b)["ok"] != true {
		t.Fatalf("healthz: %d %s", resp.StatusCode, b)
	}
}

func TestProductLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	id := createProduct(t, app, `{"_id":"65f1c2a9e4b0a1b2c3d4e5f6","product_name":"Widget","price":9.5,"email":"a@x.io","origin_country":"BD"}`)
	if id == "65f1c2a9e4b0a1b2c3d4e5f6" {
		t.Fatal("client supplied _id must be ignored")
	}

	resp, b := call(t, app, "GET", "/products/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: %d %s", resp.StatusCode, b)
	}
	p := decodeJSON[map[string]any](t, b)
	if p["_id"] != id || p["product_name"] != "Widget" || p["origin_country"] != "BD" || p["created_at"] == nil {
		t.Fatalf("unexpected product: %s", b)
	}

	resp, b = call(t, app, "PATCH", "/products/"+id, `{"name":"Gadget","price":12}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: %d %s", resp.StatusCode, b)
	}
	upd := decodeJSON[map[string]any](t, b)
	if upd["success"] != true || upd["matched_count"] != 1.0 {
		t.Fatalf("patch result: %s", b)
	}

	resp, b = call(t, app, "PUT", "/product/"+id, `{"product_name":"Widget Pro","rating":4}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: %d %s", resp.StatusCode, b)
	}
	_, b = call(t, app, "GET", "/products/"+id, "")
	p = decodeJSON[map[string]any](t, b)
	if p["name"] != "Gadget" || p["price"] != 12.0 || p["product_name"] != "Widget Pro" || p["email"] != "a@x.io" || p["rating"] != 4.0 {
		t.Fatalf("after updates: %s", b)
	}

	resp, b = call(t, app, "DELETE", "/products/"+id, "")
	if resp.StatusCode != http.StatusOK || decodeJSON[map[string]any](t, b)["deleted_count"] != 1.0 {
		t.Fatalf("delete: %d %s", resp.StatusCode, b)
	}
	resp, b = call(t, app, "GET", "/products/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: want 404, got %d", resp.StatusCode)
	}
	if e := decodeJSON[map[string]any](t, b); e["success"] != false || e["message"] != "Product not found" {
		t.Fatalf("404 body: %s", b)
	}
	resp, b = call(t, app, "DELETE", "/products/"+id, "")
	if resp.StatusCode != http.StatusOK || decodeJSON[map[string]any](t, b)["deleted_count"] != 0.0 {
		t.Fatalf("second delete: %d %s", resp.StatusCode, b)
	}
}

func TestProductListings(t *testing.T) {
	app, _ := newTestApp(t)

	_, b := call(t, app, "GET", "/products", "")
	if strings.TrimSpace(string(b)) != "[]" {
		t.Fatalf("empty list should be [], got %s", b)
	}

	for i, n := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		owner := "a@x.io"
		if i%2 == 1 {
			owner = "b@x.io"
		}
		createProduct(t, app, `{"product_name":"`+n+`","email":"`+owner+`","created_at":"2025-01-0`+string(rune('1'+i))+`T00:00:00.000Z"}`)
	}

	_, b = call(t, app, "GET", "/products", "")
	if all := decodeJSON[[]map[string]any](t, b); len(all) != 7 {
		t.Fatalf("list: %d", len(all))
	}

	_, b = call(t, app, "GET", "/recent-products", "")
	recent := decodeJSON[[]map[string]any](t, b)
	if len(recent) != 6 || recent[0]["product_name"] != "G" || recent[5]["product_name"] != "B" {
		t.Fatalf("recent: %s", b)
	}

	_, b = call(t, app, "GET", "/my-exports?email=b@x.io", "")
	if mine := decodeJSON[[]map[string]any](t, b); len(mine) != 3 {
		t.Fatalf("my-exports: %s", b)
	}

	resp, _ := call(t, app, "GET", "/my-exports", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing email: want 400, got %d", resp.StatusCode)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	app, _ := newTestApp(t)
	for _, n := range []string{"Phone", "PHONE charger", "iphone case", "Lamp"} {
		createProduct(t, app, `{"product_name":"`+n+`"}`)
	}

	_, b := call(t, app, "GET", "/search?search=phone", "")
	if hits := decodeJSON[[]map[string]any](t, b); len(hits) != 3 {
		t.Fatalf("search phone: %s", b)
	}
	_, b = call(t, app, "GET", "/search", "")
	if hits := decodeJSON[[]map[string]any](t, b); len(hits) != 4 {
		t.Fatalf("empty search: %s", b)
	}
	resp, _ := call(t, app, "GET", "/search?search="+strings.Repeat("x", 201), "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overlong search: want 400, got %d", resp.StatusCode)
	}
}

func TestImportedRecords(t *testing.T) {
	app, _ := newTestApp(t)

	resp, b := call(t, app, "POST", "/imported", `{"_id":"65f1c2a9e4b0a1b2c3d4e5f6","imported_by":"a@x.io","id":"client-1","product_id":"p1","quantity":2}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create imported: %d %s", resp.StatusCode, b)
	}
	id, _ := decodeJSON[map[string]any](t, b)["inserted_id"].(string)
	if id == "" || id == "65f1c2a9e4b0a1b2c3d4e5f6" {
		t.Fatalf("bad inserted_id %q", id)
	}

	_, b = call(t, app, "GET", "/my-imported?email=a@x.io", "")
	recs := decodeJSON[[]map[string]any](t, b)
	if len(recs) != 1 || recs[0]["_id"] != id || recs[0]["quantity"] != 2.0 || recs[0]["id"] != nil {
		t.Fatalf("my-imported: %s", b)
	}

	resp, b = call(t, app, "DELETE", "/imported/"+id, "")
	if resp.StatusCode != http.StatusOK || decodeJSON[map[string]any](t, b)["deleted_count"] != 1.0 {
		t.Fatalf("delete imported: %d %s", resp.StatusCode, b)
	}
	_, b = call(t, app, "GET", "/my-imported?email=a@x.io", "")
	if strings.TrimSpace(string(b)) != "[]" {
		t.Fatalf("after delete: %s", b)
	}
}

func TestListingsSurviveForeignlyTypedRows(t *testing.T) {
	app, store := newTestApp(t)
	createProduct(t, app, `{"product_name":"Fresh","price":3,"created_at":"2025-01-02T00:00:00.000Z"}`)

	// Written by another client: price as a string, quantity as a float.
	_, err := store.Collection("products").Insert(context.Background(), docstore.Document{
		"product_name":       "Legacy",
		"price":              "10",
		"available_quantity": 2.5,
		"created_at":         "2025-01-01T00:00:00.000Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/products", "/recent-products", "/search?search=e"} {
		resp, b := call(t, app, "GET", path, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: want 200, got %d %s", path, resp.StatusCode, b)
		}
		ps := decodeJSON[[]map[string]any](t, b)
		if len(ps) != 2 {
			t.Fatalf("%s: want both rows, got %s", path, b)
		}
		for _, p := range ps {
			if p["product_name"] == "Legacy" && (p["price"] != "10" || p["available_quantity"] != 2.5) {
				t.Fatalf("%s: legacy values must be returned as stored: %v", path, p)
			}
		}
	}
}

func TestReplaceAcceptsKeysItWasCreatedWith(t *testing.T) {
	app, _ := newTestApp(t)
	body := `{"product_name":"Lamp","image-url":"http://x/y.png","available_quantity":3}`
	id := createProduct(t, app, body)

	resp, b := call(t, app, "PUT", "/product/"+id, `{"product_name":"Lamp","image-url":"http://x/z.png","available_quantity":3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: %d %s", resp.StatusCode, b)
	}
	_, b = call(t, app, "GET", "/products/"+id, "")
	if p := decodeJSON[map[string]any](t, b); p["image-url"] != "http://x/z.png" {
		t.Fatalf("image-url not replaced: %s", b)
	}

	// Keys no backend can store are refused at create time too.
	for _, bad := range []string{`{"a.b":1}`, `{"$where":"1"}`} {
		resp, b := call(t, app, "POST", "/products", bad)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("create %s: want 400, got %d %s", bad, resp.StatusCode, b)
		}
	}
}

func TestSearchRejectsBrokenPattern(t *testing.T) {
	app, _ := newTestApp(t)
	createProduct(t, app, `{"product_name":"Phone"}`)

	resp, b := call(t, app, "GET", "/search?search=%28", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d %s", resp.StatusCode, b)
	}
	if msg := decodeJSON[map[string]any](t, b)["message"]; msg != "Search is not a valid pattern" {
		t.Fatalf("message: %v", msg)
	}
}
