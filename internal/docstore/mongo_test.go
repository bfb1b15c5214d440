package docstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"exportimport/internal/docstore"
)

// Runs only against a live server, e.g. MONGODB_TEST_URI=mongodb://localhost:27017
func TestMongoCollection(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := docstore.OpenMongo(ctx, uri, "exportimport_test_"+docstore.NewID())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close(context.Background()) }()

	exerciseCollection(t, s.Collection("products"))
}
