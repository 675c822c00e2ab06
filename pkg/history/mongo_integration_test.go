//go:build integration

package history

import (
	"context"
	"os"
	"testing"
)

// Run with: FLUIDC_TEST_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/history
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FLUIDC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FLUIDC_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "fluidc_test")
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer s.Close()
	if err := s.coll.Drop(ctx); err != nil {
		t.Fatalf("drop: %v", err)
	}
	testStore(t, s)
}
