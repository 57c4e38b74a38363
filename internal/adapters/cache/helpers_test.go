package cache

import (
	"context"
	"course-route-service/internal/adapters/repositories"
	"course-route-service/internal/domain"
	"course-route-service/internal/platform/db"
	"database/sql"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := repositories.InitSchema(context.Background(), conn, repositories.DialectSQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func testMatrix() *domain.DistanceMatrix {
	m := domain.NewDistanceMatrix(2, domain.ModeWalking)
	m.PlaceIDs = []string{"a", "b"}
	m.Distances[0][1], m.Distances[1][0] = 1200, 1250
	m.Durations[0][1], m.Durations[1][0] = 900, 950
	return m
}
