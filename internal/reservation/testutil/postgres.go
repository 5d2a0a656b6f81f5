package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/tair/stock-reservations/internal/reservation/repository"
	"github.com/tair/stock-reservations/pkg/database"
)

const postgresImage = "postgres:16-alpine"

// NewPostgresDB starts a disposable PostgreSQL container and connects to it
// through the service's own connection path, with the reservation schema
// applied. It skips under -short or when no container runtime is reachable.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("reservationdb"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}

	db, err := database.NewGormConnection(database.Config{
		Host:     host,
		Port:     port.Port(),
		User:     "postgres",
		Password: "postgres",
		DBName:   "reservationdb",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("postgres handle: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := repository.NewGormReservationRepository(db).AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Truncate empties the reservation tables between cases sharing one database.
func Truncate(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec("TRUNCATE stock_reservations, stock_units RESTART IDENTITY").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
}
