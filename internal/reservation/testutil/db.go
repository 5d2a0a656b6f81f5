package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/repository"
	"github.com/tair/stock-reservations/pkg/database"
)

const TenantID = "tenant-a"

// NewTestDB opens a private in-memory SQLite database with the reservation
// schema applied. The pool holds one connection, so transactions run one
// at a time the way row locks would order them on PostgreSQL.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := repository.NewGormReservationRepository(db).AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// InsertStockUnit creates a unit for TenantID with the given on-hand count.
func InsertStockUnit(t *testing.T, db *gorm.DB, pieceID, variantID string, onHand int) domain.StockUnit {
	t.Helper()
	unit := domain.StockUnit{
		TenantID:  TenantID,
		PieceID:   pieceID,
		VariantID: variantID,
		OnHand:    onHand,
	}
	if err := db.WithContext(context.Background()).Create(&unit).Error; err != nil {
		t.Fatalf("insert stock unit: %v", err)
	}
	return unit
}

// InsertReservation stores res as-is, filling ID and CreatedAt when empty.
func InsertReservation(t *testing.T, db *gorm.DB, res domain.Reservation) domain.Reservation {
	t.Helper()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.TenantID == "" {
		res.TenantID = TenantID
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = res.ExpiresAt.Add(-time.Minute)
	}
	if err := db.WithContext(context.Background()).Create(&res).Error; err != nil {
		t.Fatalf("insert reservation: %v", err)
	}
	return res
}

// OnHand reads the stored on-hand count of a unit.
func OnHand(t *testing.T, db *gorm.DB, pieceID, variantID string) int {
	t.Helper()
	var unit domain.StockUnit
	err := db.Where("tenant_id = ? AND piece_id = ? AND variant_id = ?", TenantID, pieceID, variantID).
		First(&unit).Error
	if err != nil {
		t.Fatalf("read stock unit: %v", err)
	}
	return unit.OnHand
}
