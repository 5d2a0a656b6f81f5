package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-reservations/internal/reservation/domain"
)

type txKey struct{}

// GormReservationRepository stores stock units and reservations through GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockUnit{}, &domain.Reservation{})
}

// WithTx runs fn in a transaction carried by the context. Nested calls join
// the outer transaction.
func (r *GormReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *GormReservationRepository) GetStockUnitForUpdate(ctx context.Context, key domain.UnitKey) (*domain.StockUnit, error) {
	var unit domain.StockUnit
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND piece_id = ? AND variant_id = ?", key.TenantID, key.PieceID, key.VariantID).
		First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockUnitNotFound
		}
		return nil, fmt.Errorf("get stock unit: %w", err)
	}
	return &unit, nil
}

func (r *GormReservationRepository) CreateStockUnit(ctx context.Context, unit *domain.StockUnit) error {
	if err := r.conn(ctx).Create(unit).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("create stock unit: %w", err)
	}
	return nil
}

func (r *GormReservationRepository) ClaimStockUnit(ctx context.Context, unitID uint, version int64) error {
	res := r.conn(ctx).Model(&domain.StockUnit{}).
		Where("id = ? AND version = ?", unitID, version).
		Updates(map[string]any{"version": gorm.Expr("version + 1")})
	return versionGuard(res, "claim stock unit")
}

func (r *GormReservationRepository) DecrementStock(ctx context.Context, unitID uint, version int64, amount int) error {
	res := r.conn(ctx).Model(&domain.StockUnit{}).
		Where("id = ? AND version = ? AND on_hand >= ?", unitID, version, amount).
		Updates(map[string]any{
			"on_hand": gorm.Expr("on_hand - ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	return versionGuard(res, "decrement stock")
}

func (r *GormReservationRepository) SetOnHand(ctx context.Context, unitID uint, version int64, onHand int) error {
	res := r.conn(ctx).Model(&domain.StockUnit{}).
		Where("id = ? AND version = ?", unitID, version).
		Updates(map[string]any{
			"on_hand": onHand,
			"version": gorm.Expr("version + 1"),
		})
	return versionGuard(res, "set on hand")
}

const availabilityQuery = `
SELECT u.on_hand,
       COALESCE((
           SELECT SUM(r.quantity)
           FROM stock_reservations r
           WHERE r.tenant_id = u.tenant_id
             AND r.piece_id = u.piece_id
             AND r.variant_id = u.variant_id
             AND r.status = ?
             AND r.expires_at > ?
       ), 0)
FROM stock_units u
WHERE u.tenant_id = ? AND u.piece_id = ? AND u.variant_id = ?`

func (r *GormReservationRepository) GetAvailability(ctx context.Context, key domain.UnitKey, now time.Time) (*domain.Availability, error) {
	var onHand, reserved int64
	err := r.conn(ctx).
		Raw(availabilityQuery, domain.StatusActive, now, key.TenantID, key.PieceID, key.VariantID).
		Row().
		Scan(&onHand, &reserved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStockUnitNotFound
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}
	return &domain.Availability{
		TenantID:  key.TenantID,
		PieceID:   key.PieceID,
		VariantID: key.VariantID,
		OnHand:    int(onHand),
		Reserved:  int(reserved),
		Available: int(onHand - reserved),
	}, nil
}

func (r *GormReservationRepository) SumActive(ctx context.Context, key domain.UnitKey, now time.Time) (int, error) {
	var total int64
	err := r.conn(ctx).Model(&domain.Reservation{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ? AND piece_id = ? AND variant_id = ? AND status = ? AND expires_at > ?",
			key.TenantID, key.PieceID, key.VariantID, domain.StatusActive, now).
		Row().
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return int(total), nil
}

func (r *GormReservationRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	if err := r.conn(ctx).Create(res).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *GormReservationRepository) FindReservation(ctx context.Context, tenantID, id string) (*domain.Reservation, error) {
	return r.findReservation(r.conn(ctx), tenantID, id)
}

func (r *GormReservationRepository) FindReservationForUpdate(ctx context.Context, tenantID, id string) (*domain.Reservation, error) {
	return r.findReservation(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormReservationRepository) findReservation(db *gorm.DB, tenantID, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &res, nil
}

func (r *GormReservationRepository) FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.conn(ctx).Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reservation by idempotency key: %w", err)
	}
	return &res, nil
}

func (r *GormReservationRepository) FindBySession(ctx context.Context, tenantID, sessionID string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.conn(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find reservations by session: %w", err)
	}
	return out, nil
}

func (r *GormReservationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error) {
	column, ok := transitionColumns[to]
	if !ok {
		return false, fmt.Errorf("transition to %q is not allowed", to)
	}
	res := r.conn(ctx).Model(&domain.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, column: at})
	if res.Error != nil {
		return false, fmt.Errorf("transition reservation to %s: %w", to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormReservationRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.conn(ctx).
		Where("status = ? AND expires_at < ?", domain.StatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	return out, nil
}

var transitionColumns = map[domain.Status]string{
	domain.StatusCompleted: "completed_at",
	domain.StatusCancelled: "cancelled_at",
	domain.StatusExpired:   "expired_at",
}

func (r *GormReservationRepository) conn(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

func versionGuard(res *gorm.DB, op string) error {
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
