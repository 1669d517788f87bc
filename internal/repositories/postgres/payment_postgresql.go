package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/cache"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
)

type PaymentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewPaymentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.PaymentRepository {
	return &PaymentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (p *PaymentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PaymentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.PaymentLedgerEntry) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	p.invalidatePair(ctx, entry)
	return nil
}

func (p *PaymentPostgreSQL) GetByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.PaymentLedgerEntry, error) {
	db := p.getDB(tx)
	cacheKey := fmt.Sprintf("order:%s", orderID)
	var entry models.PaymentLedgerEntry

	err := p.cacheManager.Payment.CacheOrExecute(ctx, cacheKey, &entry, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbEntry models.PaymentLedgerEntry
		if err := db.WithContext(ctx).
			Where("order_id = ?", orderID).
			First(&dbEntry).Error; err != nil {
			return nil, err
		}
		return &dbEntry, nil
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetLatestByPair fetches the newest ledger entry for a (subject, payer)
// pair. The ledger is append-only, so "latest" is "the" status of the pair.
func (p *PaymentPostgreSQL) GetLatestByPair(ctx context.Context, tx *gorm.DB, subjectID uint, kind models.SubjectKind, payerID uint) (*models.PaymentLedgerEntry, error) {
	db := p.getDB(tx)
	cacheKey := fmt.Sprintf("status:%s:%d:%d", kind, subjectID, payerID)
	var entry models.PaymentLedgerEntry

	err := p.cacheManager.Payment.CacheOrExecute(ctx, cacheKey, &entry, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbEntry models.PaymentLedgerEntry
		if err := db.WithContext(ctx).
			Where("subject_id = ? AND subject_kind = ? AND payer_id = ?", subjectID, kind, payerID).
			Order("created_at DESC").
			First(&dbEntry).Error; err != nil {
			return nil, err
		}
		return &dbEntry, nil
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (p *PaymentPostgreSQL) AttachProof(ctx context.Context, tx *gorm.DB, entry *models.PaymentLedgerEntry) error {
	db := p.getDB(tx)
	err := db.WithContext(ctx).
		Model(&models.PaymentLedgerEntry{}).
		Where("order_id = ?", entry.OrderID).
		Updates(map[string]interface{}{
			"status":          models.PaymentPendingVerification,
			"screenshot_path": entry.ScreenshotPath,
			"transaction_id":  entry.TransactionID,
			"upi_id":          entry.UpiID,
			"uploaded_at":     entry.UploadedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to attach proof: %w", err)
	}
	p.invalidatePair(ctx, entry)
	return nil
}

// Decide applies an approve/reject decision. The WHERE guard on
// pending_verification makes concurrent decisions race-safe: only one
// caller observes RowsAffected == 1.
func (p *PaymentPostgreSQL) Decide(ctx context.Context, tx *gorm.DB, orderID string, decision repositories.PaymentDecision) (int64, error) {
	db := p.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.PaymentLedgerEntry{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentPendingVerification).
		Updates(map[string]interface{}{
			"status":        decision.Status,
			"admin_remarks": decision.Remarks,
			"decided_at":    decision.DecidedAt,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to apply payment decision: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		p.cacheManager.InvalidateOrder(ctx, orderID)
		// Re-read for the pair keys; the guarded UPDATE does not return the row.
		if entry, err := p.GetByOrderID(ctx, tx, orderID); err == nil {
			p.cacheManager.InvalidatePaymentStatus(ctx, entry.SubjectID, string(entry.SubjectKind), entry.PayerID)
		}
	}
	return result.RowsAffected, nil
}

func (p *PaymentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PaymentFilters) ([]*models.PaymentLedgerEntry, int64, error) {
	db := p.getDB(tx)
	var entries []*models.PaymentLedgerEntry
	var total int64

	query := db.WithContext(ctx).Model(&models.PaymentLedgerEntry{})
	query = p.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = p.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Payer").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (p *PaymentPostgreSQL) ListPending(ctx context.Context, tx *gorm.DB, filters repositories.PaymentFilters) ([]*models.PaymentLedgerEntry, int64, error) {
	pending := models.PaymentPendingVerification
	filters.Status = &pending
	return p.List(ctx, tx, filters)
}

func (p *PaymentPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, status models.PaymentStatus) (int64, error) {
	db := p.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.PaymentLedgerEntry{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (p *PaymentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.PaymentFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SubjectKind != nil {
		query = query.Where("subject_kind = ?", *filters.SubjectKind)
	}
	if filters.PayerID != nil {
		query = query.Where("payer_id = ?", *filters.PayerID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (p *PaymentPostgreSQL) invalidatePair(ctx context.Context, entry *models.PaymentLedgerEntry) {
	p.cacheManager.InvalidateOrder(ctx, entry.OrderID)
	p.cacheManager.InvalidatePaymentStatus(ctx, entry.SubjectID, string(entry.SubjectKind), entry.PayerID)
}
