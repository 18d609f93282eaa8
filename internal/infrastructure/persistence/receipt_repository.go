package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/receipt"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements receipt.Repository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Receipt not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a receipt by its receipt number
func (r *GormReceiptRepository) FindByNumber(ctx context.Context, receiptNumber string) (*receipt.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).First(&model, "receipt_number = ?", receiptNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Receipt not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds receipts matching the filter
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter receipt.Filter) ([]*receipt.Receipt, error) {
	var receiptModels []models.ReceiptModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	query = query.Order("receipt_date DESC, created_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset())

	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]*receipt.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = model.ToDomain()
	}
	return receipts, nil
}

// ExistsByPayerAndReference checks whether the payer already has a receipt
// with this instrument reference
func (r *GormReceiptRepository) ExistsByPayerAndReference(ctx context.Context, payerID uuid.UUID, referenceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("payer_id = ? AND reference_number = ?", payerID, referenceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateReceiptNumber generates the next sequential receipt number
// Format: RCP-YYYY-NNNN (e.g., RCP-2026-0001)
func (r *GormReceiptRepository) GenerateReceiptNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("RCP-%d-", time.Now().Year())
	seq, err := nextSequence(r.db.WithContext(ctx), &models.ReceiptModel{}, "receipt_number", prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, rc *receipt.Receipt) error {
	model := models.ReceiptModelFromDomain(rc)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, rc *receipt.Receipt) error {
	currentVersion := rc.Version
	rc.Version++

	model := models.ReceiptModelFromDomain(rc)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", rc.ID, currentVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		rc.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		rc.Version = currentVersion
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The receipt has been modified by another user")
	}
	return nil
}

// Count counts receipts matching the filter
func (r *GormReceiptRepository) Count(ctx context.Context, filter receipt.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReceiptModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter receipt.Filter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.PayerType != nil {
		query = query.Where("payer_type = ?", *filter.PayerType)
	}
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("receipt_number ILIKE ? OR payer_name ILIKE ? OR reference_number ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// nextSequence finds the highest existing number with the given prefix in the
// given column and returns the next sequence value.
func nextSequence(db *gorm.DB, model any, column, prefix string) (int64, error) {
	var lastNumber string
	err := db.Model(model).
		Select(column).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	var next int64 = 1
	if lastNumber != "" {
		suffix := strings.TrimPrefix(lastNumber, prefix)
		var num int64
		if _, parseErr := fmt.Sscanf(suffix, "%d", &num); parseErr == nil {
			next = num + 1
		}
	}
	return next, nil
}

var _ receipt.Repository = (*GormReceiptRepository)(nil)
