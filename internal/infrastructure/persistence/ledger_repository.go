package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger entry by ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Ledger entry not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a ledger entry by its entry number
func (r *GormLedgerRepository) FindByNumber(ctx context.Context, entryNumber string) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "entry_number = ?", entryNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Ledger entry not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds ledger entries matching the filter
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter ledger.Filter) ([]*ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	query = query.Order("created_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset())

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// FindByBooking finds all ledger entries for a booking, oldest first
func (r *GormLedgerRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// FindBySource finds ledger entries created by a specific source record
func (r *GormLedgerRepository) FindBySource(ctx context.Context, source ledger.EntrySource, sourceID uuid.UUID) ([]*ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("source = ? AND source_id = ?", source, sourceID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// SumApprovedByBooking sums the signed amounts of approved entries for a booking
func (r *GormLedgerRepository) SumApprovedByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	return r.sumByStatuses(ctx, bookingID, []ledger.EntryStatus{ledger.EntryStatusApproved})
}

// SumActiveByBooking sums the signed amounts of pending and approved entries
// for a booking. Rejected entries do not count.
func (r *GormLedgerRepository) SumActiveByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	return r.sumByStatuses(ctx, bookingID, []ledger.EntryStatus{
		ledger.EntryStatusPending, ledger.EntryStatusApproved,
	})
}

func (r *GormLedgerRepository) sumByStatuses(ctx context.Context, bookingID uuid.UUID, statuses []ledger.EntryStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("booking_id = ? AND status IN ?", bookingID, statuses).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// GenerateEntryNumber generates the next sequential ledger entry number
// Format: LE-YYYY-NNNN (e.g., LE-2026-0001)
func (r *GormLedgerRepository) GenerateEntryNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("LE-%d-", time.Now().Year())
	seq, err := nextSequence(r.db.WithContext(ctx), &models.LedgerEntryModel{}, "entry_number", prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// Save creates or updates a ledger entry
func (r *GormLedgerRepository) Save(ctx context.Context, entry *ledger.Entry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormLedgerRepository) SaveWithLock(ctx context.Context, entry *ledger.Entry) error {
	currentVersion := entry.Version
	entry.Version++

	model := models.LedgerEntryModelFromDomain(entry)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", entry.ID, currentVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		entry.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		entry.Version = currentVersion
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The ledger entry has been modified by another user")
	}
	return nil
}

// Count counts ledger entries matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter ledger.Filter) *gorm.DB {
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EntryType != nil {
		query = query.Where("entry_type = ?", *filter.EntryType)
	}
	if filter.PaymentMode != nil {
		query = query.Where("payment_mode = ?", *filter.PaymentMode)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("entry_number ILIKE ? OR booking_number ILIKE ?", pattern, pattern)
	}
	return query
}

func toEntries(entryModels []models.LedgerEntryModel) []*ledger.Entry {
	entries := make([]*ledger.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = model.ToDomain()
	}
	return entries
}

var _ ledger.Repository = (*GormLedgerRepository)(nil)
