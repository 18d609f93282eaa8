package persistence

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBookingRepository implements booking.Repository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID finds a booking by ID
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var model models.BookingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Booking not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a booking by its booking number
func (r *GormBookingRepository) FindByNumber(ctx context.Context, bookingNumber string) (*booking.Booking, error) {
	var model models.BookingModel
	if err := r.db.WithContext(ctx).First(&model, "booking_number = ?", bookingNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Booking not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds bookings matching the filter
func (r *GormBookingRepository) FindAll(ctx context.Context, filter booking.Filter) ([]booking.Booking, error) {
	var bookingModels []models.BookingModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	query = query.Order("created_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset())

	if err := query.Find(&bookingModels).Error; err != nil {
		return nil, err
	}

	bookings := make([]booking.Booking, len(bookingModels))
	for i, model := range bookingModels {
		bookings[i] = *model.ToDomain()
	}
	return bookings, nil
}

// Save creates or updates a booking
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	model := models.BookingModelFromDomain(b)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBookingRepository) SaveWithLock(ctx context.Context, b *booking.Booking) error {
	currentVersion := b.Version
	b.Version++

	model := models.BookingModelFromDomain(b)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", b.ID, currentVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		b.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		b.Version = currentVersion
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The booking has been modified by another user")
	}
	return nil
}

// Count counts bookings matching the filter
func (r *GormBookingRepository) Count(ctx context.Context, filter booking.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BookingModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormBookingRepository) applyFilter(query *gorm.DB, filter booking.Filter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Settled != nil {
		if *filter.Settled {
			query = query.Where("outstanding_amount = 0")
		} else {
			query = query.Where("outstanding_amount > 0")
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("booking_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	return query
}

var _ booking.Repository = (*GormBookingRepository)(nil)
