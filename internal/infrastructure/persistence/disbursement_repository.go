package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDisbursementRepository implements disbursement.Repository using GORM
type GormDisbursementRepository struct {
	db *gorm.DB
}

// NewGormDisbursementRepository creates a new GormDisbursementRepository
func NewGormDisbursementRepository(db *gorm.DB) *GormDisbursementRepository {
	return &GormDisbursementRepository{db: db}
}

// FindByID finds a disbursement by ID
func (r *GormDisbursementRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.Disbursement, error) {
	var model models.DisbursementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Disbursement not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a disbursement by its disbursement number
func (r *GormDisbursementRepository) FindByNumber(ctx context.Context, disbursementNumber string) (*disbursement.Disbursement, error) {
	var model models.DisbursementModel
	if err := r.db.WithContext(ctx).First(&model, "disbursement_number = ?", disbursementNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Disbursement not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds disbursements matching the filter
func (r *GormDisbursementRepository) FindAll(ctx context.Context, filter disbursement.Filter) ([]*disbursement.Disbursement, error) {
	var disbModels []models.DisbursementModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	query = query.Order("created_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset())

	if err := query.Find(&disbModels).Error; err != nil {
		return nil, err
	}

	disbursements := make([]*disbursement.Disbursement, len(disbModels))
	for i, model := range disbModels {
		disbursements[i] = model.ToDomain()
	}
	return disbursements, nil
}

// ExistsByProviderReference reports whether a disbursement already carries
// this provider reference
func (r *GormDisbursementRepository) ExistsByProviderReference(ctx context.Context, providerReference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DisbursementModel{}).
		Where("provider_reference = ?", providerReference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateDisbursementNumber generates the next sequential disbursement number
// Format: DSB-YYYY-NNNN (e.g., DSB-2026-0001)
func (r *GormDisbursementRepository) GenerateDisbursementNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("DSB-%d-", time.Now().Year())
	seq, err := nextSequence(r.db.WithContext(ctx), &models.DisbursementModel{}, "disbursement_number", prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// Save creates or updates a disbursement
func (r *GormDisbursementRepository) Save(ctx context.Context, d *disbursement.Disbursement) error {
	model := models.DisbursementModelFromDomain(d)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDisbursementRepository) SaveWithLock(ctx context.Context, d *disbursement.Disbursement) error {
	currentVersion := d.Version
	d.Version++

	model := models.DisbursementModelFromDomain(d)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", d.ID, currentVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		d.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		d.Version = currentVersion
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The disbursement has been modified by another user")
	}
	return nil
}

// Count counts disbursements matching the filter
func (r *GormDisbursementRepository) Count(ctx context.Context, filter disbursement.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DisbursementModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormDisbursementRepository) applyFilter(query *gorm.DB, filter disbursement.Filter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Provider != nil {
		query = query.Where("provider_name = ?", *filter.Provider)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("disbursement_number ILIKE ? OR booking_number ILIKE ? OR provider_reference ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// GormDeviationRepository implements disbursement.DeviationRepository using GORM
type GormDeviationRepository struct {
	db *gorm.DB
}

// NewGormDeviationRepository creates a new GormDeviationRepository
func NewGormDeviationRepository(db *gorm.DB) *GormDeviationRepository {
	return &GormDeviationRepository{db: db}
}

// FindAuthorityByManager finds the deviation authority record for a manager
func (r *GormDeviationRepository) FindAuthorityByManager(ctx context.Context, managerID uuid.UUID) (*disbursement.DeviationAuthority, error) {
	var model models.DeviationAuthorityModel
	if err := r.db.WithContext(ctx).First(&model, "manager_id = ?", managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Deviation authority not found for manager")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveAuthority creates or updates a deviation authority record
func (r *GormDeviationRepository) SaveAuthority(ctx context.Context, a *disbursement.DeviationAuthority) error {
	model := models.DeviationAuthorityModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAuthorityWithLock saves with optimistic locking (version check)
func (r *GormDeviationRepository) SaveAuthorityWithLock(ctx context.Context, a *disbursement.DeviationAuthority) error {
	currentVersion := a.Version
	a.Version++

	model := models.DeviationAuthorityModelFromDomain(a)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", a.ID, currentVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		a.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		a.Version = currentVersion
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The deviation authority has been modified by another user")
	}
	return nil
}

// FindDeviationsByBooking finds all deviations applied to a booking
func (r *GormDeviationRepository) FindDeviationsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*disbursement.ManagerDeviation, error) {
	var deviationModels []models.ManagerDeviationModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("applied_at ASC").
		Find(&deviationModels).Error; err != nil {
		return nil, err
	}
	return toDeviations(deviationModels), nil
}

// FindDeviationsByManager finds deviations applied by a manager, newest first
func (r *GormDeviationRepository) FindDeviationsByManager(ctx context.Context, managerID uuid.UUID, filter shared.Filter) ([]*disbursement.ManagerDeviation, error) {
	var deviationModels []models.ManagerDeviationModel
	if err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("applied_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&deviationModels).Error; err != nil {
		return nil, err
	}
	return toDeviations(deviationModels), nil
}

// SaveDeviation creates a manager deviation record
func (r *GormDeviationRepository) SaveDeviation(ctx context.Context, d *disbursement.ManagerDeviation) error {
	model := models.ManagerDeviationModelFromDomain(d)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDeviations(deviationModels []models.ManagerDeviationModel) []*disbursement.ManagerDeviation {
	deviations := make([]*disbursement.ManagerDeviation, len(deviationModels))
	for i, model := range deviationModels {
		deviations[i] = model.ToDomain()
	}
	return deviations
}

var (
	_ disbursement.Repository          = (*GormDisbursementRepository)(nil)
	_ disbursement.DeviationRepository = (*GormDeviationRepository)(nil)
)
