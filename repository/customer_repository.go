package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// CustomerRepositoryImpl implements CustomerRepository
type CustomerRepositoryImpl struct {
	*BaseRepository[models.Customer, models.CustomerFilter]
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &CustomerRepositoryImpl{BaseRepository: NewBaseRepository[models.Customer, models.CustomerFilter](db)}
}

func (r *CustomerRepositoryImpl) applyFilter(db *gorm.DB, f models.CustomerFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.ExternalID != nil {
		db = db.Where("external_id = ?", *f.ExternalID)
	}
	if f.Email != nil {
		db = db.Where("email = ?", *f.Email)
	}
	return db
}

func (r *CustomerRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Customer{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Customer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CustomerRepositoryImpl) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Customer{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CustomerRepositoryImpl) Exists(ctx context.Context, filter models.CustomerFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *CustomerRepositoryImpl) ByExternalID(ctx context.Context, externalID string) (*models.Customer, error) {
	db := r.getDB(ctx)
	var row models.Customer
	err := db.Where("external_id = ?", externalID).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find customer by external id: %w", err)
	}
	return &row, nil
}

func (r *CustomerRepositoryImpl) UpdateLastLogin(ctx context.Context, customerID uint, at time.Time) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{"last_login_at": at, "updated_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to update last login for customer %d: %w", customerID, err)
	}
	return nil
}

func (r *CustomerRepositoryImpl) UpdateProfile(ctx context.Context, customer *models.Customer, at time.Time) error {
	db := r.getDB(ctx)
	updates := map[string]any{
		"email":         customer.Email,
		"display_name":  customer.DisplayName,
		"last_login_at": at,
		"updated_at":    at,
	}
	if customer.AvatarURL != nil {
		updates["avatar_url"] = *customer.AvatarURL
	}
	err := db.Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update profile for customer %d: %w", customer.ID, err)
	}
	return nil
}
