package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRepositoryImpl implements LinkRepository
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db)}
}

func (r *LinkRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.ShortCode != nil {
		db = db.Where("short_code = ?", *f.ShortCode)
	}
	if f.CustomerID != nil {
		db = db.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Topic != nil {
		db = db.Where("topic = ?", string(*f.Topic))
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Link
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkRepositoryImpl) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *LinkRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Link, error) {
	db := r.getDB(ctx)
	var row models.Link
	err := db.Where("short_code = ? OR custom_alias = ?", code, code).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find link by code %q: %w", code, err)
	}
	return &row, nil
}

func (r *LinkRepositoryImpl) CodeInUse(ctx context.Context, code string) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Link{}).
		Where("short_code = ? OR custom_alias = ?", code, code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check code %q: %w", code, err)
	}
	return count > 0, nil
}

// ResolveAndTouch performs the mutating read of the redirect path as a single
// UPDATE so concurrent resolutions of the same code never lose an increment.
func (r *LinkRepositoryImpl) ResolveAndTouch(ctx context.Context, code string) (*models.Link, error) {
	db := r.getDB(ctx)
	var row models.Link
	res := db.Model(&row).
		Clauses(clause.Returning{}).
		Where("short_code = ? OR custom_alias = ?", code, code).
		Updates(map[string]any{
			"clicks":           gorm.Expr("clicks + 1"),
			"last_accessed_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to resolve link by code %q: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *LinkRepositoryImpl) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Link, error) {
	return r.ByFilter(ctx, models.LinkFilter{CustomerID: &customerID}, "created_at DESC", 0, 0)
}

func (r *LinkRepositoryImpl) ListByCustomerAndTopic(ctx context.Context, customerID uint, topic models.Topic) ([]*models.Link, error) {
	return r.ByFilter(ctx, models.LinkFilter{CustomerID: &customerID, Topic: &topic}, "created_at DESC", 0, 0)
}
