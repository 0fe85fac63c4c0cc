package repository

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// VisitRepositoryImpl implements VisitRepository
type VisitRepositoryImpl struct {
	*BaseRepository[models.Visit, models.VisitFilter]
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &VisitRepositoryImpl{BaseRepository: NewBaseRepository[models.Visit, models.VisitFilter](db)}
}

func (r *VisitRepositoryImpl) applyFilter(db *gorm.DB, f models.VisitFilter) *gorm.DB {
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if len(f.LinkIDs) > 0 {
		db = db.Where("link_id IN ?", f.LinkIDs)
	}
	if f.Fingerprint != nil {
		db = db.Where("fingerprint = ?", *f.Fingerprint)
	}
	if f.Since != nil {
		db = db.Where("timestamp >= ?", *f.Since)
	}
	if f.Until != nil {
		db = db.Where("timestamp < ?", *f.Until)
	}
	return db
}

func (r *VisitRepositoryImpl) ByFilter(ctx context.Context, filter models.VisitFilter, orderBy string, limit, offset int) ([]*models.Visit, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Visit{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Visit
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *VisitRepositoryImpl) Count(ctx context.Context, filter models.VisitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Visit{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VisitRepositoryImpl) Exists(ctx context.Context, filter models.VisitFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *VisitRepositoryImpl) ListSince(ctx context.Context, linkIDs []uint, since time.Time) ([]*models.Visit, error) {
	if len(linkIDs) == 0 {
		return nil, nil
	}
	return r.ByFilter(ctx, models.VisitFilter{LinkIDs: linkIDs, Since: &since}, "timestamp DESC", 0, 0)
}
