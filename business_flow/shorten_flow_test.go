package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// collidingLinkRepo reports every save as a unique violation so code
// allocation can never succeed.
type collidingLinkRepo struct {
	saveAttempts int
}

func (r *collidingLinkRepo) ByID(ctx context.Context, id uint) (*models.Link, error) {
	return nil, nil
}

func (r *collidingLinkRepo) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	return nil, nil
}

func (r *collidingLinkRepo) Save(ctx context.Context, link *models.Link) error {
	r.saveAttempts++
	return gorm.ErrDuplicatedKey
}

func (r *collidingLinkRepo) SaveBatch(ctx context.Context, links []*models.Link) error {
	return gorm.ErrDuplicatedKey
}

func (r *collidingLinkRepo) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	return 0, nil
}

func (r *collidingLinkRepo) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	return false, nil
}

func (r *collidingLinkRepo) ByCode(ctx context.Context, code string) (*models.Link, error) {
	return nil, nil
}

func (r *collidingLinkRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *collidingLinkRepo) ResolveAndTouch(ctx context.Context, code string) (*models.Link, error) {
	return nil, nil
}

func (r *collidingLinkRepo) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Link, error) {
	return nil, nil
}

func (r *collidingLinkRepo) ListByCustomerAndTopic(ctx context.Context, customerID uint, topic models.Topic) ([]*models.Link, error) {
	return nil, nil
}

// staticCustomerRepo answers every lookup with the same customer.
type staticCustomerRepo struct {
	customer *models.Customer
}

func (r *staticCustomerRepo) ByID(ctx context.Context, id uint) (*models.Customer, error) {
	return r.customer, nil
}

func (r *staticCustomerRepo) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	return []*models.Customer{r.customer}, nil
}

func (r *staticCustomerRepo) Save(ctx context.Context, customer *models.Customer) error {
	return nil
}

func (r *staticCustomerRepo) SaveBatch(ctx context.Context, customers []*models.Customer) error {
	return nil
}

func (r *staticCustomerRepo) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	return 1, nil
}

func (r *staticCustomerRepo) Exists(ctx context.Context, filter models.CustomerFilter) (bool, error) {
	return true, nil
}

func (r *staticCustomerRepo) ByExternalID(ctx context.Context, externalID string) (*models.Customer, error) {
	return r.customer, nil
}

func (r *staticCustomerRepo) UpdateLastLogin(ctx context.Context, customerID uint, at time.Time) error {
	return nil
}

func (r *staticCustomerRepo) UpdateProfile(ctx context.Context, customer *models.Customer, at time.Time) error {
	return nil
}

func TestCreateShortLink_AllocationExhausted(t *testing.T) {
	now := utils.UTCNow()
	linkRepo := &collidingLinkRepo{}
	customerRepo := &staticCustomerRepo{customer: &models.Customer{
		ID:          1,
		UUID:        uuid.New(),
		ExternalID:  "provider|collisions",
		Email:       "collisions@example.com",
		DisplayName: "Collision Tester",
		CreatedAt:   now,
		UpdatedAt:   now,
	}}

	flow := NewShortLinkFlow(linkRepo, customerRepo, nil, "https://kusanagi.sh")

	_, err := flow.CreateShortLink(context.Background(), &dto.CreateShortLinkRequest{
		LongURL: "https://example.com/some/long/path",
	}, 1, nil)

	require.Error(t, err)
	assert.True(t, IsAllocationExhausted(err))
	assert.Equal(t, utils.MaxAllocationAttempts, linkRepo.saveAttempts)
}
