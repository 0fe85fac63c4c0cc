// Package testing provides test utilities and database setup for testing the link shortening service
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCustomer creates a customer with a unique external id and email
func (tf *TestFixtures) CreateTestCustomer() (*models.Customer, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	now := utils.UTCNow()
	customer := &models.Customer{
		UUID:        uuid.New(),
		ExternalID:  fmt.Sprintf("provider|%s", randomDigits),
		Email:       fmt.Sprintf("john.doe.%s@example.com", randomDigits),
		DisplayName: "John Doe",
		LastLoginAt: &now,
	}

	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}

	return customer, nil
}

// CreateTestLink creates a link owned by the given customer with a random short code
func (tf *TestFixtures) CreateTestLink(customerID uint, topic models.Topic) (*models.Link, error) {
	link := &models.Link{
		UUID:       uuid.New(),
		LongURL:    fmt.Sprintf("https://example.com/articles/%d", rand.Intn(1000000)),
		ShortCode:  randomShortCode(),
		Topic:      topic,
		CustomerID: customerID,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link: %w", err)
	}

	return link, nil
}

// CreateTestAliasLink creates a link with a custom alias stored as both code and alias
func (tf *TestFixtures) CreateTestAliasLink(customerID uint, alias string) (*models.Link, error) {
	link := &models.Link{
		UUID:        uuid.New(),
		LongURL:     fmt.Sprintf("https://example.com/articles/%d", rand.Intn(1000000)),
		ShortCode:   alias,
		CustomAlias: &alias,
		CustomerID:  customerID,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test alias link: %w", err)
	}

	return link, nil
}

// CreateTestVisit creates a visit record for the given link with the supplied
// identity inputs and timestamp
func (tf *TestFixtures) CreateTestVisit(linkID uint, ip, userAgent string, at time.Time) (*models.Visit, error) {
	visit := &models.Visit{
		LinkID:      linkID,
		Timestamp:   at.UTC(),
		UserAgent:   userAgent,
		IPAddress:   ip,
		DeviceType:  models.DeviceDesktop,
		Fingerprint: utils.VisitorFingerprint(ip, userAgent),
	}

	if err := tf.DB.DB.Create(visit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test visit: %w", err)
	}

	return visit, nil
}

// CreateTestVisitWithDevice creates a visit record carrying OS and device breakdown fields
func (tf *TestFixtures) CreateTestVisitWithDevice(linkID uint, ip, userAgent, osName, deviceType string, at time.Time) (*models.Visit, error) {
	visit := &models.Visit{
		LinkID:      linkID,
		Timestamp:   at.UTC(),
		UserAgent:   userAgent,
		IPAddress:   ip,
		OS:          utils.ToPtr(osName),
		DeviceType:  deviceType,
		Fingerprint: utils.VisitorFingerprint(ip, userAgent),
	}

	if err := tf.DB.DB.Create(visit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test visit: %w", err)
	}

	return visit, nil
}

func randomShortCode() string {
	b := make([]byte, utils.ShortCodeLength)
	for i := range b {
		b[i] = utils.ShortCodeAlphabet[rand.Intn(len(utils.ShortCodeAlphabet))]
	}
	return string(b)
}
