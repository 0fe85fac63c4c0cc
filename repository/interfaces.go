// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// LinkRepository defines operations for short links
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]

	// ByCode looks a link up by short code or custom alias without touching it
	ByCode(ctx context.Context, code string) (*models.Link, error)

	// CodeInUse reports whether a code collides with any existing short code
	// or custom alias
	CodeInUse(ctx context.Context, code string) (bool, error)

	// ResolveAndTouch atomically increments the click counter, stamps
	// last_accessed_at and returns the updated link; nil when no link matches
	ResolveAndTouch(ctx context.Context, code string) (*models.Link, error)

	// ListByCustomer returns the customer's links, newest first
	ListByCustomer(ctx context.Context, customerID uint) ([]*models.Link, error)

	// ListByCustomerAndTopic returns the customer's links tagged with topic
	ListByCustomerAndTopic(ctx context.Context, customerID uint, topic models.Topic) ([]*models.Link, error)
}

// VisitRepository defines operations for the append-only visit log
type VisitRepository interface {
	Repository[models.Visit, models.VisitFilter]

	// ListSince returns visits for the given links from since onward,
	// newest first
	ListSince(ctx context.Context, linkIDs []uint, since time.Time) ([]*models.Visit, error)
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]

	ByExternalID(ctx context.Context, externalID string) (*models.Customer, error)
	UpdateLastLogin(ctx context.Context, customerID uint, at time.Time) error

	// UpdateProfile persists the provider-asserted profile fields together
	// with the login timestamp
	UpdateProfile(ctx context.Context, customer *models.Customer, at time.Time) error
}
