package businessflow

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ShortLinkFlow provides use cases for creating and listing short links
type ShortLinkFlow interface {
	CreateShortLink(ctx context.Context, req *dto.CreateShortLinkRequest, customerID uint, metadata *ClientMetadata) (*dto.CreateShortLinkResponse, error)
	ListCustomerLinks(ctx context.Context, customerID uint) (*dto.ListCustomerLinksResponse, error)
}

type ShortLinkFlowImpl struct {
	linkRepo     repository.LinkRepository
	customerRepo repository.CustomerRepository
	cache        *redis.Client
	baseURL      string
}

func NewShortLinkFlow(
	linkRepo repository.LinkRepository,
	customerRepo repository.CustomerRepository,
	cache *redis.Client,
	baseURL string,
) ShortLinkFlow {
	return &ShortLinkFlowImpl{
		linkRepo:     linkRepo,
		customerRepo: customerRepo,
		cache:        cache,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

func (f *ShortLinkFlowImpl) CreateShortLink(ctx context.Context, req *dto.CreateShortLinkRequest, customerID uint, metadata *ClientMetadata) (*dto.CreateShortLinkResponse, error) {
	longURL := strings.TrimSpace(req.LongURL)
	if err := validateLongURL(longURL); err != nil {
		return nil, err
	}

	topic, err := models.ParseTopic(req.Topic)
	if err != nil {
		return nil, ErrTopicInvalid
	}

	customer, err := f.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "Failed to lookup customer", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	link := &models.Link{
		UUID:       uuid.New(),
		LongURL:    longURL,
		Topic:      topic,
		CustomerID: customerID,
		CreatedAt:  utils.UTCNow(),
	}

	if req.CustomAlias != nil && strings.TrimSpace(*req.CustomAlias) != "" {
		alias := strings.TrimSpace(*req.CustomAlias)
		if err := f.saveWithAlias(ctx, link, alias); err != nil {
			return nil, err
		}
	} else {
		if err := f.saveWithGeneratedCode(ctx, link); err != nil {
			return nil, err
		}
	}

	// A code cached as missing may have just been created
	f.dropMissEntry(ctx, link.ShortCode)

	return &dto.CreateShortLinkResponse{
		ShortURL:  ShortURL(f.baseURL, link.ShortCode),
		ShortCode: link.ShortCode,
		LongURL:   link.LongURL,
		Topic:     string(link.Topic),
		CreatedAt: link.CreatedAt.Format(time.RFC3339),
	}, nil
}

// saveWithAlias stores the alias as both short code and custom alias so the
// unique index on short_code rejects collisions with generated codes too.
func (f *ShortLinkFlowImpl) saveWithAlias(ctx context.Context, link *models.Link, alias string) error {
	inUse, err := f.linkRepo.CodeInUse(ctx, alias)
	if err != nil {
		return NewBusinessError("ALIAS_CHECK_FAILED", "Failed to check custom alias", err)
	}
	if inUse {
		return ErrAliasTaken
	}

	link.ShortCode = alias
	link.CustomAlias = &alias
	if err := f.linkRepo.Save(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAliasTaken
		}
		return NewBusinessError("SHORT_LINK_SAVE_FAILED", "Failed to save short link", err)
	}
	return nil
}

// saveWithGeneratedCode retries on duplicate-key violations so concurrent
// allocations of the same random code cannot both succeed.
func (f *ShortLinkFlowImpl) saveWithGeneratedCode(ctx context.Context, link *models.Link) error {
	for attempt := 0; attempt < utils.MaxAllocationAttempts; attempt++ {
		code, err := generateShortCode()
		if err != nil {
			return NewBusinessError("CODE_GENERATION_FAILED", "Failed to generate short code", err)
		}

		link.ShortCode = code
		err = f.linkRepo.Save(ctx, link)
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return NewBusinessError("SHORT_LINK_SAVE_FAILED", "Failed to save short link", err)
	}
	return ErrAllocationExhausted
}

func (f *ShortLinkFlowImpl) ListCustomerLinks(ctx context.Context, customerID uint) (*dto.ListCustomerLinksResponse, error) {
	rows, err := f.linkRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("FETCH_LINKS_FAILED", "Failed to fetch customer links", err)
	}

	links := make([]dto.CustomerLinkDTO, 0, len(rows))
	for _, row := range rows {
		links = append(links, ToCustomerLinkDTO(row, f.baseURL))
	}

	return &dto.ListCustomerLinksResponse{
		Links: links,
		Total: len(links),
	}, nil
}

func (f *ShortLinkFlowImpl) dropMissEntry(ctx context.Context, code string) {
	if f.cache == nil {
		return
	}
	_ = f.cache.Del(ctx, missCacheKey(code)).Err()
}

func validateLongURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func generateShortCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(utils.ShortCodeAlphabet)))
	code := make([]byte, utils.ShortCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = utils.ShortCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
