package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityFlow maps provider-asserted identities onto customer accounts.
// Credential verification happens upstream at the auth provider; this flow
// only provisions the account and issues the session tokens.
type IdentityFlow interface {
	EnsureAccount(ctx context.Context, req *dto.ProviderProfileRequest, metadata *ClientMetadata) (*dto.SessionResponse, error)
	RefreshSession(ctx context.Context, req *dto.RefreshSessionRequest) (*dto.SessionTokensDTO, error)
}

type IdentityFlowImpl struct {
	customerRepo repository.CustomerRepository
	tokenService services.TokenService
	db           *gorm.DB
}

func NewIdentityFlow(customerRepo repository.CustomerRepository, tokenService services.TokenService, db *gorm.DB) IdentityFlow {
	return &IdentityFlowImpl{
		customerRepo: customerRepo,
		tokenService: tokenService,
		db:           db,
	}
}

func (f *IdentityFlowImpl) EnsureAccount(ctx context.Context, req *dto.ProviderProfileRequest, metadata *ClientMetadata) (*dto.SessionResponse, error) {
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "external_id must not be empty", nil)
	}

	var customer *models.Customer
	var isNew bool

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.customerRepo.ByExternalID(txCtx, externalID)
		if err != nil {
			return err
		}

		now := utils.UTCNow()
		if existing == nil {
			customer = &models.Customer{
				UUID:        uuid.New(),
				ExternalID:  externalID,
				Email:       req.Email,
				DisplayName: req.DisplayName,
				AvatarURL:   req.AvatarURL,
				CreatedAt:   now,
				UpdatedAt:   now,
				LastLoginAt: &now,
			}
			isNew = true
			return f.customerRepo.Save(txCtx, customer)
		}

		customer = existing
		customer.Email = req.Email
		customer.DisplayName = req.DisplayName
		if req.AvatarURL != nil {
			customer.AvatarURL = req.AvatarURL
		}
		customer.LastLoginAt = &now
		return f.customerRepo.UpdateProfile(txCtx, customer, now)
	})
	if err != nil {
		return nil, NewBusinessError("ENSURE_ACCOUNT_FAILED", "Failed to provision customer account", err)
	}

	accessToken, refreshToken, err := f.tokenService.GenerateTokens(customer.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate session tokens", err)
	}

	return &dto.SessionResponse{
		Customer: ToAuthCustomerDTO(customer),
		Tokens: dto.SessionTokensDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		},
		IsNew: isNew,
	}, nil
}

func (f *IdentityFlowImpl) RefreshSession(ctx context.Context, req *dto.RefreshSessionRequest) (*dto.SessionTokensDTO, error) {
	accessToken, refreshToken, err := f.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "Failed to refresh session", err)
	}

	return &dto.SessionTokensDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
	}, nil
}
