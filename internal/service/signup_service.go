package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/repository"
)

// IdentityProvider is the part of the identity provider signup needs.
type IdentityProvider interface {
	SignUp(ctx context.Context, identities repository.IdentityRepository, email, password string) (*domain.Credential, error)
	IssueSession(ctx context.Context, cred *domain.Credential) (string, domain.Identity, error)
}

// SignupResult is what a completed signup hands back to the client.
type SignupResult struct {
	Token        string
	Identity     domain.Identity
	Organization *domain.Organization
	Profile      *domain.Profile
}

// SignupService creates an organization together with its first admin.
type SignupService struct {
	db        repository.DB
	provider  IdentityProvider
	trialDays int
	logger    *zap.Logger
	now       func() time.Time
}

// SignupDependencies bundles the signup service's collaborators.
type SignupDependencies struct {
	DB        repository.DB
	Provider  IdentityProvider
	TrialDays int
	Logger    *zap.Logger
}

// NewSignupService builds the service.
func NewSignupService(deps SignupDependencies) *SignupService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	trialDays := deps.TrialDays
	if trialDays <= 0 {
		trialDays = 14
	}
	return &SignupService{
		db:        deps.DB,
		provider:  deps.Provider,
		trialDays: trialDays,
		logger:    logger,
		now:       time.Now,
	}
}

// Register validates both steps and writes credentials, organization and admin
// profile in one transaction. A session is issued only after commit.
func (s *SignupService) Register(ctx context.Context, org OrganizationForm, account AccountForm) (*SignupResult, error) {
	if err := ValidateOrganization(org); err != nil {
		return nil, err
	}
	if err := ValidateAccount(account); err != nil {
		return nil, err
	}

	var (
		cred    *domain.Credential
		created *domain.Organization
		profile *domain.Profile
	)
	err := repository.InTx(ctx, s.db, func(store *repository.Store) error {
		var err error
		cred, err = s.provider.SignUp(ctx, store.Identities, org.Email, account.Password)
		if err != nil {
			return fmt.Errorf("create identity: %w", err)
		}

		created, err = store.Organizations.Create(ctx, s.newOrganization(org))
		if err != nil {
			return fmt.Errorf("create organization: %w", err)
		}

		profile, err = store.Profiles.Create(ctx, domain.NewProfile{
			OrganizationID: created.ID,
			AuthUserID:     cred.IdentityID,
			FirstName:      strings.TrimSpace(account.FirstName),
			LastName:       strings.TrimSpace(account.LastName),
			Email:          cred.Email,
			Phone:          org.Phone,
			Role:           domain.RoleAdmin,
			IsActive:       true,
		})
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("signup rolled back", zap.String("email", org.Email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrSignupTransaction, err)
	}

	token, identity, err := s.provider.IssueSession(ctx, cred)
	if err != nil {
		return nil, err
	}

	s.logger.Info("organization registered",
		zap.String("organization_id", created.ID),
		zap.String("organization_type", string(created.Type)),
		zap.String("user_id", profile.UserID))
	return &SignupResult{Token: token, Identity: identity, Organization: created, Profile: profile}, nil
}

func (s *SignupService) newOrganization(f OrganizationForm) domain.NewOrganization {
	name := strings.TrimSpace(f.Name)
	businessName := strings.TrimSpace(f.BusinessName)
	if businessName == "" {
		businessName = name
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	return domain.NewOrganization{
		Name:               name,
		Type:               domain.OrganizationType(f.Type),
		Email:              domain.NormalizeEmail(f.Email),
		Phone:              f.Phone,
		BusinessName:       businessName,
		City:               optional(f.City),
		State:              optional(f.State),
		SubscriptionTier:   domain.TierBasic,
		SubscriptionStatus: domain.SubscriptionTrial,
		TrialEndsAt:        today.AddDate(0, 0, s.trialDays),
	}
}
