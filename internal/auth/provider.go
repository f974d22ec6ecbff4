package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/events"
	"github.com/propcrm/crm-service/internal/repository"
)

const revokedKeyPrefix = "propcrm:revoked:"

// Provider is the identity provider: it owns credentials, issues access
// tokens, tracks revoked sessions in Redis and announces identity changes.
type Provider struct {
	identities repository.IdentityRepository
	tokens     *TokenManager
	redis      *redis.Client
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// ProviderDependencies bundles the provider's collaborators.
type ProviderDependencies struct {
	Identities repository.IdentityRepository
	Tokens     *TokenManager
	Redis      *redis.Client
	Dispatcher events.Dispatcher
	BcryptCost int
	Logger     *zap.Logger
}

// NewProvider builds the provider.
func NewProvider(deps ProviderDependencies) *Provider {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		identities: deps.Identities,
		tokens:     deps.Tokens,
		redis:      deps.Redis,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// SignUp stores credentials through identities, which may be bound to a
// caller-owned transaction. No session is issued until IssueSession.
func (p *Provider) SignUp(ctx context.Context, identities repository.IdentityRepository, email, password string) (*domain.Credential, error) {
	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	return identities.Create(ctx, domain.NormalizeEmail(email), hash)
}

// IssueSession starts a new session for cred and announces the sign-in.
func (p *Provider) IssueSession(ctx context.Context, cred *domain.Credential) (string, domain.Identity, error) {
	token, identity, err := p.tokens.GenerateToken(cred.IdentityID, cred.Email, uuid.NewString())
	if err != nil {
		return "", domain.Identity{}, err
	}
	p.announce(ctx, events.EventIdentitySignedIn, identity.SessionID, &identity)
	return token, identity, nil
}

// SignIn verifies credentials and starts a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, domain.Identity, error) {
	cred, err := p.identities.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", domain.Identity{}, err
	}
	if err := ComparePassword(cred.PasswordHash, password); err != nil {
		return "", domain.Identity{}, domain.ErrInvalidCredential
	}
	return p.IssueSession(ctx, cred)
}

// CurrentIdentity returns the identity behind token. An empty token yields no
// identity and no error; malformed, expired or revoked tokens yield an error
// wrapping domain.ErrIdentityResolution.
func (p *Provider) CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	identity, err := p.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityResolution, err)
	}
	revoked, err := p.isRevoked(ctx, identity.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityResolution, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", domain.ErrIdentityResolution)
	}
	return identity, nil
}

// Refresh issues a new token for the same session and announces it.
func (p *Provider) Refresh(ctx context.Context, identity domain.Identity) (string, domain.Identity, error) {
	token, refreshed, err := p.tokens.GenerateToken(identity.ID, identity.Email, identity.SessionID)
	if err != nil {
		return "", domain.Identity{}, err
	}
	p.announce(ctx, events.EventIdentityRefreshed, refreshed.SessionID, &refreshed)
	return token, refreshed, nil
}

// SignOut revokes the session for one full token lifetime, which outlasts any
// token already issued for it, and announces the sign-out. The announcement
// happens even if revocation fails.
func (p *Provider) SignOut(ctx context.Context, identity domain.Identity) error {
	err := p.revoke(ctx, identity)
	p.announce(ctx, events.EventIdentitySignedOut, identity.SessionID, nil)
	return err
}

// OnIdentityChange registers fn for every identity event.
func (p *Provider) OnIdentityChange(fn events.EventHandler) events.Subscription {
	return p.dispatcher.Subscribe(fn)
}

func (p *Provider) revoke(ctx context.Context, identity domain.Identity) error {
	if p.redis == nil {
		return errors.New("redis client not configured")
	}
	return p.redis.Set(ctx, revokedKeyPrefix+identity.SessionID, identity.ID, p.tokens.TTL()).Err()
}

func (p *Provider) isRevoked(ctx context.Context, sessionID string) (bool, error) {
	if p.redis == nil {
		return false, nil
	}
	n, err := p.redis.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Provider) announce(ctx context.Context, typ events.EventType, sessionID string, identity *domain.Identity) {
	if p.dispatcher == nil {
		return
	}
	err := p.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		SessionID: sessionID,
		Identity:  identity,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("identity event not delivered", zap.String("type", string(typ)), zap.Error(err))
	}
}

// Session binds the provider to one client's token.
func (p *Provider) Session(token string) *Session {
	return &Session{provider: p, token: token}
}

// Session is one client's handle on the provider.
type Session struct {
	provider *Provider
	token    string
}

// Current returns the identity behind the bound token.
func (s *Session) Current(ctx context.Context) (*domain.Identity, error) {
	return s.provider.CurrentIdentity(ctx, s.token)
}

// SignOut invalidates the bound session.
func (s *Session) SignOut(ctx context.Context) error {
	identity, err := s.provider.tokens.ParseToken(s.token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityResolution, err)
	}
	return s.provider.SignOut(ctx, *identity)
}
