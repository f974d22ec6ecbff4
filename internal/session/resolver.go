// Package session resolves an authenticated identity to the acting profile and
// its organization, and keeps that triple in step with identity changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/domain"
)

// LoginPath is where callers send a client whose session has ended.
const LoginPath = "/login"

// IdentitySource is the identity provider as seen by one client session.
type IdentitySource interface {
	Current(ctx context.Context) (*domain.Identity, error)
	SignOut(ctx context.Context) error
}

// ProfileLookup finds the profile linked to an identity.
type ProfileLookup interface {
	GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error)
}

// OrganizationLookup finds an organization by id.
type OrganizationLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// Recorder receives resolution outcomes.
type Recorder interface {
	RecordResolution(outcome string)
}

// State is an immutable snapshot of the resolver.
type State struct {
	Identity     *domain.Identity
	Profile      *domain.Profile
	Organization *domain.Organization
	Loading      bool
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Ready reports whether the dashboard can be shown.
func (s State) Ready() bool {
	return !s.Loading && s.Identity != nil && s.Profile != nil && s.Organization != nil
}

// Observer is notified with every published state.
type Observer func(State)

// Subscription detaches an observer.
type Subscription interface {
	Unsubscribe()
}

// Resolver owns the (identity, profile, organization) triple for one session.
// Every change replaces the whole State and notifies observers afterwards;
// observers never see a half-applied update.
type Resolver struct {
	source   IdentitySource
	profiles ProfileLookup
	orgs     OrganizationLookup
	metrics  Recorder
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	observers  map[int]Observer
	nextObsID  int
}

// Dependencies bundles the resolver's collaborators.
type Dependencies struct {
	Source        IdentitySource
	Profiles      ProfileLookup
	Organizations OrganizationLookup
	Metrics       Recorder
	Logger        *zap.Logger
}

// NewResolver builds a resolver in the loading state.
func NewResolver(deps Dependencies) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source:    deps.Source,
		profiles:  deps.Profiles,
		orgs:      deps.Organizations,
		metrics:   deps.Metrics,
		logger:    logger,
		state:     State{Loading: true},
		observers: make(map[int]Observer),
	}
}

// State returns the current snapshot.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn for future state changes.
func (r *Resolver) Subscribe(fn Observer) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextObsID++
	id := r.nextObsID
	r.observers[id] = fn
	return &observerSub{r: r, id: id}
}

type observerSub struct {
	r    *Resolver
	id   int
	once sync.Once
}

func (s *observerSub) Unsubscribe() {
	s.once.Do(func() {
		s.r.mu.Lock()
		delete(s.r.observers, s.id)
		s.r.mu.Unlock()
	})
}

// Initialize acquires the current identity and resolves it. Loading is false
// once Initialize returns, whatever failed along the way.
func (r *Resolver) Initialize(ctx context.Context) (result State) {
	gen := r.begin()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("session initialization panicked", zap.Any("panic", p))
			result = State{}
		}
		result.Loading = false
		r.commit(gen, result)
	}()

	identity, err := r.currentSource().Current(ctx)
	if err != nil {
		r.logger.Warn("identity lookup failed; treating session as anonymous", zap.Error(err))
		r.record("no_identity")
		return State{}
	}
	if identity == nil {
		r.record("no_identity")
		return State{}
	}
	return r.resolve(ctx, identity)
}

// OnIdentityChange applies an identity change from the provider. A nil
// identity clears the profile and organization without any lookup.
func (r *Resolver) OnIdentityChange(ctx context.Context, identity *domain.Identity) State {
	gen := r.begin()
	if identity == nil {
		next := State{}
		r.commit(gen, next)
		return next
	}
	next := r.resolve(ctx, identity)
	r.commit(gen, next)
	return next
}

// Refresh re-resolves the current identity. Without an identity it does nothing.
func (r *Resolver) Refresh(ctx context.Context) State {
	current := r.State()
	if current.Identity == nil {
		return current
	}
	gen := r.begin()
	next := r.resolve(ctx, current.Identity)
	r.commit(gen, next)
	return next
}

// SignOut invalidates the session with the provider and clears local state
// even when invalidation fails. It returns where the client should go next.
func (r *Resolver) SignOut(ctx context.Context) string {
	if err := r.currentSource().SignOut(ctx); err != nil {
		r.logger.Warn("remote sign-out failed; clearing local session anyway", zap.Error(err))
	}
	r.commit(r.begin(), State{})
	return LoginPath
}

// Rebind points the resolver at source for later identity reads and
// sign-out. Clients swap tokens on refresh while keeping the session.
func (r *Resolver) Rebind(source IdentitySource) {
	r.mu.Lock()
	r.source = source
	r.mu.Unlock()
}

func (r *Resolver) currentSource() IdentitySource {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

// resolve looks up the profile, then the organization it references. Any
// failure degrades to an identity with no profile and no organization.
func (r *Resolver) resolve(ctx context.Context, identity *domain.Identity) State {
	next := State{Identity: identity}

	profile, err := r.profiles.GetByAuthUserID(ctx, identity.ID)
	if err != nil {
		r.logLookup("profile", identity, err)
		return next
	}
	if profile == nil || profile.OrganizationID == "" {
		r.logLookup("profile", identity, fmt.Errorf("%w: missing organization reference", domain.ErrProfileNotFound))
		return next
	}

	org, err := r.orgs.GetByID(ctx, profile.OrganizationID)
	if err != nil {
		r.logLookup("organization", identity, err)
		return next
	}
	if org == nil {
		r.logLookup("organization", identity, domain.ErrOrganizationNotFound)
		return next
	}

	next.Profile = profile
	next.Organization = org
	r.record("resolved")
	return next
}

func (r *Resolver) logLookup(what string, identity *domain.Identity, err error) {
	outcome := "error"
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		outcome = "no_profile"
	case errors.Is(err, domain.ErrOrganizationNotFound):
		outcome = "no_organization"
	}
	r.record(outcome)
	r.logger.Warn("session lookup failed",
		zap.String("lookup", what),
		zap.String("identity_id", identity.ID),
		zap.String("outcome", outcome),
		zap.Error(err))
}

func (r *Resolver) record(outcome string) {
	if r.metrics != nil {
		r.metrics.RecordResolution(outcome)
	}
}

// begin starts a state transition. Any transition started later supersedes it.
func (r *Resolver) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	return r.generation
}

// commit publishes next unless a newer transition has started. Loading is
// always false in a committed state.
func (r *Resolver) commit(gen uint64, next State) bool {
	next.Loading = false

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		return false
	}
	r.state = next
	observers := make([]Observer, 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	return true
}
