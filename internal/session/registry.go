package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/events"
)

// SourceFactory binds an identity source to a client token.
type SourceFactory func(token string) IdentitySource

// Registry keeps one Resolver per client session and routes identity
// events to it.
type Registry struct {
	newSource SourceFactory
	profiles  ProfileLookup
	orgs      OrganizationLookup
	metrics   Recorder
	logger    *zap.Logger
	idle      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	resolver *Resolver
	token    string
	init     sync.Once
	lastSeen time.Time
}

// RegistryDependencies bundles the registry's collaborators.
type RegistryDependencies struct {
	Sources       SourceFactory
	Profiles      ProfileLookup
	Organizations OrganizationLookup
	Metrics       Recorder
	Logger        *zap.Logger
	IdleTimeout   time.Duration
}

// NewRegistry builds an empty registry.
func NewRegistry(deps RegistryDependencies) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		newSource: deps.Sources,
		profiles:  deps.Profiles,
		orgs:      deps.Organizations,
		metrics:   deps.Metrics,
		logger:    logger,
		idle:      deps.IdleTimeout,
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
}

// Resolver returns the initialized resolver for sessionID, creating it from
// token on first use. Concurrent first requests share one initialization.
func (g *Registry) Resolver(ctx context.Context, sessionID, token string) *Resolver {
	g.mu.Lock()
	e, ok := g.entries[sessionID]
	if !ok {
		e = &entry{resolver: g.newResolver(sessionID, token), token: token}
		g.entries[sessionID] = e
	}
	if e.token != token {
		e.resolver.Rebind(g.newSource(token))
		e.token = token
	}
	e.lastSeen = g.now()
	g.mu.Unlock()

	e.init.Do(func() { e.resolver.Initialize(ctx) })
	return e.resolver
}

// SignOut signs the session out with token and forgets its resolver. A
// session this registry has never served is still signed out through a
// resolver bound to token.
func (g *Registry) SignOut(ctx context.Context, sessionID, token string) string {
	g.mu.Lock()
	e, ok := g.entries[sessionID]
	delete(g.entries, sessionID)
	stale := ok && e.token != token
	g.mu.Unlock()

	if !ok {
		return g.newResolver(sessionID, token).SignOut(ctx)
	}
	if stale {
		e.resolver.Rebind(g.newSource(token))
	}
	return e.resolver.SignOut(ctx)
}

func (g *Registry) newResolver(sessionID, token string) *Resolver {
	return NewResolver(Dependencies{
		Source:        g.newSource(token),
		Profiles:      g.profiles,
		Organizations: g.orgs,
		Metrics:       g.metrics,
		Logger:        g.logger.With(zap.String("session_id", sessionID)),
	})
}

// HandleEvent applies an identity event to the matching resolver. Events for
// sessions this instance has never served are ignored.
func (g *Registry) HandleEvent(ctx context.Context, event events.Event) error {
	g.mu.Lock()
	e, ok := g.entries[event.SessionID]
	if ok && event.Type == events.EventIdentitySignedOut {
		delete(g.entries, event.SessionID)
	}
	g.mu.Unlock()

	if !ok {
		return nil
	}

	switch event.Type {
	case events.EventIdentitySignedOut:
		e.resolver.OnIdentityChange(ctx, nil)
	case events.EventIdentitySignedIn, events.EventIdentityRefreshed:
		e.resolver.OnIdentityChange(ctx, event.Identity)
	}
	return nil
}

// Sweep drops resolvers idle for longer than the idle timeout and returns how
// many were dropped.
func (g *Registry) Sweep() int {
	if g.idle <= 0 {
		return 0
	}
	cutoff := g.now().Add(-g.idle)

	g.mu.Lock()
	defer g.mu.Unlock()
	dropped := 0
	for id, e := range g.entries {
		if e.lastSeen.Before(cutoff) {
			delete(g.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len reports how many sessions are tracked.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
