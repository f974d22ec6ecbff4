package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/events"
)

// AuditService writes an audit log line for every identity event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sub        events.Subscription
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to identity events. Calling it twice is a no-op.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || a.sub != nil {
		return
	}
	a.sub = a.dispatcher.Subscribe(a.handle)
}

// Close detaches the service from the dispatcher.
func (a *AuditService) Close() {
	if a.sub != nil {
		a.sub.Unsubscribe()
		a.sub = nil
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.String("origin", event.Origin),
		zap.Time("at", event.Timestamp),
	}
	if event.Identity != nil {
		fields = append(fields, zap.String("identity_id", event.Identity.ID))
	}

	switch event.Type {
	case events.EventIdentitySignedIn:
		a.logger.Info("IdentitySignedIn", fields...)
	case events.EventIdentityRefreshed:
		a.logger.Debug("IdentityRefreshed", fields...)
	case events.EventIdentitySignedOut:
		a.logger.Info("IdentitySignedOut", fields...)
	default:
		a.logger.Warn("unknown identity event", append(fields, zap.String("type", string(event.Type)))...)
	}
	return nil
}
