package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/observability"
	"github.com/propcrm/crm-service/internal/service"
	"github.com/propcrm/crm-service/internal/session"
	apperrors "github.com/propcrm/crm-service/pkg/util/errorutil"
)

const requestIDKey = "requestid"

// RegisterMiddlewares attaches request ids, deadlines, logging and the error
// envelope. The logger runs outside the error envelope so it sees final statuses.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New(requestid.Config{ContextKey: requestIDKey}))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			reqID, _ := c.Locals(requestIDKey).(string)
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", reqID),
					zap.String("route", c.Route().Path),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			domainErr := translateError(err)
			metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
			body := fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}
			if len(domainErr.Details) > 0 {
				body["details"] = domainErr.Details
			}
			if reqID != "" {
				body["request_id"] = reqID
			}
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed", zap.String("request_id", reqID), zap.Error(domainErr))
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(fiber.Map{"error": body})
			err = nil
		}()
		return c.Next()
	}
}

// translateError maps service and identity errors onto the response envelope.
// An ended session always points the client back at the login page.
func translateError(err error) *apperrors.DomainError {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return apperrors.NewDomainError("VALIDATION_FAILED", verr.Message, fiber.StatusBadRequest,
			map[string]any{"field": verr.Field})
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewDomainError("CONFLICT", "email already registered", fiber.StatusConflict, nil)
	case errors.Is(err, domain.ErrInvalidCredential):
		return apperrors.NewDomainError("UNAUTHORIZED", "invalid credentials", fiber.StatusUnauthorized, nil)
	case errors.Is(err, domain.ErrIdentityResolution):
		return apperrors.NewDomainError("UNAUTHORIZED", "session is no longer valid", fiber.StatusUnauthorized,
			map[string]any{"redirect": session.LoginPath})
	case errors.Is(err, domain.ErrInvalidOrganization):
		return apperrors.NewDomainError("VALIDATION_FAILED", err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrSignupTransaction):
		return &apperrors.DomainError{Code: "SIGNUP_FAILED", Message: "signup could not be completed",
			HTTPStatus: fiber.StatusInternalServerError, Err: err}
	}
	return apperrors.ToDomainError(err)
}
