package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/propcrm/crm-service/internal/auth"
	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/events"
)

func validOrg() OrganizationForm {
	return OrganizationForm{
		Name:  "ABC Realty",
		Type:  "Agent",
		Email: "asha@example.com",
		Phone: "9876543210",
	}
}

func validAccount() AccountForm {
	return AccountForm{FirstName: "Asha", LastName: "Rao", Password: "secret1", ConfirmPassword: "secret1"}
}

func TestValidateOrganization(t *testing.T) {
	assert.NoError(t, ValidateOrganization(validOrg()))

	cases := map[string]struct {
		mutate func(*OrganizationForm)
		field  string
	}{
		"missing name":      {func(f *OrganizationForm) { f.Name = " " }, "organization_name"},
		"missing type":      {func(f *OrganizationForm) { f.Type = "" }, "organization_type"},
		"unknown type":      {func(f *OrganizationForm) { f.Type = "Broker" }, "organization_type"},
		"missing email":     {func(f *OrganizationForm) { f.Email = "" }, "email"},
		"malformed email":   {func(f *OrganizationForm) { f.Email = "asha@example" }, "email"},
		"email with spaces": {func(f *OrganizationForm) { f.Email = "asha rao@example.com" }, "email"},
		"missing phone":     {func(f *OrganizationForm) { f.Phone = "" }, "phone"},
		"eleven digits":     {func(f *OrganizationForm) { f.Phone = "98765432101" }, "phone"},
		"nine digits":       {func(f *OrganizationForm) { f.Phone = "987654321" }, "phone"},
		"formatted phone":   {func(f *OrganizationForm) { f.Phone = "98765-43210" }, "phone"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			form := validOrg()
			tc.mutate(&form)
			err := ValidateOrganization(form)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateAccount(t *testing.T) {
	assert.NoError(t, ValidateAccount(validAccount()))

	cases := map[string]struct {
		form    AccountForm
		message string
	}{
		"missing last name": {AccountForm{FirstName: "Asha", Password: "secret1", ConfirmPassword: "secret1"}, "Please fill all required fields"},
		"mismatch":          {AccountForm{FirstName: "Asha", LastName: "Rao", Password: "secret1", ConfirmPassword: "secret2"}, "Passwords do not match"},
		"too short":         {AccountForm{FirstName: "Asha", LastName: "Rao", Password: "abc12", ConfirmPassword: "abc12"}, "Password must be at least 6 characters"},
		"short multibyte":   {AccountForm{FirstName: "Asha", LastName: "Rao", Password: "ééé", ConfirmPassword: "ééé"}, "Password must be at least 6 characters"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.EqualError(t, ValidateAccount(tc.form), tc.message)
		})
	}
}

type recordingDispatcher struct {
	events.Dispatcher
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, e events.Event) error {
	d.published = append(d.published, e)
	return d.Dispatcher.Publish(ctx, e)
}

func newSignupFixture(t *testing.T) (*SignupService, pgxmock.PgxPoolIface, *recordingDispatcher) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	dispatcher := &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
	provider := auth.NewProvider(auth.ProviderDependencies{
		Tokens:     auth.NewTokenManager("test-secret", time.Hour),
		Dispatcher: dispatcher,
		BcryptCost: bcrypt.MinCost,
	})
	svc := NewSignupService(SignupDependencies{DB: mock, Provider: provider, TrialDays: 14})
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC) }
	return svc, mock, dispatcher
}

var (
	identityColumns = []string{"identity_id", "email", "password_hash", "created_at"}
	orgColumns      = []string{"organization_id", "organization_name", "organization_type", "logo_url", "brand_color", "subscription_status"}
	profileColumns  = []string{"user_id", "organization_id", "first_name", "last_name", "email", "role", "profile_photo"}
)

func TestRegister_CommitsAndIssuesSession(t *testing.T) {
	svc, mock, dispatcher := newSignupFixture(t)
	form := validOrg()
	form.City = "Pune"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO auth_identities")).
		WithArgs("asha@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(identityColumns).AddRow("auth-1", "asha@example.com", "hash", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO organizations")).
		WithArgs("ABC Realty", domain.OrganizationTypeAgent, "asha@example.com", "9876543210", "ABC Realty",
			pgxmock.AnyArg(), (*string)(nil), domain.TierBasic, domain.SubscriptionTrial,
			time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows(orgColumns).
			AddRow("org-1", "ABC Realty", domain.OrganizationTypeAgent, nil, "#4F46E5", domain.SubscriptionTrial))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("org-1", "auth-1", "Asha", "Rao", "asha@example.com", "9876543210", domain.RoleAdmin, true).
		WillReturnRows(pgxmock.NewRows(profileColumns).
			AddRow("user-1", "org-1", "Asha", "Rao", "asha@example.com", domain.RoleAdmin, nil))
	mock.ExpectCommit()

	result, err := svc.Register(context.Background(), form, validAccount())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "auth-1", result.Identity.ID)
	assert.Equal(t, "org-1", result.Organization.ID)
	assert.Equal(t, domain.RoleAdmin, result.Profile.Role)
	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventIdentitySignedIn, dispatcher.published[0].Type)
}

func TestValidateAccount_CountsCharacters(t *testing.T) {
	assert.NoError(t, ValidateAccount(AccountForm{FirstName: "Asha", LastName: "Rao", Password: "éééééé", ConfirmPassword: "éééééé"}))
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, mock, _ := newSignupFixture(t)
	form := validOrg()
	form.Email = "Asha@Example.COM"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO auth_identities")).
		WithArgs("asha@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(identityColumns).AddRow("auth-1", "asha@example.com", "hash", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO organizations")).
		WithArgs("ABC Realty", domain.OrganizationTypeAgent, "asha@example.com", "9876543210", "ABC Realty",
			pgxmock.AnyArg(), pgxmock.AnyArg(), domain.TierBasic, domain.SubscriptionTrial, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(orgColumns).
			AddRow("org-1", "ABC Realty", domain.OrganizationTypeAgent, nil, "#4F46E5", domain.SubscriptionTrial))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("org-1", "auth-1", "Asha", "Rao", "asha@example.com", "9876543210", domain.RoleAdmin, true).
		WillReturnRows(pgxmock.NewRows(profileColumns).
			AddRow("user-1", "org-1", "Asha", "Rao", "asha@example.com", domain.RoleAdmin, nil))
	mock.ExpectCommit()

	_, err := svc.Register(context.Background(), form, validAccount())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_RollsBackOnProfileFailure(t *testing.T) {
	svc, mock, dispatcher := newSignupFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO auth_identities")).
		WithArgs("asha@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(identityColumns).AddRow("auth-1", "asha@example.com", "hash", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO organizations")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(orgColumns).
			AddRow("org-1", "ABC Realty", domain.OrganizationTypeAgent, nil, "#4F46E5", domain.SubscriptionTrial))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("permission denied for table users"))
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), validOrg(), validAccount())
	assert.ErrorIs(t, err, domain.ErrSignupTransaction)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, dispatcher.published, "no session after a rollback")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mock, _ := newSignupFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO auth_identities")).
		WithArgs("asha@example.com", pgxmock.AnyArg()).
		WillReturnError(domain.ErrEmailTaken)
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), validOrg(), validAccount())
	assert.ErrorIs(t, err, domain.ErrSignupTransaction)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_ValidationBeforeAnyIO(t *testing.T) {
	svc, mock, _ := newSignupFixture(t)
	form := validOrg()
	form.Phone = "98765432101"

	_, err := svc.Register(context.Background(), form, validAccount())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_LogsIdentityEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	audit := NewAuditService(dispatcher, zap.New(core))
	audit.RegisterHandlers()
	audit.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventIdentitySignedIn,
		SessionID: "sess-1",
		Identity:  &domain.Identity{ID: "auth-1"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventIdentityRefreshed, SessionID: "sess-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventIdentitySignedOut, SessionID: "sess-1"}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "IdentitySignedIn", entries[0].Message)
	assert.Equal(t, "auth-1", entries[0].ContextMap()["identity_id"])
	assert.Equal(t, "IdentitySignedOut", entries[1].Message)

	audit.Close()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventIdentitySignedOut}))
	assert.Len(t, logs.All(), 2)
}
