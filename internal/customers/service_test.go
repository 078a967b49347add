package customers

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
)

type fakeStripeClient struct {
	existing    map[string]*stripe.Customer
	created     int
	findErr     error
	createErr   error
	lastCreated *stripe.Customer
}

func (f *fakeStripeClient) FindByEmail(_ context.Context, email string) (*stripe.Customer, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.existing[email], nil
}

func (f *fakeStripeClient) Create(_ context.Context, email string, metadata map[string]string) (*stripe.Customer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	f.lastCreated = &stripe.Customer{ID: "cus_new_" + email, Email: email}
	return f.lastCreated, nil
}

func newTestService(t *testing.T, stripeClient StripeCustomerClient) (*Service, Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{
		Repo:         repo,
		StripeClient: stripeClient,
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, repo
}

func TestCreateOrRetrieveCreatesOnce(t *testing.T) {
	client := &fakeStripeClient{existing: map[string]*stripe.Customer{}}
	svc, repo := newTestService(t, client)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateOrRetrieve(ctx, userID, "listener@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.CreateOrRetrieve(ctx, userID, "listener@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.created)

	mapping, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, mapping)
	assert.Equal(t, first, mapping.StripeCustomerID)
}

func TestCreateOrRetrieveAdoptsExistingRemoteCustomer(t *testing.T) {
	client := &fakeStripeClient{existing: map[string]*stripe.Customer{
		"known@example.com": {ID: "cus_existing", Email: "known@example.com"},
	}}
	svc, _ := newTestService(t, client)

	got, err := svc.CreateOrRetrieve(context.Background(), uuid.New(), "known@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_existing", got)
	assert.Equal(t, 0, client.created)
}

func TestCreateOrRetrieveValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, &fakeStripeClient{})

	_, err := svc.CreateOrRetrieve(context.Background(), uuid.Nil, "a@example.com")
	assert.Error(t, err)

	_, err = svc.CreateOrRetrieve(context.Background(), uuid.New(), "  ")
	assert.Error(t, err)
}

func TestResolveUser(t *testing.T) {
	client := &fakeStripeClient{existing: map[string]*stripe.Customer{}}
	svc, repo := newTestService(t, client)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Create(ctx, &models.Customer{
		UserID:           userID,
		StripeCustomerID: "cus_123",
	}))

	got, err := svc.ResolveUser(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.ResolveUser(ctx, "cus_missing")
	assert.Error(t, err)
}
