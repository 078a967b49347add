package entitlements

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/calebmoran/tunewave-backend/internal/subscriptions"
	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	"github.com/calebmoran/tunewave-backend/pkg/enums"
)

func newService(t *testing.T) (*Service, subscriptions.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	repo := subscriptions.NewRepository(db)
	svc, err := NewService(ServiceParams{Subscriptions: repo})
	require.NoError(t, err)
	return svc, repo
}

func subscriptionRow(userID uuid.UUID, id string, status enums.SubscriptionStatus, created time.Time) *models.Subscription {
	priceID := "price_premium"
	return &models.Subscription{
		ID:                 id,
		UserID:             userID,
		Status:             status,
		PriceID:            &priceID,
		Metadata:           json.RawMessage("{}"),
		Created:            created,
		CurrentPeriodStart: created,
		CurrentPeriodEnd:   created.Add(30 * 24 * time.Hour),
	}
}

func TestSnapshotForNoHistory(t *testing.T) {
	svc, _ := newService(t)

	snapshot, err := svc.SnapshotFor(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, snapshot.Subscribed)
	assert.Nil(t, snapshot.Status)
	assert.Nil(t, snapshot.CurrentPeriodEnd)
}

func TestSnapshotForActiveSubscription(t *testing.T) {
	svc, repo := newService(t)
	userID := uuid.New()
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(context.Background(), subscriptionRow(userID, "sub_1", enums.SubscriptionStatusActive, created)))

	snapshot, err := svc.SnapshotFor(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, snapshot.Subscribed)
	require.NotNil(t, snapshot.Status)
	assert.Equal(t, enums.SubscriptionStatusActive, *snapshot.Status)
	require.NotNil(t, snapshot.CurrentPeriodEnd)
	assert.Equal(t, created.Add(30*24*time.Hour), *snapshot.CurrentPeriodEnd)
}

func TestSnapshotUsesMostRecentSubscription(t *testing.T) {
	svc, repo := newService(t)
	userID := uuid.New()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(context.Background(), subscriptionRow(userID, "sub_old", enums.SubscriptionStatusCanceled, older)))
	require.NoError(t, repo.Upsert(context.Background(), subscriptionRow(userID, "sub_new", enums.SubscriptionStatusTrialing, newer)))

	snapshot, err := svc.SnapshotFor(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, snapshot.Subscribed)
	require.NotNil(t, snapshot.Status)
	assert.Equal(t, enums.SubscriptionStatusTrialing, *snapshot.Status)
}

func TestCanUploadGatesOnStatus(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	blocked := uuid.New()
	require.NoError(t, repo.Upsert(ctx, subscriptionRow(blocked, "sub_pd", enums.SubscriptionStatusPastDue, time.Now().UTC())))
	ok, err := svc.CanUpload(ctx, blocked)
	require.NoError(t, err)
	assert.False(t, ok)

	allowed := uuid.New()
	require.NoError(t, repo.Upsert(ctx, subscriptionRow(allowed, "sub_ok", enums.SubscriptionStatusActive, time.Now().UTC())))
	ok, err = svc.CanUpload(ctx, allowed)
	require.NoError(t, err)
	assert.True(t, ok)
}
