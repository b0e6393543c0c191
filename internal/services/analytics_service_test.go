package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handicapper/internal/config"
	"handicapper/internal/models"
	"handicapper/pkg/logger"
	"handicapper/pkg/metrics"
)

func newAnalyticsConfig() *config.AnalyticsConfig {
	return &config.AnalyticsConfig{
		Enabled:      true,
		WriteTimeout: time.Second,
		CounterTTL:   time.Hour,
	}
}

func TestAnalyticsService_Record_StoresAndCounts(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	repo := &mockAnalyticsRepo{}
	day := time.Date(2024, 5, 6, 15, 0, 0, 0, time.UTC)

	svc := NewAnalyticsService(repo, c, newAnalyticsConfig(), logger.NewNop())
	svc.(*analyticsService).now = func() time.Time { return day }

	repo.On("Create", ctx, mock.MatchedBy(func(e *models.AnalyticsEvent) bool {
		return e.Name == models.EventSearch && e.UserID == "u1" && e.Params != nil
	})).Return(nil).Twice()

	before := testutil.ToFloat64(metrics.AnalyticsEvents.WithLabelValues(models.EventSearch, metrics.ResultSuccess))

	require.NoError(t, svc.Record(ctx, models.EventSearch, "u1", nil))
	require.NoError(t, svc.Record(ctx, models.EventSearch, "u1", map[string]interface{}{"search_term": "nba"}))

	n, err := svc.GetEventCount(ctx, models.EventSearch, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.True(t, mr.TTL("test:analytics:search:2024-05-06") > 0)
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.AnalyticsEvents.WithLabelValues(models.EventSearch, metrics.ResultSuccess)))
	repo.AssertExpectations(t)
}

func TestAnalyticsService_Record_StoreFailure(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	repo := &mockAnalyticsRepo{}
	repo.On("Create", ctx, mock.Anything).Return(errStore)

	svc := NewAnalyticsService(repo, c, newAnalyticsConfig(), logger.NewNop())

	err := svc.Record(ctx, models.EventLogin, "u1", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, mr.Keys())
}

func TestAnalyticsService_LogEvent_SurvivesCallerCancel(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	done := make(chan *models.AnalyticsEvent, 1)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.AnalyticsEvent")).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			if ctx.Err() == nil {
				done <- args.Get(1).(*models.AnalyticsEvent)
			}
		}).
		Return(nil)

	svc := NewAnalyticsService(repo, nil, newAnalyticsConfig(), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	svc.LogLeaveReview(ctx, "u1", "h1", 4, "Sharp lines, héllo")
	cancel()

	select {
	case event := <-done:
		assert.Equal(t, models.EventLeaveReview, event.Name)
		assert.Equal(t, 4, event.Params["rating"])
		assert.Equal(t, true, event.Params["has_comment"])
		assert.Equal(t, 18, event.Params["comment_length"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not recorded")
	}
}

func TestAnalyticsService_LogEvent_Disabled(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	cfg := newAnalyticsConfig()
	cfg.Enabled = false

	svc := NewAnalyticsService(repo, nil, cfg, logger.NewNop())
	svc.LogSignUp(context.Background(), "u1", "google")

	time.Sleep(50 * time.Millisecond)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnalyticsService_GetEventCount_FallsBackToStore(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	repo := &mockAnalyticsRepo{}
	day := time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)
	from := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	repo.On("CountByName", ctx, models.EventPurchase, from, from.Add(24*time.Hour)).Return(int64(7), nil)

	svc := NewAnalyticsService(repo, c, newAnalyticsConfig(), logger.NewNop())

	n, err := svc.GetEventCount(ctx, models.EventPurchase, day)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
