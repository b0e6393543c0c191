package interfaces

import (
	"context"
	"time"

	"handicapper/internal/models"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) error
	CountByName(ctx context.Context, name string, from, to time.Time) (int64, error)
}
