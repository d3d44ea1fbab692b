package repository

import (
	"context"

	"airtrail-sync/internal/domain/entity"
)

// FailureReportRepository persists per-record batch failures for
// operator review
type FailureReportRepository interface {
	Save(ctx context.Context, entry *entity.FailureEntry) error
}
