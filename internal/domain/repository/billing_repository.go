package repository

import (
	"context"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
)

// BillingRepository defines the interface for the Cloudability reporting API.
type BillingRepository interface {
	// Measures returns the catalogue of dimensions and metrics.
	Measures(ctx context.Context, token string) (entity.Measures, error)
	// Fetch runs a cost report over the trailing window of req.Days days.
	Fetch(ctx context.Context, token string, req entity.ReportRequest) ([]*entity.Record, entity.Window, error)
}
