package http

import (
	"context"
	"io"

	"adarecon/internal/exporter"
	"adarecon/internal/services"
	"adarecon/pkg/contracts/domain"
)

// ReconciliationServiceInterface defines the pipeline operations used by the
// HTTP handlers.
type ReconciliationServiceInterface interface {
	LoadReader(ctx context.Context, source string, r io.Reader) (*services.Analysis, error)
	ApplyOverrides(ctx context.Context, a *services.Analysis, overrides map[domain.ProgramCode]domain.Override) error
	Gate(a *services.Analysis, allowPartial bool) error
	DashboardRows(ctx context.Context, a *services.Analysis, meta domain.RunMeta) []exporter.DashboardRow
	AuditStream(ctx context.Context, a *services.Analysis, r io.Reader, w io.Writer) (*services.AuditResult, error)
}

// Ensure the concrete service satisfies the handler contract.
var _ ReconciliationServiceInterface = (*services.ReconciliationService)(nil)
