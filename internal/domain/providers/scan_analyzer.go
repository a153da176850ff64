package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// ErrScanUnauthorized is returned when the scan-analysis backend rejects our credentials.
var ErrScanUnauthorized = errors.New("scan analysis unauthorized")

// ScanAnalyzer turns a free-text radiology report into a structured scan result.
type ScanAnalyzer interface {
	Scan(ctx context.Context, report entities.Report) (entities.ScanResult, error)
}
