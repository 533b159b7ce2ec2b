package repository

import (
	"context"
	"errors"
	"time"

	"TechScreener/internal/domain/models"
)

// ErrRequestRejected marks a query the provider declined (over-constrained or
// malformed). Callers test for it with errors.Is.
var ErrRequestRejected = errors.New("provider rejected the request")

// ScreenerProvider executes a query against the remote screening service.
type ScreenerProvider interface {
	Scan(ctx context.Context, q models.Query) (models.ResultSet, error)
}

// ScanLocker guards against overlapping scans. TryLock hands out a token
// unique to that acquisition; Unlock only releases the key while it is still
// held under the same token.
type ScanLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

type Metrics interface {
	RecordScan(profile, outcome string)
	RecordRows(profile string, n int)
	RecordClauses(profile string, n int)
	RecordLatency(op string, seconds float64)
}
