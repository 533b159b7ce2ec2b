package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TechScreener/internal/domain/models"
	drepo "TechScreener/internal/domain/repository"
	"TechScreener/internal/service/export"
	applogger "TechScreener/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrUnknownProfile = errors.New("unknown screener profile")
	ErrScanInProgress = errors.New("a scan is already running")
	ErrNoMatch        = errors.New("no stocks matched the criteria")
	ErrProvider       = errors.New("provider call failed")
)

// User-facing messages.
const (
	MsgRejected   = "TradingView rejected the request. Reduce filters."
	MsgUnexpected = "Unexpected error: %v"
	MsgNoMatch    = "No stocks matched the criteria."
)

// scanLockKey is shared by every scan: only one may run at a time.
const scanLockKey = "scan"

// NoticeKind classifies why a scan shows no rows.
type NoticeKind string

const (
	NoticeRejected   NoticeKind = "rejected"
	NoticeUnexpected NoticeKind = "unexpected"
	NoticeNoMatch    NoticeKind = "no_match"
)

// Notice is the message shown instead of a table.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	err     error
}

// Err returns the provider error behind a rejected/unexpected notice.
func (n *Notice) Err() error { return n.err }

// ScanResult is everything one scan produced.
type ScanResult struct {
	ID           string              `json:"scan_id"`
	Profile      string              `json:"profile"`
	Query        models.Query        `json:"query"`
	Presentation models.Presentation `json:"result"`
	Notice       *Notice             `json:"notice,omitempty"`
	Duration     time.Duration       `json:"-"`
}

// Count returns the number of presented rows.
func (r *ScanResult) Count() int { return len(r.Presentation.Rows) }

// Outcome is a low-cardinality label for metrics and logs.
func (r *ScanResult) Outcome() string {
	if r.Notice == nil {
		return "ok"
	}
	return string(r.Notice.Kind)
}

// Export is a downloadable workbook.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}

// Screener runs one scan at a time: translate, call the provider, present.
type Screener struct {
	provider drepo.ScreenerProvider
	locker   drepo.ScanLocker
	metrics  drepo.Metrics
	logger   *applogger.Logger
	lockTTL  time.Duration
}

func NewScreener(provider drepo.ScreenerProvider, locker drepo.ScanLocker, metrics drepo.Metrics, logger *applogger.Logger, lockTTL time.Duration) *Screener {
	if logger == nil {
		logger = applogger.Nop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Screener{provider: provider, locker: locker, metrics: metrics, logger: logger, lockTTL: lockTTL}
}

// Preview returns the query a scan would send without calling the provider.
func (s *Screener) Preview(profileName string, f models.Filter) (models.Query, error) {
	p, ok := models.LookupProfile(profileName)
	if !ok {
		return models.Query{}, fmt.Errorf("%w: %q", ErrUnknownProfile, profileName)
	}
	return TranslateQuery(p, f), nil
}

// Scan runs a single scan. Provider failures do not return an error: they
// yield an empty presentation with a rejected/unexpected notice. Errors are
// reserved for an unknown profile or an overlapping scan.
func (s *Screener) Scan(ctx context.Context, profileName string, f models.Filter) (*ScanResult, error) {
	p, ok := models.LookupProfile(profileName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profileName)
	}

	token, acquired, err := s.locker.TryLock(ctx, scanLockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !acquired {
		s.metrics.RecordScan(p.Name, "busy")
		return nil, ErrScanInProgress
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), scanLockKey, token); err != nil {
			s.logger.Warn("scan unlock failed", applogger.Error(err))
		}
	}()

	q := TranslateQuery(p, f)
	res := &ScanResult{ID: uuid.NewString(), Profile: p.Name, Query: q}
	s.metrics.RecordClauses(p.Name, len(q.Predicates))
	s.logger.Info("scan started",
		applogger.String("scan_id", res.ID),
		applogger.String("profile", p.Name),
		applogger.Int("clauses", len(q.Predicates)),
		applogger.Int("limit", q.Limit),
		applogger.String("preset", string(q.Preset)),
	)

	start := time.Now()
	rows, err := s.provider.Scan(ctx, q)
	res.Duration = time.Since(start)
	s.metrics.RecordLatency("provider_scan", res.Duration.Seconds())

	if err != nil {
		res.Notice = classify(err)
		rows = nil
		s.logger.Error("scan failed",
			applogger.String("scan_id", res.ID),
			applogger.String("kind", string(res.Notice.Kind)),
			applogger.Error(err),
		)
	}

	res.Presentation = Present(p, rows)
	if res.Presentation.NoMatch && res.Notice == nil {
		res.Notice = &Notice{Kind: NoticeNoMatch, Message: MsgNoMatch}
	}

	s.metrics.RecordScan(p.Name, res.Outcome())
	s.metrics.RecordRows(p.Name, res.Count())
	s.logger.Info("scan finished",
		applogger.String("scan_id", res.ID),
		applogger.String("outcome", res.Outcome()),
		applogger.Int("rows", res.Count()),
		applogger.Duration("duration_ms", res.Duration),
	)
	return res, nil
}

// Export runs a scan and renders it as a workbook. Only non-empty results are
// exported: otherwise the error wraps ErrNoMatch, ErrRequestRejected or
// ErrProvider.
func (s *Screener) Export(ctx context.Context, profileName string, f models.Filter) (*ScanResult, *Export, error) {
	res, err := s.Scan(ctx, profileName, f)
	if err != nil {
		return nil, nil, err
	}
	if res.Notice != nil {
		switch res.Notice.Kind {
		case NoticeRejected:
			return res, nil, fmt.Errorf("%s: %w", res.Notice.Message, drepo.ErrRequestRejected)
		case NoticeUnexpected:
			return res, nil, fmt.Errorf("%w: %v", ErrProvider, res.Notice.Err())
		default:
			return res, nil, ErrNoMatch
		}
	}

	p, _ := models.LookupProfile(res.Profile)
	out, err := ExportPresentation(p, res.Presentation)
	if err != nil {
		return res, nil, err
	}
	s.logger.Info("scan exported",
		applogger.String("scan_id", res.ID),
		applogger.String("file", out.FileName),
		applogger.Int("bytes", len(out.Data)),
	)
	return res, out, nil
}

// ExportPresentation serializes a non-empty presentation with the profile's
// sheet and file names.
func ExportPresentation(p models.Profile, pres models.Presentation) (*Export, error) {
	if pres.NoMatch {
		return nil, ErrNoMatch
	}
	data, err := export.Workbook(p.SheetName, pres)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", p.Name, err)
	}
	return &Export{
		FileName:    p.FileName,
		ContentType: models.XLSXContentType,
		Data:        data,
		Rows:        len(pres.Rows),
	}, nil
}

func classify(err error) *Notice {
	if errors.Is(err, drepo.ErrRequestRejected) {
		return &Notice{Kind: NoticeRejected, Message: MsgRejected, err: err}
	}
	return &Notice{Kind: NoticeUnexpected, Message: fmt.Sprintf(MsgUnexpected, err), err: err}
}

type nopMetrics struct{}

func (nopMetrics) RecordScan(string, string)     {}
func (nopMetrics) RecordRows(string, int)        {}
func (nopMetrics) RecordClauses(string, int)     {}
func (nopMetrics) RecordLatency(string, float64) {}
