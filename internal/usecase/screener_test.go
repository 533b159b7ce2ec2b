package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"TechScreener/internal/domain/models"
	drepo "TechScreener/internal/domain/repository"
	"TechScreener/pkg/lock"
	applogger "TechScreener/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type fakeProvider struct {
	rows  models.ResultSet
	err   error
	calls int
	last  models.Query
	block chan struct{}
}

func (f *fakeProvider) Scan(ctx context.Context, q models.Query) (models.ResultSet, error) {
	f.calls++
	f.last = q
	if f.block != nil {
		<-f.block
	}
	return f.rows, f.err
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	token    string
	issued   int
	released []string
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return "", false, nil
	}
	l.issued++
	l.held = true
	l.token = fmt.Sprintf("tok-%d", l.issued)
	return l.token, true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, _ string, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, token)
	if !l.held || token != l.token {
		return lock.ErrNotHeld
	}
	l.held = false
	return nil
}

type rejected struct{}

func (rejected) Error() string        { return "status 400" }
func (rejected) Is(target error) bool { return target == drepo.ErrRequestRejected }

func newTestScreener(p drepo.ScreenerProvider) (*Screener, *fakeLocker, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := &fakeLocker{}
	return NewScreener(p, l, nil, applogger.NewWithWriter(buf, zerolog.DebugLevel), time.Minute), l, buf
}

func TestScanReturnsPresentation(t *testing.T) {
	p := &fakeProvider{rows: models.ResultSet{
		{models.FieldTicker: "NSE:A", models.FieldADX: 22.0},
		{models.FieldTicker: "NSE:B", models.FieldADX: 40.0},
	}}
	s, l, logs := newTestScreener(p)

	res, err := s.Scan(context.Background(), "technical", models.DefaultFilter())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Notice != nil {
		t.Fatalf("unexpected notice %+v", res.Notice)
	}
	if res.Count() != 2 || res.Presentation.Rows[0][models.FieldTicker] != "NSE:B" {
		t.Fatalf("unexpected rows %v", res.Presentation.Rows)
	}
	if res.ID == "" || res.Outcome() != "ok" {
		t.Fatalf("unexpected id %q / outcome %q", res.ID, res.Outcome())
	}
	if p.calls != 1 || len(p.last.Predicates) != BaseClauseCount+3 {
		t.Fatalf("provider called %d times with %d clauses", p.calls, len(p.last.Predicates))
	}
	if l.held || len(l.released) != 1 || l.released[0] != "tok-1" {
		t.Fatalf("scan must release the lock with its own token, released=%v", l.released)
	}
	if !strings.Contains(logs.String(), res.ID) {
		t.Fatalf("scan logs must carry the scan id")
	}
}

func TestScanProviderErrorsDegrade(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		kind    NoticeKind
		message string
	}{
		{"rejected", rejected{}, NoticeRejected, MsgRejected},
		{"unexpected", errors.New("connection reset"), NoticeUnexpected, "Unexpected error: connection reset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{err: tc.err, rows: models.ResultSet{{models.FieldTicker: "NSE:A"}}}
			s, _, _ := newTestScreener(p)

			res, err := s.Scan(context.Background(), "momentum", models.DefaultFilter())
			if err != nil {
				t.Fatalf("provider errors must not fail the scan: %v", err)
			}
			if res.Notice == nil || res.Notice.Kind != tc.kind {
				t.Fatalf("want %s notice, got %+v", tc.kind, res.Notice)
			}
			if res.Notice.Message != tc.message {
				t.Fatalf("want message %q, got %q", tc.message, res.Notice.Message)
			}
			if res.Count() != 0 || !res.Presentation.NoMatch {
				t.Fatalf("failed scan must present an empty table")
			}
		})
	}
}

func TestScanNoMatch(t *testing.T) {
	s, _, _ := newTestScreener(&fakeProvider{rows: models.ResultSet{}})
	res, err := s.Scan(context.Background(), "technical", models.DefaultFilter())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Notice == nil || res.Notice.Kind != NoticeNoMatch || res.Notice.Message != MsgNoMatch {
		t.Fatalf("want no-match notice, got %+v", res.Notice)
	}
}

func TestScanUnknownProfile(t *testing.T) {
	p := &fakeProvider{}
	s, _, _ := newTestScreener(p)
	if _, err := s.Scan(context.Background(), "fundamental", models.DefaultFilter()); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("want ErrUnknownProfile, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestScanRejectsOverlap(t *testing.T) {
	p := &fakeProvider{block: make(chan struct{}), rows: models.ResultSet{{models.FieldTicker: "NSE:A"}}}
	s, l, _ := newTestScreener(p)

	done := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background(), "technical", models.DefaultFilter())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		l.mu.Lock()
		held := l.held
		l.mu.Unlock()
		if held {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("first scan never took the lock")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Scan(context.Background(), "momentum", models.DefaultFilter()); !errors.Is(err, ErrScanInProgress) {
		t.Fatalf("want ErrScanInProgress, got %v", err)
	}

	close(p.block)
	if err := <-done; err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("want one provider call, got %d", p.calls)
	}
}

func TestExport(t *testing.T) {
	p := &fakeProvider{rows: models.ResultSet{
		{models.FieldTicker: "NSE:A", models.FieldRSI: 50.0, models.FieldMACD: 2.0, models.FieldMACDSignal: 1.0},
		{models.FieldTicker: "NSE:B", models.FieldRSI: 65.0, models.FieldMACD: 1.0, models.FieldMACDSignal: 1.5},
	}}
	s, _, _ := newTestScreener(p)

	res, out, err := s.Export(context.Background(), "momentum", models.DefaultFilter())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.FileName != "india_momentum_screener.xlsx" || out.ContentType != models.XLSXContentType {
		t.Fatalf("unexpected export %s %s", out.FileName, out.ContentType)
	}
	if out.Rows != res.Count() {
		t.Fatalf("export rows %d != scan rows %d", out.Rows, res.Count())
	}

	f, err := excelize.OpenReader(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Momentum")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "NSE:B" {
		t.Fatalf("unexpected sheet rows %v", rows)
	}
}

func TestExportErrors(t *testing.T) {
	cases := []struct {
		name string
		p    *fakeProvider
		want error
	}{
		{"no match", &fakeProvider{rows: models.ResultSet{}}, ErrNoMatch},
		{"rejected", &fakeProvider{err: rejected{}}, drepo.ErrRequestRejected},
		{"unexpected", &fakeProvider{err: errors.New("boom")}, ErrProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestScreener(tc.p)
			_, out, err := s.Export(context.Background(), "technical", models.DefaultFilter())
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if out != nil {
				t.Fatalf("no workbook expected")
			}
		})
	}
}

func TestPreview(t *testing.T) {
	p := &fakeProvider{}
	s, _, _ := newTestScreener(p)
	q, err := s.Preview("technical", models.DefaultFilter())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(q.Predicates) != BaseClauseCount+3 || p.calls != 0 {
		t.Fatalf("unexpected preview %v (calls=%d)", q.Clauses(), p.calls)
	}
}
