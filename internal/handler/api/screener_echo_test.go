package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TechScreener/internal/domain/models"
	domrepo "TechScreener/internal/domain/repository"
	"TechScreener/internal/service/ratelimit"
	"TechScreener/internal/usecase"
	xhttp "TechScreener/pkg/http"
	"TechScreener/pkg/lock"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

type stubProvider struct {
	rows models.ResultSet
	err  error
}

func (s *stubProvider) Scan(context.Context, models.Query) (models.ResultSet, error) {
	return s.rows, s.err
}

type rejectedErr struct{}

func (rejectedErr) Error() string        { return "status 400" }
func (rejectedErr) Is(target error) bool { return target == domrepo.ErrRequestRejected }

func newTestEcho(p domrepo.ScreenerProvider, limiter *ratelimit.Limiter) *echo.Echo {
	s := usecase.NewScreener(p, lock.NewMemoryLocker(), nil, nil, time.Minute)
	h := NewScreenerEchoHandler(nil, s, limiter, "india")
	return xhttp.NewServer(h, xhttp.WithMetricsPath("")).Echo()
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var sampleRows = models.ResultSet{
	{models.FieldTicker: "NSE:A", models.FieldADX: 22.0, models.FieldRSI: 50.0},
	{models.FieldTicker: "NSE:B", models.FieldADX: 35.0, models.FieldRSI: 60.0},
}

func TestProfiles(t *testing.T) {
	e := newTestEcho(&stubProvider{}, nil)
	rec := do(e, http.MethodGet, "/api/profiles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if gjson.Get(body, "data.total").Int() != 2 {
		t.Fatalf("want 2 profiles: %s", body)
	}
	if gjson.Get(body, "data.rows.0.name").String() != "momentum" {
		t.Fatalf("profiles must be sorted by name: %s", body)
	}
	if gjson.Get(body, "data.rows.1.defaults.limit").Int() != 50 {
		t.Fatalf("missing defaults: %s", body)
	}
}

func TestQueryPreview(t *testing.T) {
	e := newTestEcho(&stubProvider{}, nil)
	rec := do(e, http.MethodPost, "/api/scan/technical/query", `{"direction":"bullish"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if n := gjson.Get(body, "data.clauses.#").Int(); n != 10 {
		t.Fatalf("want 10 clauses, got %d: %s", n, body)
	}
	if n := gjson.Get(body, "data.payload.filter.#").Int(); n != 10 {
		t.Fatalf("want 10 filter rows, got %d", n)
	}
}

func TestQueryPreviewGET(t *testing.T) {
	e := newTestEcho(&stubProvider{}, nil)
	rec := do(e, http.MethodGet, "/api/scan/momentum/query?band=near_lower_band&limit=20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := gjson.Get(rec.Body.String(), "data.clauses.#").Int(); n != usecase.BaseClauseCount+3 {
		t.Fatalf("want %d clauses, got %d", usecase.BaseClauseCount+3, n)
	}
	if r := gjson.Get(rec.Body.String(), "data.payload.range").Raw; r != "[0,20]" {
		t.Fatalf("want range [0,20], got %s", r)
	}
	if op := gjson.Get(rec.Body.String(), `data.payload.filter.#(left=="close")#.operation`).String(); !strings.Contains(op, "below%") {
		t.Fatalf("near lower band must encode below%%: %s", op)
	}
}

func TestScan(t *testing.T) {
	e := newTestEcho(&stubProvider{rows: sampleRows}, nil)
	rec := do(e, http.MethodPost, "/api/scan/technical", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if gjson.Get(body, "data.result.rows.0.ticker").String() != "NSE:B" {
		t.Fatalf("rows must be sorted by ADX: %s", body)
	}
	if gjson.Get(body, "data.notice").Exists() {
		t.Fatalf("unexpected notice: %s", body)
	}
}

func TestScanRejectedStillOK(t *testing.T) {
	e := newTestEcho(&stubProvider{err: rejectedErr{}}, nil)
	rec := do(e, http.MethodPost, "/api/scan/momentum", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if gjson.Get(body, "data.notice.kind").String() != "rejected" ||
		gjson.Get(body, "data.notice.message").String() != usecase.MsgRejected {
		t.Fatalf("want rejected notice: %s", body)
	}
	if !gjson.Get(body, "data.result.no_match").Bool() {
		t.Fatalf("want empty result: %s", body)
	}
}

func TestScanErrors(t *testing.T) {
	cases := []struct {
		name   string
		target string
		body   string
		status int
		code   string
		field  string
	}{
		{"unknown profile", "/api/scan/fundamental", `{}`, http.StatusNotFound, "ERR_UNKNOWN_PROFILE", ""},
		{"limit too high", "/api/scan/technical", `{"limit":500}`, http.StatusBadRequest, "ERR_LTE", "Limit"},
		{"bad direction", "/api/scan/technical", `{"direction":"sideways"}`, http.StatusBadRequest, "ERR_ONEOF", "Direction"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(&stubProvider{rows: sampleRows}, nil)
			rec := do(e, http.MethodPost, tc.target, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("want %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if code := gjson.Get(rec.Body.String(), "data.0.code").String(); code != tc.code {
				t.Fatalf("want %s, got %s", tc.code, code)
			}
			if tc.field != "" {
				if f := gjson.Get(rec.Body.String(), "data.0.field").String(); f != tc.field {
					t.Fatalf("want field %s, got %s", tc.field, f)
				}
			}
		})
	}
}

func TestExport(t *testing.T) {
	e := newTestEcho(&stubProvider{rows: sampleRows}, nil)
	rec := do(e, http.MethodPost, "/api/scan/technical/export", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != models.XLSXContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "india_technical_screener.xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty workbook")
	}
}

func TestExportErrors(t *testing.T) {
	cases := []struct {
		name   string
		p      *stubProvider
		status int
		code   string
	}{
		{"no match", &stubProvider{rows: models.ResultSet{}}, http.StatusNotFound, "ERR_NO_MATCH"},
		{"rejected", &stubProvider{err: rejectedErr{}}, http.StatusUnprocessableEntity, "ERR_REQUEST_REJECTED"},
		{"unexpected", &stubProvider{err: context.DeadlineExceeded}, http.StatusBadGateway, "ERR_PROVIDER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(tc.p, nil)
			rec := do(e, http.MethodPost, "/api/scan/momentum/export", `{}`)
			if rec.Code != tc.status {
				t.Fatalf("want %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if code := gjson.Get(rec.Body.String(), "data.0.code").String(); code != tc.code {
				t.Fatalf("want %s, got %s", tc.code, code)
			}
		})
	}
}

func TestScanThrottled(t *testing.T) {
	e := newTestEcho(&stubProvider{rows: sampleRows}, ratelimit.New(1, 0.001))
	if rec := do(e, http.MethodPost, "/api/scan/technical", `{}`); rec.Code != http.StatusOK {
		t.Fatalf("first request: want 200, got %d", rec.Code)
	}
	rec := do(e, http.MethodPost, "/api/scan/technical", `{}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: want 429, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEcho(&stubProvider{}, nil)
	if rec := do(e, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}
