package tradingview

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TechScreener/internal/domain/models"
	drepo "TechScreener/internal/domain/repository"

	"github.com/tidwall/gjson"
)

func testQuery() models.Query {
	return models.Query{
		Market: models.MarketIndia,
		Fields: []string{models.FieldClose, models.FieldADX},
		Predicates: []models.Predicate{
			{Field: models.FieldRSI, Op: models.OpGreaterOrEqual, Operand: models.Number(40)},
		},
		Limit: 50,
	}
}

func TestClientScan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/india/scan" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "screener-test" {
			t.Errorf("unexpected user agent %q", ua)
		}
		body, _ := io.ReadAll(r.Body)
		if gjson.GetBytes(body, "filter.0.operation").String() != "egreater" {
			t.Errorf("unexpected payload %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"totalCount":1,"data":[{"s":"NSE:SBIN","d":[812.4,26.1]}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 5*time.Second, "screener-test")
	rows, err := c.Scan(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 1 || rows[0]["ticker"] != "NSE:SBIN" || rows[0]["ADX"] != 26.1 {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestClientScanRejected(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, `{"error":"Unknown field \"FOO\""}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"error field", http.StatusOK, `{"error":"too many filters","data":null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second, "").Scan(context.Background(), testQuery())
			if !errors.Is(err, drepo.ErrRequestRejected) {
				t.Fatalf("want ErrRequestRejected, got %v", err)
			}
			var re *RejectedError
			if !errors.As(err, &re) {
				t.Fatalf("want *RejectedError, got %T", err)
			}
			if tc.status != http.StatusOK && re.StatusCode != tc.status {
				t.Fatalf("want status %d, got %d", tc.status, re.StatusCode)
			}
		})
	}
}

func TestClientScanUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, "").Scan(context.Background(), testQuery())
	if err == nil || errors.Is(err, drepo.ErrRequestRejected) {
		t.Fatalf("want unexpected error, got %v", err)
	}
}

func TestClientScanTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond, "").Scan(context.Background(), testQuery())
	if err == nil || errors.Is(err, drepo.ErrRequestRejected) {
		t.Fatalf("timeout must be an unexpected error, got %v", err)
	}
}
