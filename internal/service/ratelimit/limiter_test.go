package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesAndRefills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow("a") {
		t.Fatalf("expected third request to be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share a bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("expected a token after one second")
	}
	if l.Allow("a") {
		t.Fatalf("expected only one refilled token")
	}
}

func TestDisabledLimiter(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("x") {
			t.Fatalf("disabled limiter rejected request %d", i)
		}
	}
}

func TestPrune(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(4, 2)
	l.now = func() time.Time { return now }
	l.Allow("a")
	l.Allow("b")

	now = now.Add(time.Second)
	if n := l.Prune(); n != 0 {
		t.Fatalf("pruned %d buckets before they were full", n)
	}
	now = now.Add(time.Second)
	if n := l.Prune(); n != 2 {
		t.Fatalf("expected 2 pruned buckets, got %d", n)
	}
}
