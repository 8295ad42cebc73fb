package engine

import (
	"context"
	"math"
	"testing"
)

func newTestEvaluator(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator(context.Background())
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	if err := newTestEvaluator(t).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_AllowAccess(t *testing.T) {
	e := newTestEvaluator(t)
	cases := []struct {
		name           string
		subject, owner int64
		want           bool
	}{
		{"owner", 7, 7, true},
		{"other account", 7, 8, false},
		{"no subject", 0, 0, false},
		{"no subject, owned resource", 0, 7, false},
		{"large ids compare exactly", math.MaxInt64, math.MaxInt64 - 1, false},
		{"large ids equal", math.MaxInt64, math.MaxInt64, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.AllowAccess(context.Background(), tc.subject, tc.owner)
			if err != nil {
				t.Fatalf("AllowAccess: %v", err)
			}
			if got != tc.want {
				t.Errorf("AllowAccess(%d, %d) = %v, want %v", tc.subject, tc.owner, got, tc.want)
			}
		})
	}
}

func TestOPAEvaluator_ConcurrentEval(t *testing.T) {
	e := newTestEvaluator(t)
	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			ok, err := e.AllowAccess(context.Background(), int64(i+1), int64(i+1))
			if err == nil && !ok {
				err = context.Canceled
			}
			done <- err
		}(i)
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent AllowAccess: %v", err)
		}
	}
}

func TestNewEvaluator_BadPolicy(t *testing.T) {
	if _, err := newEvaluator(context.Background(), "package todo.access\nallow if {"); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestHealthCheck_DetectsBrokenPolicy(t *testing.T) {
	e, err := newEvaluator(context.Background(), "package todo.access\n\nallow := true\n")
	if err != nil {
		t.Fatalf("newEvaluator: %v", err)
	}
	if err := e.HealthCheck(context.Background()); err == nil {
		t.Fatal("HealthCheck should reject a policy that allows everyone")
	}
}
