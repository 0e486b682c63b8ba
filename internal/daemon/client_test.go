package daemon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/store"
)

func TestNewClientAddr(t *testing.T) {
	if NewClient("  ") != nil {
		t.Fatal("empty addr should give a nil client")
	}
	if got := NewClient("127.0.0.1:8787").base; got != "http://127.0.0.1:8787" {
		t.Fatalf("base = %q", got)
	}
	if got := NewClient("https://example.test/").base; got != "https://example.test" {
		t.Fatalf("base = %q", got)
	}
}

func TestClientRoundTrip(t *testing.T) {
	svc, _ := newTestDaemon(t, "2026-01-10", seedEvent("seed0001", "2026-01-03", model.ClassPass, 4))
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL)

	svc.pollOnce(ctx)
	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.PollCount != 1 || st.Summary.ClassPassRemaining != 22 {
		t.Fatalf("status = %+v", st)
	}

	e, err := c.CreateEvent(ctx, model.Solidcore, 2, time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if e.ID == "" || e.Amount != 2 || e.Type != model.Solidcore {
		t.Fatalf("created = %+v", e)
	}

	b, err := c.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if b.SolidcoreRemaining != 3 || b.ClassPassRemaining != 22 {
		t.Fatalf("balance = %+v", b)
	}

	solid, err := c.Events(ctx, model.Solidcore)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(solid) != 1 || solid[0].ID != e.ID {
		t.Fatalf("solidcore events = %+v", solid)
	}

	if err := c.DeleteEvent(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	all, err := c.Events(ctx, "")
	if err != nil || len(all) != 1 {
		t.Fatalf("events after delete = %+v, %v", all, err)
	}
}

func TestClientErrors(t *testing.T) {
	svc, _ := newTestDaemon(t, "2026-01-10")
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL)

	err := c.DeleteEvent(ctx, "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want a 404 APIError", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("404 should unwrap to ErrNotFound: %v", err)
	}

	_, err = c.CreateEvent(ctx, model.ClassPass, 0, time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, model.ErrInvalidAmount) {
		t.Fatalf("err = %v, want invalid amount", err)
	}

	_, err = c.CreateEvent(ctx, "yoga", 1, time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, model.ErrInvalidType) {
		t.Fatalf("err = %v, want invalid type", err)
	}

	srv.Close()
	if _, err := c.Balance(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
