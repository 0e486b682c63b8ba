package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/store"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func newTestService(t *testing.T, now string) (*Service, *store.Memory, *TestClock) {
	t.Helper()
	clock := &TestClock{CurrentTime: mustDate(t, now).Add(12 * time.Hour)}
	mem := store.NewMemory()
	svc := New(mem, Options{Clock: clock, Logger: zerolog.Nop()})
	return svc, mem, clock
}

func mustCreate(t *testing.T, svc *Service, typ model.EventType, amount int, date string) model.UsageEvent {
	t.Helper()
	e, err := svc.Create(context.Background(), typ, amount, mustDate(t, date))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	e, err := svc.Create(context.Background(), model.ClassPass, 3, time.Date(2026, 1, 9, 22, 30, 0, 0, ny))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("Create did not assign id/created_at: %+v", e)
	}
	if got := model.FormatDate(e.Date); got != "2026-01-09" {
		t.Fatalf("date = %s, want the local calendar day 2026-01-09", got)
	}
}

func TestCreate_RejectsBeforeMutation(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	mustCreate(t, svc, model.ClassPass, 2, "2026-01-02")

	tests := []struct {
		name   string
		typ    model.EventType
		amount int
		date   time.Time
		want   error
	}{
		{"zero amount", model.ClassPass, 0, mustDate(t, "2026-01-03"), model.ErrInvalidAmount},
		{"negative amount", model.Solidcore, -4, mustDate(t, "2026-01-03"), model.ErrInvalidAmount},
		{"missing date", model.ClassPass, 1, time.Time{}, model.ErrInvalidDate},
		{"unknown type", "barre", 1, mustDate(t, "2026-01-03"), model.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.typ, tt.amount, tt.date)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create error = %v, want %v", err, tt.want)
			}
			events, _ := svc.List(context.Background())
			if len(events) != 1 {
				t.Fatalf("log has %d events after rejection, want 1", len(events))
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	orig := mustCreate(t, svc, model.ClassPass, 2, "2026-01-02")

	got, err := svc.Update(context.Background(), orig.ID, 5, model.Solidcore, mustDate(t, "2026-01-04"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != orig.ID || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("Update changed identity: %+v vs %+v", got, orig)
	}
	stored, _ := svc.Get(context.Background(), orig.ID)
	if stored.Amount != 5 || stored.Type != model.Solidcore || model.FormatDate(stored.Date) != "2026-01-04" {
		t.Fatalf("stored = %+v", stored)
	}

	if _, err := svc.Update(context.Background(), orig.ID, 0, model.Solidcore, mustDate(t, "2026-01-04")); !errors.Is(err, model.ErrInvalidAmount) {
		t.Fatalf("Update(0) error = %v, want ErrInvalidAmount", err)
	}
	if again, _ := svc.Get(context.Background(), orig.ID); again.Amount != 5 {
		t.Fatalf("rejected update changed amount to %d", again.Amount)
	}
}

func TestUpdate_NotFoundLeavesLog(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	mustCreate(t, svc, model.ClassPass, 2, "2026-01-02")
	before, _ := svc.List(context.Background())

	_, err := svc.Update(context.Background(), "missing", 3, model.ClassPass, mustDate(t, "2026-01-05"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
	after, _ := svc.List(context.Background())
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("log changed: %v -> %v", before, after)
	}
}

func TestDelete_IdempotentNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	a := mustCreate(t, svc, model.ClassPass, 2, "2026-01-02")
	mustCreate(t, svc, model.ClassPass, 1, "2026-01-03")

	if err := svc.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second Delete error = %v, want ErrNotFound", err)
	}
	events, _ := svc.List(context.Background())
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	mustCreate(t, svc, model.ClassPass, 1, "2026-01-02")
	mustCreate(t, svc, model.ClassPass, 1, "2026-01-08")
	mustCreate(t, svc, model.ClassPass, 1, "2026-01-05")

	events, _ := svc.List(context.Background())
	var dates []string
	for _, e := range events {
		dates = append(dates, model.FormatDate(e.Date))
	}
	if fmt.Sprint(dates) != "[2026-01-08 2026-01-05 2026-01-02]" {
		t.Fatalf("order = %v", dates)
	}
}

func TestBalance_FollowsClock(t *testing.T) {
	svc, _, clock := newTestService(t, "2026-01-10")
	mustCreate(t, svc, model.ClassPass, 10, "2026-01-05")

	b, err := svc.Balance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.ClassPassRemaining != 16 {
		t.Fatalf("ClassPassRemaining = %d, want 16", b.ClassPassRemaining)
	}

	clock.Set(mustDate(t, "2026-01-23"))
	b, _ = svc.Balance(context.Background())
	if b.Bonus != 16 || b.ClassPassRemaining != 42 {
		t.Fatalf("next cycle bonus %d remaining %d, want 16 and 42", b.Bonus, b.ClassPassRemaining)
	}
}

func TestBalance_ReadsNowInConfiguredZone(t *testing.T) {
	pacific := time.FixedZone("PST", -8*60*60)
	// 19:00 on Jan 21 in Pacific time, already Jan 22 in UTC.
	instant := time.Date(2026, 1, 22, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		loc       *time.Location
		wantStart string
	}{
		{"utc", time.UTC, "2026-01-22"},
		{"pacific", pacific, "2025-12-22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &TestClock{CurrentTime: instant}
			svc := New(store.NewMemory(), Options{Clock: clock, Location: tt.loc, Logger: zerolog.Nop()})
			mustCreate(t, svc, model.ClassPass, 3, "2026-01-21")

			b, err := svc.Balance(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got := model.FormatDate(b.CycleStart); got != tt.wantStart {
				t.Fatalf("CycleStart = %s, want %s", got, tt.wantStart)
			}
			if got := svc.Now().Location(); got != tt.loc {
				t.Fatalf("Now location = %v, want %v", got, tt.loc)
			}
		})
	}
}

func TestBalance_PacificEntryCountsToday(t *testing.T) {
	pacific := time.FixedZone("PST", -8*60*60)
	clock := &TestClock{CurrentTime: time.Date(2026, 1, 22, 3, 0, 0, 0, time.UTC)}
	svc := New(store.NewMemory(), Options{Clock: clock, Location: pacific, Logger: zerolog.Nop()})

	today := model.CivilDate(svc.Now())
	if got := model.FormatDate(today); got != "2026-01-21" {
		t.Fatalf("today = %s, want 2026-01-21", got)
	}
	if _, err := svc.Create(context.Background(), model.ClassPass, 4, today); err != nil {
		t.Fatal(err)
	}
	b, _ := svc.Balance(context.Background())
	if b.ClassPassRemaining != 22 {
		t.Fatalf("ClassPassRemaining = %d, want 22", b.ClassPassRemaining)
	}

	// Eight hours on it is the morning of Jan 22 in Pacific time.
	clock.Advance(8 * time.Hour)
	b, _ = svc.Balance(context.Background())
	if got := model.FormatDate(b.CycleStart); got != "2026-01-22" {
		t.Fatalf("CycleStart = %s, want 2026-01-22", got)
	}
	if b.Bonus != 22 || b.ClassPassRemaining != 48 {
		t.Fatalf("after reset bonus %d remaining %d, want 22 and 48", b.Bonus, b.ClassPassRemaining)
	}
}

func TestRealClockLocation(t *testing.T) {
	pacific := time.FixedZone("PST", -8*60*60)
	if got := (RealClock{Location: pacific}).Now().Location(); got != pacific {
		t.Fatalf("RealClock location = %v, want %v", got, pacific)
	}
}

func TestBalance_EmptyLog(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	b, err := svc.Balance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.ClassPassRemaining != model.DefaultClassPassLimit || b.SolidcoreRemaining != model.DefaultSolidcoreLimit {
		t.Fatalf("empty balance = %+v", b)
	}
}

func TestYearToDate(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	mustCreate(t, svc, model.ClassPass, 4, "2025-12-01")
	if _, ok, err := svc.YearToDate(context.Background()); err != nil || ok {
		t.Fatalf("YearToDate ok = %v, err = %v, want absent", ok, err)
	}
	mustCreate(t, svc, model.Solidcore, 1, "2025-12-22")
	tot, ok, _ := svc.YearToDate(context.Background())
	if !ok || tot.Solidcore != 1 || tot.ClassPass != 0 {
		t.Fatalf("YearToDate = %+v, %v", tot, ok)
	}
}

func TestResolve(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	ids := []string{"abc111", "abc222", "def333"}
	i := 0
	svc.newID = func() string { i++; return ids[i-1] }
	for range ids {
		mustCreate(t, svc, model.ClassPass, 1, "2026-01-02")
	}

	if got, err := svc.Resolve(context.Background(), "def"); err != nil || got != "def333" {
		t.Fatalf("Resolve(def) = %q, %v", got, err)
	}
	if got, err := svc.Resolve(context.Background(), "abc222"); err != nil || got != "abc222" {
		t.Fatalf("Resolve(exact) = %q, %v", got, err)
	}
	if _, err := svc.Resolve(context.Background(), "abc"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("Resolve(abc) error = %v, want ErrAmbiguousID", err)
	}
	if _, err := svc.Resolve(context.Background(), "zzz"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Resolve(zzz) error = %v, want ErrNotFound", err)
	}
}

func TestImport(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	existing := mustCreate(t, svc, model.ClassPass, 1, "2026-01-02")

	res, err := svc.Import(context.Background(), []model.UsageEvent{
		{ID: existing.ID, Date: mustDate(t, "2026-01-02"), Type: model.ClassPass, Amount: 1},
		{ID: "1766379600000", Date: mustDate(t, "2025-12-22"), Type: model.Solidcore, Amount: 1},
		{Date: mustDate(t, "2025-12-23"), Type: model.ClassPass, Amount: 2},
		{ID: "bad", Date: mustDate(t, "2025-12-24"), Type: model.ClassPass, Amount: 0},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res != (ImportResult{Imported: 2, Skipped: 1, Invalid: 1}) {
		t.Fatalf("Import = %+v", res)
	}
	if _, err := svc.Get(context.Background(), "1766379600000"); err != nil {
		t.Fatalf("imported id not kept: %v", err)
	}
}

func TestReport_Consistent(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	mustCreate(t, svc, model.ClassPass, 3, "2025-12-23")
	mustCreate(t, svc, model.Solidcore, 1, "2026-01-04")

	r, err := svc.Report(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Events) != 2 || len(r.Cycles) != 1 || len(r.Calendar) != 2 {
		t.Fatalf("report = %+v", r)
	}
	if r.YTD == nil || r.YTD.ClassPass != 3 {
		t.Fatalf("YTD = %+v", r.YTD)
	}
	if r.Balance.ClassPassRemaining != 23 || r.Balance.SolidcoreRemaining != 4 {
		t.Fatalf("balance = %+v", r.Balance)
	}
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	svc, _, _ := newTestService(t, "2026-01-10")
	ctx := context.Background()
	day := mustDate(t, "2026-01-02")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := svc.Create(ctx, model.ClassPass, 1, day); err != nil {
					t.Error(err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				b, err := svc.Balance(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				if b.ClassPassUsed+b.ClassPassRemaining != b.ClassPassLimit {
					t.Errorf("inconsistent balance %+v", b)
				}
			}
		}()
	}
	wg.Wait()

	events, _ := svc.List(ctx)
	if len(events) != 80 {
		t.Fatalf("len = %d, want 80", len(events))
	}
}

type failingStore struct{ *store.Memory }

func (failingStore) Insert(context.Context, model.UsageEvent) error {
	return errors.New("disk full")
}

func TestCreate_WrapsStoreError(t *testing.T) {
	svc := New(failingStore{store.NewMemory()}, Options{Clock: &TestClock{CurrentTime: mustDate(t, "2026-01-10")}, Logger: zerolog.Nop()})
	_, err := svc.Create(context.Background(), model.ClassPass, 1, mustDate(t, "2026-01-02"))
	if err == nil || err.Error() != "saving event: disk full" {
		t.Fatalf("Create error = %v, want wrapped store error", err)
	}
}
