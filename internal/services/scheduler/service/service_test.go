package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"vigil/internal/modkit"
	"vigil/internal/modkit/repokit"
	"vigil/internal/platform/ops"
	"vigil/internal/platform/store"
	sdom "vigil/internal/services/scheduler/domain"
	"vigil/internal/services/scheduler/repo"
)

type fakeTxRunner struct{}

func (fakeTxRunner) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTxRunner) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTxRunner) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeTxRunner) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

type fakeSchedRepo struct {
	due       []sdom.DueCheck
	dupKeys   map[string]bool
	insertErr error

	jobs     []sdom.NewJob
	advanced map[uuid.UUID]time.Time
}

func newFakeSchedRepo(due ...sdom.DueCheck) *fakeSchedRepo {
	return &fakeSchedRepo{due: due, dupKeys: map[string]bool{}, advanced: map[uuid.UUID]time.Time{}}
}

func (f *fakeSchedRepo) DueChecks(_ context.Context, _ time.Time, limit int) ([]sdom.DueCheck, error) {
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeSchedRepo) InsertJob(_ context.Context, j sdom.NewJob) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.jobs = append(f.jobs, j)
	return !f.dupKeys[j.IdempotencyKey], nil
}

func (f *fakeSchedRepo) AdvanceDue(_ context.Context, checkID uuid.UUID, next time.Time) error {
	f.advanced[checkID] = next
	return nil
}

type fakeBinder struct{ r *fakeSchedRepo }

func (b fakeBinder) Bind(repokit.Queryer) repo.Repo { return b.r }

func newTestSvc(r *fakeSchedRepo, cfg Config) *Svc {
	s := New(modkit.Deps{PG: fakeTxRunner{}}, cfg, ops.NewMetrics(nil))
	s.binder = fakeBinder{r: r}
	return s
}

func TestTick_EnqueuesDueAndAdvancesCursors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c1 := sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 30, DueAt: now.Add(-45 * time.Second)}
	c2 := sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 60, DueAt: now.Add(-5 * time.Second)}
	r := newFakeSchedRepo(c1, c2)

	svc := newTestSvc(r, Config{MaxAttempts: 3})
	n, err := svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected two jobs enqueued got %d", n)
	}
	if len(r.jobs) != 2 {
		t.Fatalf("expected two insert calls got %d", len(r.jobs))
	}

	j := r.jobs[0]
	if j.CheckID != c1.CheckID || j.ServiceID != c1.ServiceID {
		t.Fatalf("job identity mismatch %+v", j)
	}
	if !j.ScheduledFor.Equal(c1.DueAt) {
		t.Fatalf("job scheduled_for should be the due instant got %v", j.ScheduledFor)
	}
	if j.MaxAttempts != 3 {
		t.Fatalf("job max attempts mismatch got %d", j.MaxAttempts)
	}
	want := fmt.Sprintf("%s:%d", c1.CheckID, c1.DueAt.Unix())
	if j.IdempotencyKey != want {
		t.Fatalf("idempotency key %q want %q", j.IdempotencyKey, want)
	}

	// two missed 30s periods collapse into the next aligned instant after now
	if got := r.advanced[c1.CheckID]; !got.Equal(c1.DueAt.Add(60 * time.Second)) {
		t.Fatalf("c1 cursor %v want %v", got, c1.DueAt.Add(60*time.Second))
	}
	if got := r.advanced[c2.CheckID]; !got.Equal(c2.DueAt.Add(60 * time.Second)) {
		t.Fatalf("c2 cursor %v want %v", got, c2.DueAt.Add(60*time.Second))
	}
	for id, next := range r.advanced {
		if !next.After(now) {
			t.Fatalf("cursor for %s not advanced past now: %v", id, next)
		}
	}
}

func TestTick_DuplicateOccurrenceNotCounted(t *testing.T) {
	now := time.Now().UTC()
	c1 := sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 30, DueAt: now.Add(-time.Second)}
	c2 := sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 30, DueAt: now.Add(-time.Second)}
	r := newFakeSchedRepo(c1, c2)
	r.dupKeys[sdom.IdempotencyKey(c2.CheckID, c2.DueAt)] = true

	svc := newTestSvc(r, Config{})
	n, err := svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("duplicate insert should not count got %d", n)
	}
	// the duplicate's cursor still advances so it stops being due
	if _, ok := r.advanced[c2.CheckID]; !ok {
		t.Fatalf("duplicate occurrence should still advance its cursor")
	}
}

func TestTick_EmptyPass(t *testing.T) {
	r := newFakeSchedRepo()
	svc := newTestSvc(r, Config{})
	n, err := svc.Tick(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || len(r.jobs) != 0 || len(r.advanced) != 0 {
		t.Fatalf("empty pass should be a no-op got n=%d jobs=%d advanced=%d", n, len(r.jobs), len(r.advanced))
	}
}

func TestTick_BatchLimitRespected(t *testing.T) {
	now := time.Now().UTC()
	var due []sdom.DueCheck
	for i := 0; i < 5; i++ {
		due = append(due, sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 30, DueAt: now.Add(-time.Second)})
	}
	r := newFakeSchedRepo(due...)

	svc := newTestSvc(r, Config{BatchSize: 2})
	n, err := svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected the batch cap to hold got %d", n)
	}
}

func TestTick_InsertErrorAbortsPass(t *testing.T) {
	now := time.Now().UTC()
	r := newFakeSchedRepo(sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 30, DueAt: now.Add(-time.Second)})
	r.insertErr = errors.New("boom")

	svc := newTestSvc(r, Config{})
	if _, err := svc.Tick(context.Background(), now); err == nil {
		t.Fatalf("expected the insert failure to surface")
	}
	if len(r.advanced) != 0 {
		t.Fatalf("failed pass should not advance cursors")
	}
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	svc := newTestSvc(newFakeSchedRepo(), Config{Tick: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
}

func TestRun_PassFailureKeepsLooping(t *testing.T) {
	r := newFakeSchedRepo(sdom.DueCheck{CheckID: uuid.New(), ServiceID: uuid.New(), IntervalSeconds: 30, DueAt: time.Now().Add(-time.Second)})
	r.insertErr = errors.New("db down")

	svc := newTestSvc(r, Config{Tick: time.Hour})
	stop := errors.New("stop")
	var sleeps int
	svc.sleep = func(context.Context, time.Duration) error {
		sleeps++
		if sleeps >= 2 {
			return stop
		}
		return nil
	}

	if err := svc.Run(context.Background()); !errors.Is(err, stop) {
		t.Fatalf("expected the loop to exit via sleep got %v", err)
	}
	if sleeps != 2 {
		t.Fatalf("expected the loop to survive a failed pass got %d sleeps", sleeps)
	}
}
