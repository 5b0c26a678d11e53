package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"vigil/internal/core/checker"
	"vigil/internal/modkit"
	"vigil/internal/modkit/repokit"
	"vigil/internal/platform/store"
	"vigil/internal/services/catalog/domain"
	crepo "vigil/internal/services/catalog/repo"
)

func fptr(f float64) *float64 { return &f }

const fakeProbe = "probe/fake"

func registerFakeProbe(t *testing.T) {
	t.Helper()
	checker.ResetRegistry()
	t.Cleanup(checker.ResetRegistry)
	checker.RegisterCheck(fakeProbe, func(checker.Spec) (checker.Check, error) { return nil, nil })
}

// fakeTxRunner satisfies repokit.TxRunner without a database; Tx hands itself
// to fn so bound repos still get a non-nil Queryer
type fakeTxRunner struct{}

func (fakeTxRunner) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTxRunner) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTxRunner) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeTxRunner) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

type fakeCatalogRepo struct {
	ids      map[string]uuid.UUID
	checks   map[string][]domain.CheckDef
	disabled map[string][]string
	edges    map[string][]crepo.Edge
	disableN int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		ids:      map[string]uuid.UUID{},
		checks:   map[string][]domain.CheckDef{},
		disabled: map[string][]string{},
		edges:    map[string][]crepo.Edge{},
	}
}

func (f *fakeCatalogRepo) slugFor(id uuid.UUID) string {
	for slug, v := range f.ids {
		if v == id {
			return slug
		}
	}
	return ""
}

func (f *fakeCatalogRepo) UpsertService(_ context.Context, d domain.Definition) (uuid.UUID, error) {
	id, ok := f.ids[d.Slug]
	if !ok {
		id = uuid.New()
		f.ids[d.Slug] = id
	}
	return id, nil
}

func (f *fakeCatalogRepo) UpsertCheck(_ context.Context, serviceID uuid.UUID, c domain.CheckDef) (uuid.UUID, error) {
	slug := f.slugFor(serviceID)
	f.checks[slug] = append(f.checks[slug], c)
	return uuid.New(), nil
}

func (f *fakeCatalogRepo) DisableOtherChecks(_ context.Context, serviceID uuid.UUID, keep []string) (int, error) {
	f.disabled[f.slugFor(serviceID)] = keep
	return f.disableN, nil
}

func (f *fakeCatalogRepo) ReplaceDependencies(_ context.Context, serviceID uuid.UUID, edges []crepo.Edge) error {
	f.edges[f.slugFor(serviceID)] = edges
	return nil
}

type fakeBinder struct{ r *fakeCatalogRepo }

func (b fakeBinder) Bind(repokit.Queryer) crepo.Repo { return b.r }

func newTestSvc(r *fakeCatalogRepo) *Svc {
	s := New(modkit.Deps{PG: fakeTxRunner{}})
	s.binder = fakeBinder{r: r}
	return s
}

func TestDefinitions_ResolvesWeightsAndDefaults(t *testing.T) {
	registerFakeProbe(t)
	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey: "PagerDuty",
		Checks: []checker.Spec{
			{CheckKey: "api", ClassPath: fakeProbe, Weight: fptr(0.5)},
			{CheckKey: "events", ClassPath: fakeProbe},
		},
	})

	defs, err := newTestSvc(newFakeCatalogRepo()).Definitions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected one definition got %d", len(defs))
	}
	d := defs[0]
	if d.Slug != "pagerduty" {
		t.Fatalf("expected slugified key got %q", d.Slug)
	}
	if d.Name != "PagerDuty" {
		t.Fatalf("expected the key to back-fill the display name got %q", d.Name)
	}
	if d.DefaultIntervalSeconds != 60 {
		t.Fatalf("expected default interval got %d", d.DefaultIntervalSeconds)
	}
	if len(d.Checks) != 2 {
		t.Fatalf("expected two checks got %d", len(d.Checks))
	}
	for _, c := range d.Checks {
		if c.Weight != 0.5 {
			t.Fatalf("expected resolved weight 0.5 got %v for %s", c.Weight, c.CheckKey)
		}
		if c.IntervalSeconds != 60 || c.TimeoutSeconds != 5 {
			t.Fatalf("expected defaults applied got interval=%d timeout=%d", c.IntervalSeconds, c.TimeoutSeconds)
		}
	}
}

func TestDefinitions_RejectsUnregisteredProbe(t *testing.T) {
	registerFakeProbe(t)
	// registration accepts any class path; resolution happens at sync time
	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey: "zendesk",
		Checks:     []checker.Spec{{CheckKey: "api", ClassPath: "probe/missing"}},
	})

	_, err := newTestSvc(newFakeCatalogRepo()).Definitions()
	if err == nil {
		t.Fatalf("expected an error for an unregistered probe")
	}
	if !strings.Contains(err.Error(), "probe/missing") {
		t.Fatalf("expected the class path in the error got %v", err)
	}
}

func TestDefinitions_EmptyRegistryErrors(t *testing.T) {
	checker.ResetRegistry()
	t.Cleanup(checker.ResetRegistry)

	if _, err := newTestSvc(newFakeCatalogRepo()).Definitions(); err == nil {
		t.Fatalf("expected an error with nothing registered")
	}
}

func TestSyncRegistered_UpsertsEverything(t *testing.T) {
	registerFakeProbe(t)
	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey: "postmark",
		Checks: []checker.Spec{
			{CheckKey: "api", ClassPath: fakeProbe},
			{CheckKey: "smtp", ClassPath: fakeProbe},
		},
	})
	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey: "billing",
		Checks:     []checker.Spec{{CheckKey: "api", ClassPath: fakeProbe}},
		Dependencies: []checker.Dependency{
			{ServiceKey: "postmark", Type: checker.DependencySoft, Weight: 0.5},
		},
	})

	repo := newFakeCatalogRepo()
	report, err := newTestSvc(repo).SyncRegistered(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Services != 2 || report.Checks != 3 || report.Dependencies != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	if len(repo.checks["postmark"]) != 2 || len(repo.checks["billing"]) != 1 {
		t.Fatalf("unexpected check rows %+v", repo.checks)
	}
	keep := repo.disabled["postmark"]
	if len(keep) != 2 || keep[0] != "api" || keep[1] != "smtp" {
		t.Fatalf("unexpected keep list %v", keep)
	}

	edges := repo.edges["billing"]
	if len(edges) != 1 {
		t.Fatalf("expected one edge got %v", edges)
	}
	if edges[0].DependsOn != repo.ids["postmark"] {
		t.Fatalf("edge target not resolved to the upstream service id")
	}
	if edges[0].Type != "soft" || edges[0].Weight != 0.5 {
		t.Fatalf("unexpected edge %+v", edges[0])
	}
}

func TestSyncRegistered_UnknownDependencyTargetFails(t *testing.T) {
	registerFakeProbe(t)
	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey:   "billing",
		Checks:       []checker.Spec{{CheckKey: "api", ClassPath: fakeProbe}},
		Dependencies: []checker.Dependency{{ServiceKey: "ghost"}},
	})

	_, err := newTestSvc(newFakeCatalogRepo()).SyncRegistered(context.Background())
	if err == nil {
		t.Fatalf("expected an error for a dependency on an unregistered service")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected the missing key in the error got %v", err)
	}
}

func TestSyncRegistered_ReportsDisabledRows(t *testing.T) {
	registerFakeProbe(t)
	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey: "postmark",
		Checks:     []checker.Spec{{CheckKey: "api", ClassPath: fakeProbe}},
	})

	repo := newFakeCatalogRepo()
	repo.disableN = 2
	report, err := newTestSvc(repo).SyncRegistered(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Disabled != 2 {
		t.Fatalf("expected disabled rows surfaced in the report got %d", report.Disabled)
	}
}
