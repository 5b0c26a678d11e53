package scoring

import (
	"testing"

	"vigil/internal/core/checker"
)

func intptr(v int) *int { return &v }

func TestScoreForResult_Table(t *testing.T) {
	cases := []struct {
		name    string
		status  checker.Status
		latency *int
		want    float64
	}{
		{"up fast", checker.StatusUp, intptr(12), 100},
		{"up no latency", checker.StatusUp, nil, 100},
		{"down", checker.StatusDown, intptr(3000), 0},
		{"down no latency", checker.StatusDown, nil, 0},
		{"degraded no latency", checker.StatusDegraded, nil, 60},
		{"degraded fast", checker.StatusDegraded, intptr(120), 80},
		{"degraded at 500", checker.StatusDegraded, intptr(500), 80},
		{"degraded at 501", checker.StatusDegraded, intptr(501), 65},
		{"degraded at 1000", checker.StatusDegraded, intptr(1000), 65},
		{"degraded at 1001", checker.StatusDegraded, intptr(1001), 45},
		{"degraded very slow", checker.StatusDegraded, intptr(30000), 45},
		{"unknown status", checker.Status("flaky"), nil, 0},
	}
	for _, tc := range cases {
		if got := ScoreForResult(tc.status, tc.latency); got != tc.want {
			t.Fatalf("%s: score = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRawScore_WeightedAverage(t *testing.T) {
	signals := []CheckSignal{
		{CheckKey: "api", Status: checker.StatusDegraded, LatencyMS: intptr(900), Weight: 0.5},
		{CheckKey: "dashboard", Status: checker.StatusUp, LatencyMS: intptr(100), Weight: 0.5},
	}
	if got := RawScore(signals); got != 82.5 {
		t.Fatalf("raw score = %v, want 82.5", got)
	}
}

func TestRawScore_NoSignalsReadsClean(t *testing.T) {
	if got := RawScore(nil); got != 100 {
		t.Fatalf("raw score = %v, want 100", got)
	}
}

func TestRawScore_MissingChecksCarryNoWeight(t *testing.T) {
	// only one of two 0.5-weight checks has a result; the average
	// renormalizes over the weight that is present
	signals := []CheckSignal{
		{CheckKey: "api", Status: checker.StatusDegraded, LatencyMS: intptr(900), Weight: 0.5},
	}
	if got := RawScore(signals); got != 65 {
		t.Fatalf("raw score = %v, want 65", got)
	}
}

func TestStatusFromScore_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  checker.Status
	}{
		{100, checker.StatusUp},
		{95, checker.StatusUp},
		{94.999, checker.StatusDegraded},
		{82.5, checker.StatusDegraded},
		{60, checker.StatusDegraded},
		{59.999, checker.StatusDown},
		{0, checker.StatusDown},
	}
	for _, tc := range cases {
		if got := StatusFromScore(tc.score); got != tc.want {
			t.Fatalf("status(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestStatusFromScore_Monotone(t *testing.T) {
	order := func(s checker.Status) int {
		switch s {
		case checker.StatusUp:
			return 2
		case checker.StatusDegraded:
			return 1
		default:
			return 0
		}
	}
	prev := order(StatusFromScore(0))
	for score := 0.5; score <= 100; score += 0.5 {
		cur := order(StatusFromScore(score))
		if cur < prev {
			t.Fatalf("raising the score to %v moved status down the ordering", score)
		}
		prev = cur
	}
}
