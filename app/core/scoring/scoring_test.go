package scoring

import (
	"math"
	"testing"

	"daybrief/app/pkg/types"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestQualityAnchors(t *testing.T) {
	if got := quality(fp(5), ip(10000)); math.Abs(got-1.0) > 0.001 {
		t.Fatalf("quality(5, 10000) = %f, want ~1.0", got)
	}
	if got := quality(fp(0), ip(5000)); got != 0 {
		t.Fatalf("quality(0, n) = %f, want 0", got)
	}
	if got := quality(nil, nil); got != 0 {
		t.Fatalf("quality(nil, nil) = %f, want 0", got)
	}
}

func TestDeliveryCurve(t *testing.T) {
	cases := []struct {
		days *int
		want float64
	}{
		{ip(0), 1.0},
		{ip(1), 0.85},
		{ip(2), 0.70},
		{ip(3), 0.55},
		{nil, 0.5},
	}
	for _, c := range cases {
		if got := delivery(c.days); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("delivery(%v) = %f, want %f", c.days, got, c.want)
		}
	}
	prev := delivery(ip(3))
	for d := 4; d <= 12; d++ {
		got := delivery(ip(d))
		if got < 0.1 {
			t.Fatalf("delivery(%d) = %f, below floor", d, got)
		}
		if got > prev {
			t.Fatalf("delivery not monotone at %d days: %f > %f", d, got, prev)
		}
		prev = got
	}
	if delivery(ip(10)) < 0.1 {
		t.Fatal("delivery(10) fell below the 0.1 floor")
	}
}

func TestValueInterpolation(t *testing.T) {
	prices := []*float64{fp(10), fp(20), fp(40)}
	if got := value(fp(10), prices); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("cheapest item = %f, want 1.0", got)
	}
	if got := value(fp(40), prices); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("most expensive item = %f, want 0.1", got)
	}
	equal := []*float64{fp(15), fp(15), fp(15)}
	if got := value(fp(15), equal); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("uniform prices = %f, want 0.7", got)
	}
	if got := value(nil, prices); got != 0.5 {
		t.Fatalf("unknown price = %f, want neutral 0.5", got)
	}
}

func TestMatchTokens(t *testing.T) {
	if got := match("Men Leather Belt Black", "men leather belt"); got != 1.0 {
		t.Fatalf("full token coverage = %f, want 1.0", got)
	}
	if got := match("Men Leather Belt Black", ""); got != 0.5 {
		t.Fatalf("empty query = %f, want 0.5", got)
	}
	if got := match("", "men leather belt"); got != 0.5 {
		t.Fatalf("empty title = %f, want 0.5", got)
	}
	if got := match("Ceramic Mug", "men leather belt"); got != 0.1 {
		t.Fatalf("zero hits = %f, want floor 0.1", got)
	}
}

func TestScoreOrderingAndBounds(t *testing.T) {
	candidates := []types.Candidate{
		{ID: "a", Title: "Men Leather Belt Black", Price: fp(18), Rating: fp(4.6), Reviews: ip(8200), DeliveryDays: ip(1)},
		{ID: "b", Title: "Canvas Belt", Price: fp(45), Rating: fp(3.1), Reviews: ip(12), DeliveryDays: ip(6)},
		{ID: "c", Title: "Leather Belt Brown", Price: fp(22), Rating: fp(4.1), Reviews: ip(900)},
		{ID: "d", Title: "Belt"},
	}
	scored := Score(candidates, "men leather belt")
	if len(scored) != len(candidates) {
		t.Fatalf("output length %d != input length %d", len(scored), len(candidates))
	}
	for i, s := range scored {
		if s.Scores.Total < 0 || s.Scores.Total > 1 {
			t.Fatalf("total out of range: %f", s.Scores.Total)
		}
		if i > 0 && scored[i-1].Scores.Total < s.Scores.Total {
			t.Fatalf("not sorted descending at index %d", i)
		}
	}
	if scored[0].ID != "a" {
		t.Fatalf("expected the high-quality prime match first, got %s", scored[0].ID)
	}
}

func TestScoreStableOnTies(t *testing.T) {
	// Identical candidates always tie; input order must survive.
	mk := func(id string) types.Candidate {
		return types.Candidate{ID: id, Title: "Leather Belt", Price: fp(20), Rating: fp(4.0), Reviews: ip(100)}
	}
	scored := Score([]types.Candidate{mk("first"), mk("second"), mk("third")}, "belt")
	order := []string{scored[0].ID, scored[1].ID, scored[2].ID}
	want := []string{"first", "second", "third"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("tie order changed: got %v", order)
		}
	}
}
