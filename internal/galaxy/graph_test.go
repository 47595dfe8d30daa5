package galaxy

import "testing"

var locations = []string{"loc_earth", "loc_luna", "loc_mars", "loc_venus", "loc_belt", "loc_saturn", "loc_jupiter"}

func TestGenerateInvariants(t *testing.T) {
	g := Generate(locations, []string{"loc_earth", "loc_luna"}, 7)

	for _, from := range locations {
		if _, ok := g.Edge(from, from); ok {
			t.Fatalf("self edge at %s", from)
		}
		if len(g.From(from)) != len(locations)-1 {
			t.Fatalf("%s has %d edges", from, len(g.From(from)))
		}
		for to, e := range g.From(from) {
			if e.Time < 1 || e.FuelCost < 1 {
				t.Fatalf("%s->%s = %+v", from, to, e)
			}
		}
	}

	hop, _ := g.Edge("loc_earth", "loc_luna")
	back, _ := g.Edge("loc_luna", "loc_earth")
	for _, e := range []Edge{hop, back} {
		if e.Time < 1 || e.Time > 3 {
			t.Fatalf("short hop time = %d", e.Time)
		}
	}
}

func TestTimeGrowsWithDistance(t *testing.T) {
	g := Generate(locations, nil, 99)
	// Jitter is at most 4 days and each hop adds 10, so farther is always slower.
	for i := 1; i+1 < len(locations); i++ {
		near, _ := g.Edge(locations[0], locations[i])
		far, _ := g.Edge(locations[0], locations[i+1])
		if far.Time <= near.Time {
			t.Fatalf("time to %s (%d) not above time to %s (%d)", locations[i+1], far.Time, locations[i], near.Time)
		}
	}
}

func TestSameSeedSameGraph(t *testing.T) {
	a := Generate(locations, nil, 1234)
	b := Generate(locations, nil, 1234)
	for from, edges := range a.Edges {
		for to, e := range edges {
			if b.Edges[from][to] != e {
				t.Fatalf("%s->%s differs: %+v vs %+v", from, to, e, b.Edges[from][to])
			}
		}
	}
}
