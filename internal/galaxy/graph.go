// Package galaxy generates the travel graph between locations.
// Edge jitter is sampled from seeded simplex noise, so a stored seed
// regenerates the same graph on load.
package galaxy

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	fuelScalar   = 3
	destBias     = 0.5
	noiseScale   = 0.37
	shortHopBase = 1
	baseTime     = 15
	timePerHop   = 10
)

// Edge is the cost of one directed trip.
type Edge struct {
	Time     int `json:"time"`
	FuelCost int `json:"fuel_cost"`
}

// Graph holds every directed edge between distinct locations.
type Graph struct {
	Seed  int64                      `json:"seed"`
	Order []string                   `json:"order"`
	Edges map[string]map[string]Edge `json:"edges"`
}

// Edge returns the edge from origin to dest.
func (g *Graph) Edge(origin, dest string) (Edge, bool) {
	e, ok := g.Edges[origin][dest]
	return e, ok
}

// From returns all edges leaving origin.
func (g *Graph) From(origin string) map[string]Edge {
	return g.Edges[origin]
}

// Generate builds the graph for locations in catalog order. Distance is the
// gap between list positions. shortHop names the pair of innermost stops
// that sit 1-3 days apart; pass nil for none.
func Generate(locations []string, shortHop []string, seed int64) *Graph {
	fuelNoise := opensimplex.NewNormalized(seed)
	timeNoise := opensimplex.NewNormalized(seed + 1)

	n := len(locations)
	g := &Graph{Seed: seed, Order: append([]string(nil), locations...), Edges: make(map[string]map[string]Edge, n)}
	for i, from := range locations {
		g.Edges[from] = make(map[string]Edge, n-1)
		for j, to := range locations {
			if i == j {
				continue
			}
			x, y := float64(i)*noiseScale, float64(j)*noiseScale
			distance := abs(i - j)

			fuelTime := distance*2 + jitter(fuelNoise, x, y, 3)
			fuelCost := int(math.Round(float64(fuelTime) * fuelScalar * (1 + float64(j)/float64(n)*destBias)))
			if fuelCost < 1 {
				fuelCost = 1
			}

			var t int
			if isShortHop(shortHop, from, to) {
				t = shortHopBase + jitter(timeNoise, x, y, 3)
			} else {
				t = baseTime + distance*timePerHop + jitter(timeNoise, x, y, 5)
			}
			if t < 1 {
				t = 1
			}
			g.Edges[from][to] = Edge{Time: t, FuelCost: fuelCost}
		}
	}
	return g
}

// jitter maps a noise sample onto an integer in [0, n).
func jitter(noise opensimplex.Noise, x, y float64, n int) int {
	v := int(noise.Eval2(x, y) * float64(n))
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func isShortHop(pair []string, a, b string) bool {
	if len(pair) != 2 {
		return false
	}
	return (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
