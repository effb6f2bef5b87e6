package presentation

import (
	"fmt"
	"math"
	"strings"

	"growthos/internal/types"
)

// RadarPoint is one axis of the readiness radar chart
type RadarPoint struct {
	Label    string `json:"label"`
	FullName string `json:"fullName"`
	Score    int    `json:"score"`
}

// RadarPoints returns one point per domain in display order. Missing scores are 0.
func RadarPoints(a *types.GapAnalysis) []RadarPoint {
	points := make([]RadarPoint, len(types.Domains))
	for i, d := range types.Domains {
		points[i] = RadarPoint{
			Label:    d.ShortLabel(),
			FullName: string(d),
			Score:    a.Score(d),
		}
	}
	return points
}

// RadarAxis is the SVG geometry for a single axis end and its label
type RadarAxis struct {
	X, Y           float64
	LabelX, LabelY float64
	Label          string
}

// RadarShape is the SVG geometry for a radar chart centred at (Size/2, Size/2)
type RadarShape struct {
	Size    int
	Polygon string
	Rings   []string
	Axes    []RadarAxis
}

// BuildRadarShape lays out points on a regular polygon starting at 12 o'clock.
// Scores are clamped to 0-100.
func BuildRadarShape(points []RadarPoint, size int) RadarShape {
	shape := RadarShape{Size: size}
	n := len(points)
	if n == 0 || size <= 0 {
		return shape
	}

	c := float64(size) / 2
	radius := c * 0.7

	vertex := func(i int, r float64) (float64, float64) {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		return round1(c + r*math.Cos(angle)), round1(c + r*math.Sin(angle))
	}

	for _, frac := range []float64{0.25, 0.5, 0.75, 1} {
		coords := make([]string, n)
		for i := range points {
			x, y := vertex(i, radius*frac)
			coords[i] = fmt.Sprintf("%g,%g", x, y)
		}
		shape.Rings = append(shape.Rings, strings.Join(coords, " "))
	}

	coords := make([]string, n)
	for i, p := range points {
		score := min(max(p.Score, 0), 100)
		x, y := vertex(i, radius*float64(score)/100)
		coords[i] = fmt.Sprintf("%g,%g", x, y)

		ax, ay := vertex(i, radius)
		lx, ly := vertex(i, radius+c*0.18)
		shape.Axes = append(shape.Axes, RadarAxis{X: ax, Y: ay, LabelX: lx, LabelY: ly, Label: p.Label})
	}
	shape.Polygon = strings.Join(coords, " ")

	return shape
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
