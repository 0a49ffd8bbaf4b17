// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package floe

import (
	"math/rand"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/Caltech-OCTO/subzero/geom"
)

// minSeedCountWarning is the seed-count floor below which GenerateVoronoiSeeds
// logs a ConvergenceWarning (spec §4.E: "emits a warning if the count falls
// below a threshold").
const minSeedCountWarning = 2

// GenerateVoronoiSeeds samples seed points inside container, targeting
// targetCount seeds actually landing inside the polygon. Because rejection
// sampling against a non-convex or hole-bearing container wastes draws
// proportional to the container's area fraction of its own bounding box,
// the raw sample count is scaled by 1/area_fraction before each batch, per
// spec §4.E.
func GenerateVoronoiSeeds(container *geom.Polygon, targetCount, maxTries int, rng *rand.Rand) ([]geom.Point, error) {
	if targetCount < 1 {
		targetCount = 1
	}
	bbox := geom.BoundingBoxPolygon(container)
	areaFraction := container.Area() / bbox.Area()
	if areaFraction <= 0 {
		areaFraction = 1e-6
	}
	scaledBatch := int(float64(targetCount)/areaFraction) + 1

	minX, maxX := bbox.Outer[0].X, bbox.Outer[1].X
	minY, maxY := bbox.Outer[0].Y, bbox.Outer[2].Y

	var seeds []geom.Point
	for tries := 0; len(seeds) < targetCount && tries < maxTries; tries++ {
		for i := 0; i < scaledBatch && len(seeds) < targetCount; i++ {
			pt := geom.Point{X: minX + rng.Float64()*(maxX-minX), Y: minY + rng.Float64()*(maxY-minY)}
			if geom.PointInPolygon(pt, container) != geom.Outside {
				seeds = append(seeds, pt)
			}
		}
	}
	if len(seeds) < minSeedCountWarning {
		warn := chk.Err("ConvergenceWarning: Voronoi seeding produced only %d points (wanted %d)", len(seeds), targetCount)
		io.Pfyel("%v\n", warn)
		return seeds, warn
	}
	return seeds, nil
}

// halfPlaneToward returns a large convex polygon covering the half-plane of
// points closer to a than to b (the side of the perpendicular bisector of
// segment a-b containing a), clipped to a square of side 2*extent that has
// one edge on the bisector, centered on the bisector's midpoint along it.
func halfPlaneToward(a, b geom.Point, extent float64) *geom.Polygon {
	d := b.Sub(a)
	n := d.Norm()
	if n < 1e-12 {
		// degenerate: a and b coincide; return a square of half-side extent around a
		box, _ := geom.New([]geom.Point{{a.X - extent, a.Y - extent}, {a.X + extent, a.Y - extent}, {a.X + extent, a.Y + extent}, {a.X - extent, a.Y + extent}})
		return box
	}
	d = geom.Point{X: d.X / n, Y: d.Y / n}
	perp := geom.Point{X: -d.Y, Y: d.X}
	mid := geom.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}

	p1 := mid.Add(perp.Scale(extent))
	p2 := mid.Sub(perp.Scale(extent))
	p3 := p2.Sub(d.Scale(2 * extent))
	p4 := p1.Sub(d.Scale(2 * extent))
	poly, err := geom.New([]geom.Point{p1, p2, p3, p4})
	if err != nil {
		chk.Panic("internal: half-plane polygon degenerate: %v", err)
	}
	return poly
}

// VoronoiTessellate partitions container into Voronoi cells, one per seed,
// by iteratively clipping container with the half-plane bisectors toward
// every other seed. Cells are returned in seed order; a seed whose cell
// collapses to (near) zero area is omitted.
func VoronoiTessellate(container *geom.Polygon, seeds []geom.Point) []*geom.Polygon {
	bbox := geom.BoundingBoxPolygon(container)
	extent := 10 * (bbox.Outer[1].X - bbox.Outer[0].X + bbox.Outer[2].Y - bbox.Outer[1].Y + 1)

	cells := make([]*geom.Polygon, 0, len(seeds))
	for i, s := range seeds {
		pieces := []*geom.Polygon{container}
		for j, t := range seeds {
			if i == j {
				continue
			}
			hp := halfPlaneToward(s, t, extent)
			var next []*geom.Polygon
			for _, piece := range pieces {
				next = append(next, geom.Intersect(piece, hp)...)
			}
			pieces = next
			if len(pieces) == 0 {
				break
			}
		}
		best := largestByArea(pieces)
		if best != nil && best.Area() > 1e-9 {
			cells = append(cells, best)
		}
	}
	return cells
}

func largestByArea(polys []*geom.Polygon) *geom.Polygon {
	var best *geom.Polygon
	bestArea := -1.0
	for _, p := range polys {
		if a := p.Area(); a > bestArea {
			bestArea = a
			best = p
		}
	}
	return best
}
