// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package floe

import (
	"math"
	"math/rand"

	"github.com/Caltech-OCTO/subzero/geom"
)

// SubFloePointGenerator names a strategy for placing sub-floe quadrature
// points, matching spec §6's "subfloe_point_generator" config option.
type SubFloePointGenerator string

const (
	// SubGridGenerator lays points on a regular grid inside the bounding
	// box, keeping only those inside the polygon.
	SubGridGenerator SubFloePointGenerator = "subgrid"
	// MonteCarloGenerator samples points uniformly inside the bounding box,
	// rejecting those outside the polygon, using the simulation's seeded
	// RNG stream (spec §6 "RNG").
	MonteCarloGenerator SubFloePointGenerator = "montecarlo"
)

// GenerateSubFloePoints returns offsets (relative to centroid) to use as
// force-integration quadrature points over the floe footprint. The subgrid
// generator keeps the points of a ceil(sqrt(n)) x ceil(sqrt(n)) grid that
// lie inside the polygon, so it can return more or fewer than n; the
// montecarlo generator returns at most n. If no point lands inside, the
// single offset (0,0) is returned.
func GenerateSubFloePoints(poly *geom.Polygon, centroid geom.Point, n int, kind SubFloePointGenerator, rng *rand.Rand) (xs, ys []float64) {
	if n < 1 {
		n = 1
	}
	switch kind {
	case MonteCarloGenerator:
		return monteCarloSubFloePoints(poly, centroid, n, rng)
	default:
		return subGridSubFloePoints(poly, centroid, n)
	}
}

func subGridSubFloePoints(poly *geom.Polygon, centroid geom.Point, n int) (xs, ys []float64) {
	side := int(math.Ceil(math.Sqrt(float64(n))))
	bbox := geom.BoundingBoxPolygon(poly)
	minX, maxX := bbox.Outer[0].X, bbox.Outer[1].X
	minY, maxY := bbox.Outer[0].Y, bbox.Outer[2].Y
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			fx := (float64(i) + 0.5) / float64(side)
			fy := (float64(j) + 0.5) / float64(side)
			pt := geom.Point{X: minX + fx*(maxX-minX), Y: minY + fy*(maxY-minY)}
			if geom.PointInPolygon(pt, poly) == geom.Outside {
				continue
			}
			xs = append(xs, pt.X-centroid.X)
			ys = append(ys, pt.Y-centroid.Y)
		}
	}
	if len(xs) == 0 {
		xs, ys = []float64{0}, []float64{0}
	}
	return
}

func monteCarloSubFloePoints(poly *geom.Polygon, centroid geom.Point, n int, rng *rand.Rand) (xs, ys []float64) {
	bbox := geom.BoundingBoxPolygon(poly)
	minX, maxX := bbox.Outer[0].X, bbox.Outer[1].X
	minY, maxY := bbox.Outer[0].Y, bbox.Outer[2].Y
	maxTries := n * 200
	for tries := 0; len(xs) < n && tries < maxTries; tries++ {
		pt := geom.Point{
			X: minX + rng.Float64()*(maxX-minX),
			Y: minY + rng.Float64()*(maxY-minY),
		}
		if geom.PointInPolygon(pt, poly) == geom.Outside {
			continue
		}
		xs = append(xs, pt.X-centroid.X)
		ys = append(ys, pt.Y-centroid.Y)
	}
	if len(xs) == 0 {
		xs, ys = []float64{0}, []float64{0}
	}
	return
}
