// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package floe

import (
	"math/rand"

	"github.com/cpmech/gosl/chk"

	"github.com/Caltech-OCTO/subzero/geom"
)

// MaxHeight is the upper bound floe thickness is clamped to, both at
// construction and every integrator step (spec §4.D).
const MaxHeight = 10.0

// MinMass is the mass floor below which a floe is resurrected and marked
// for removal by the integrator (spec §4.D).
const MinMass = 100.0

// IDCounter hands out unique, monotonically increasing floe IDs.
type IDCounter struct{ next int }

// NewIDCounter returns a counter whose first Next() call returns start.
func NewIDCounter(start int) *IDCounter { return &IDCounter{next: start} }

// Next returns the next unused ID.
func (o *IDCounter) Next() int {
	id := o.next
	o.next++
	return id
}

// Peek returns the next ID that will be handed out, without consuming it.
func (o *IDCounter) Peek() int { return o.next }

// Params bundles the physical/numerical parameters needed to build a floe
// from geometry alone.
type Params struct {
	Rho               float64 // ice density, kg/m^3
	SubFloePointCount int
	SubFloeGenerator  SubFloePointGenerator
	StressHistoryLen  int
	RNG               *rand.Rand
}

// SplitHoles recursively cuts poly around its first hole (geom.SplitAroundFirstHole)
// until every resulting piece is hole-free, per spec §4.D "splitting around
// holes". A poly with no holes is returned unchanged as a single-element
// slice.
func SplitHoles(poly *geom.Polygon) []*geom.Polygon {
	queue := []*geom.Polygon{poly}
	var out []*geom.Polygon
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if !p.HasHole() {
			if p.Area() > 1e-9 {
				out = append(out, p)
			}
			continue
		}
		below, above, err := geom.SplitAroundFirstHole(p)
		if err != nil {
			continue
		}
		queue = append(queue, below...)
		queue = append(queue, above...)
	}
	return out
}

// FromPolygon builds a single floe from a hole-free polygon, at rest
// (u=v=ξ=α=0). The polygon must have area > 0 and at least 3 distinct
// vertices (already guaranteed by geom.New); height <= 0 is an
// ArgumentOutOfRange error.
func FromPolygon(poly *geom.Polygon, height float64, id int, p Params) (*Floe, error) {
	if height <= 0 {
		return nil, chk.Err("ArgumentOutOfRange: floe height must be positive, got %v", height)
	}
	if poly.HasHole() {
		return nil, chk.Err("InvalidGeometry: FromPolygon requires a hole-free polygon; call SplitHoles first")
	}
	h := height
	if h > MaxHeight {
		h = MaxHeight
	}
	area := poly.Area()
	if area <= 0 {
		return nil, chk.Err("InvalidGeometry: polygon has non-positive area")
	}
	centroid := poly.Centroid()
	rmax := poly.MaxRadius(centroid)
	mass := p.Rho * h * area
	centered := poly.Translate(-centroid.X, -centroid.Y)
	moment := geom.MomentsOfInertia(centered, p.Rho, h)

	n := p.SubFloePointCount
	if n < 1 {
		n = 1
	}
	xs, ys := GenerateSubFloePoints(poly, centroid, n, p.SubFloeGenerator, p.RNG)

	histLen := p.StressHistoryLen
	if histLen < 1 {
		histLen = 1
	}

	return &Floe{
		Polygon:          poly,
		Centroid:         centroid,
		Area:             area,
		Rmax:             rmax,
		Height:           h,
		Mass:             mass,
		Moment:           moment,
		SubFloePointsX:   xs,
		SubFloePointsY:   ys,
		Status:           Active,
		ID:               id,
		History:          NewStressHistory(histLen),
	}, nil
}

// FromCoords is a convenience wrapper building a floe directly from a ring
// of (x,y) coordinates.
func FromCoords(coords []geom.Point, height float64, id int, p Params) (*Floe, error) {
	poly, err := geom.New(coords)
	if err != nil {
		return nil, err
	}
	return FromPolygon(poly, height, id, p)
}

// FromPolygonSplittingHoles constructs one or more floes from poly, cutting
// around holes first (spec §4.D). Heights are uniform across pieces.
func FromPolygonSplittingHoles(poly *geom.Polygon, height float64, ids *IDCounter, p Params) ([]*Floe, error) {
	pieces := SplitHoles(poly)
	if len(pieces) == 0 {
		return nil, chk.Err("InvalidGeometry: polygon has no hole-free area")
	}
	out := make([]*Floe, 0, len(pieces))
	for _, piece := range pieces {
		f, err := FromPolygon(piece, height, ids.Next(), p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// FillVoronoi tiles container with a Voronoi tessellation of the requested
// piece count and builds one floe per non-degenerate cell, per spec §4.D
// "Voronoi tessellation fill". Returns the warning from seed generation (if
// any) alongside the floes, never an error for a partial fill.
func FillVoronoi(container *geom.Polygon, pieceCount int, height float64, ids *IDCounter, p Params, maxTries int) ([]*Floe, error) {
	seeds, warn := GenerateVoronoiSeeds(container, pieceCount, maxTries, p.RNG)
	cells := VoronoiTessellate(container, seeds)
	out := make([]*Floe, 0, len(cells))
	for _, cell := range cells {
		noHoles := cell.RemoveHoles()
		f, err := FromPolygon(noHoles, height, ids.Next(), p)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, warn
}
