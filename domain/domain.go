// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domain implements the four directional boundary walls, immovable
// topography, and the bounded rectangular domain they enclose.
package domain

import (
	"github.com/cpmech/gosl/chk"

	"github.com/Caltech-OCTO/subzero/geom"
)

// Direction is one of the four cardinal walls of the domain.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

func (o Direction) String() string {
	switch o {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return "?"
}

// Kind is the behavior a boundary wall exhibits on contact with a floe.
type Kind int

const (
	// OpenKind: a floe crossing the wall is marked Remove.
	OpenKind Kind = iota
	// PeriodicKind: paired with the opposite wall; floes wrap via ghosts.
	PeriodicKind
	// CollisionKind: a rigid, stationary wall.
	CollisionKind
	// MovingKind: a rigid wall translating at (U,V).
	MovingKind
)

// Boundary is one wall of the domain.
type Boundary struct {
	Dir  Direction
	Kind Kind
	Val  float64 // edge coordinate: x for East/West, y for North/South
	U, V float64 // translation velocity, only meaningful for MovingKind

	// wallThickness is how far the collision bounding-box polygon extends
	// beyond Val, used for bounding-circle-vs-wall pruning in the collision
	// engine.
	wallThickness float64
}

// NewBoundary constructs a wall. wallThickness controls how deep the
// collision bounding-box polygon (see BoundingBox) extends past Val; pass 0
// to use a default of 1 (an arbitrary unit thickness — the wall is treated
// as a half-plane by the force law regardless of thickness).
func NewBoundary(dir Direction, kind Kind, val float64, u, v, wallThickness float64) *Boundary {
	if wallThickness <= 0 {
		wallThickness = 1
	}
	return &Boundary{Dir: dir, Kind: kind, Val: val, U: u, V: v, wallThickness: wallThickness}
}

// Periodic reports whether this wall is a periodic boundary.
func (o *Boundary) Periodic() bool { return o.Kind == PeriodicKind }

// Advance translates a Moving wall by one timestep; a no-op for other kinds.
func (o *Boundary) Advance(dt float64) {
	if o.Kind != MovingKind {
		return
	}
	switch o.Dir {
	case North, South:
		o.Val += o.V * dt
	case East, West:
		o.Val += o.U * dt
	}
}

// BoundingBox returns a polygon spanning the domain's cross-extent and
// extending wallThickness beyond Val, on the outside of the domain —
// used by the collision engine's bounding-circle-vs-wall prune.
func (o *Boundary) BoundingBox(d *Domain) *geom.Polygon {
	x0, xf := d.West.Val, d.East.Val
	y0, yf := d.South.Val, d.North.Val
	var pts []geom.Point
	switch o.Dir {
	case North:
		pts = []geom.Point{{x0, yf}, {xf, yf}, {xf, yf + o.wallThickness}, {x0, yf + o.wallThickness}}
	case South:
		pts = []geom.Point{{x0, y0 - o.wallThickness}, {xf, y0 - o.wallThickness}, {xf, y0}, {x0, y0}}
	case East:
		pts = []geom.Point{{xf, y0}, {xf + o.wallThickness, y0}, {xf + o.wallThickness, yf}, {xf, yf}}
	case West:
		pts = []geom.Point{{x0 - o.wallThickness, y0}, {x0, y0}, {x0, yf}, {x0 - o.wallThickness, yf}}
	}
	poly, err := geom.New(pts)
	if err != nil {
		chk.Panic("internal: wall bounding box degenerate: %v", err)
	}
	return poly
}

// Tangent returns the unit tangent direction of the wall; the collision
// engine removes the component of a wall force along this direction.
func (o *Boundary) Tangent() geom.Point {
	switch o.Dir {
	case North, South:
		return geom.Point{X: 1, Y: 0}
	default:
		return geom.Point{X: 0, Y: 1}
	}
}

// Normal returns the outward unit normal of the wall.
func (o *Boundary) Normal() geom.Point {
	switch o.Dir {
	case North:
		return geom.Point{X: 0, Y: 1}
	case South:
		return geom.Point{X: 0, Y: -1}
	case East:
		return geom.Point{X: 1, Y: 0}
	default:
		return geom.Point{X: -1, Y: 0}
	}
}

// Topography is an immovable, unbreakable obstacle.
type Topography struct {
	Polygon  *geom.Polygon
	Centroid geom.Point
	Rmax     float64
}

// NewTopography removes holes from poly (spec: "all floes and topography
// store polygons without holes after construction") and precomputes its
// centroid and bounding radius.
func NewTopography(poly *geom.Polygon) *Topography {
	p := poly.RemoveHoles()
	c := p.Centroid()
	return &Topography{Polygon: p, Centroid: c, Rmax: p.MaxRadius(c)}
}

// Domain is the bounded rectangular simulation area.
type Domain struct {
	North, South, East, West *Boundary
	Topography               []*Topography
}

// New validates and constructs a Domain per spec §3's rule: north.val >
// south.val, east.val > west.val, and each opposite pair must be both
// periodic or both non-periodic.
func New(north, south, east, west *Boundary, topo []*Topography) (*Domain, error) {
	if north.Val <= south.Val {
		return nil, chk.Err("DomainInvariant: north.val (%v) must exceed south.val (%v)", north.Val, south.Val)
	}
	if east.Val <= west.Val {
		return nil, chk.Err("DomainInvariant: east.val (%v) must exceed west.val (%v)", east.Val, west.Val)
	}
	if north.Periodic() != south.Periodic() {
		return nil, chk.Err("DomainInvariant: north and south must both be periodic or both non-periodic")
	}
	if east.Periodic() != west.Periodic() {
		return nil, chk.Err("DomainInvariant: east and west must both be periodic or both non-periodic")
	}
	return &Domain{North: north, South: south, East: east, West: west, Topography: topo}, nil
}

// Width returns east.val - west.val.
func (o *Domain) Width() float64 { return o.East.Val - o.West.Val }

// Height returns north.val - south.val.
func (o *Domain) Height() float64 { return o.North.Val - o.South.Val }

// Contains reports whether pt lies strictly inside the rectangular domain.
func (o *Domain) Contains(pt geom.Point) bool {
	return pt.X > o.West.Val && pt.X < o.East.Val && pt.Y > o.South.Val && pt.Y < o.North.Val
}

// AdvanceBoundaries moves every Moving wall by one timestep.
func (o *Domain) AdvanceBoundaries(dt float64) {
	o.North.Advance(dt)
	o.South.Advance(dt)
	o.East.Advance(dt)
	o.West.Advance(dt)
}

// Walls returns the four boundaries in a fixed order, convenient for
// iteration in the collision engine.
func (o *Domain) Walls() [4]*Boundary {
	return [4]*Boundary{o.North, o.South, o.East, o.West}
}
