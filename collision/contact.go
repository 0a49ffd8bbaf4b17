// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"math"

	"github.com/Caltech-OCTO/subzero/geom"
)

const boundaryEps = 1e-6

// contactAxis finds the unit force axis for an overlap region between two
// polygons, per spec §4.C.1. It returns ok=false if no stable axis could be
// determined (degenerate/near-zero overlap shape).
//
// If the overlap boundary crosses the two source polygons' boundaries at
// exactly two points, the axis is the perpendicular to the chord between
// them. Otherwise it is the average outward normal of polyA along the
// overlap edges that lie on polyA's own boundary.
func contactAxis(overlap *geom.Polygon, polyA, polyB *geom.Polygon) (geom.Point, bool) {
	ring := ccwRing(overlap.Outer)
	n := len(ring)
	if n < 3 {
		return geom.Point{}, false
	}

	var crossings []geom.Point
	for _, v := range ring {
		if math.Abs(geom.SignedDistance(v, polyA)) < boundaryEps && math.Abs(geom.SignedDistance(v, polyB)) < boundaryEps {
			crossings = append(crossings, v)
		}
	}

	if len(crossings) == 2 {
		chord := crossings[1].Sub(crossings[0])
		axis := geom.Point{X: -chord.Y, Y: chord.X}
		if l := axis.Norm(); l > 1e-12 {
			axis = axis.Scale(1 / l)
		} else {
			return geom.Point{}, false
		}
		toward := polyA.Centroid().Sub(polyB.Centroid())
		if axis.Dot(toward) < 0 {
			axis = axis.Scale(-1)
		}
		return axis, true
	}

	sum := geom.Point{}
	for i := 0; i < n; i++ {
		p, q := ring[i], ring[(i+1)%n]
		mid := geom.Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
		if math.Abs(geom.SignedDistance(mid, polyA)) >= boundaryEps {
			continue
		}
		d := q.Sub(p)
		sum = sum.Add(geom.Point{X: d.Y, Y: -d.X})
	}
	l := sum.Norm()
	if l < 1e-12 {
		return geom.Point{}, false
	}
	return sum.Scale(1 / l), true
}

// ccwRing returns the open ring of pts, flipped to counter-clockwise
// orientation if necessary.
func ccwRing(pts []geom.Point) []geom.Point {
	n := len(pts)
	if n > 0 && pts[0].Dist(pts[n-1]) < 1e-12 {
		pts = pts[:n-1]
	}
	area := 0.0
	m := len(pts)
	for i := 0; i < m; i++ {
		j := (i + 1) % m
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if area >= 0 {
		return pts
	}
	out := make([]geom.Point, m)
	for i, p := range pts {
		out[m-1-i] = p
	}
	return out
}

// velocityAt returns the velocity of a rigid body (u,v,xi) about center c at
// point p: u - xi*(p.y-c.y), v + xi*(p.x-c.x).
func velocityAt(u, v, xi float64, c, p geom.Point) geom.Point {
	return geom.Point{
		X: u - xi*(p.Y-c.Y),
		Y: v + xi*(p.X-c.X),
	}
}

// frictionForce implements spec §4.C.2: shear friction opposing relative
// sliding at the contact point, capped by the Coulomb limit.
func frictionForce(relVel geom.Point, normalMag, contactLen, dt, youngsE, nu, mu float64) geom.Point {
	speed := relVel.Norm()
	if speed < 1e-12 {
		return geom.Point{}
	}
	tangent := relVel.Scale(1 / speed)
	shearG := youngsE / (2 * (1 + nu))
	mag := -shearG * contactLen * dt * normalMag * relVel.Dot(tangent)
	coulombLimit := mu * normalMag
	if math.Abs(mag) > coulombLimit {
		if mag < 0 {
			mag = -coulombLimit
		} else {
			mag = coulombLimit
		}
	}
	return tangent.Scale(mag)
}
