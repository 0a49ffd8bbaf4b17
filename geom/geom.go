// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom implements the planar polygon kernel: area, centroid,
// intersection, difference, rigid transforms, point/line queries and the
// horizontal splits used by the fracture engine.
package geom

import (
	"math"

	"github.com/cpmech/gosl/chk"
	polyclip "github.com/ctessum/polyclip-go"
)

// vertexEps is the minimum distance between two vertices for them to be
// considered distinct.
const vertexEps = 1e-9

// Point is a planar coordinate.
type Point struct {
	X, Y float64
}

// Sub returns o-p.
func (o Point) Sub(p Point) Point { return Point{o.X - p.X, o.Y - p.Y} }

// Add returns o+p.
func (o Point) Add(p Point) Point { return Point{o.X + p.X, o.Y + p.Y} }

// Scale returns o scaled by f.
func (o Point) Scale(f float64) Point { return Point{o.X * f, o.Y * f} }

// Norm returns the Euclidean length of o.
func (o Point) Norm() float64 { return math.Hypot(o.X, o.Y) }

// Dist returns the distance between o and p.
func (o Point) Dist(p Point) float64 { return o.Sub(p).Norm() }

// Cross returns the 2-D cross product (z component) of o and p.
func (o Point) Cross(p Point) float64 { return o.X*p.Y - o.Y*p.X }

// Dot returns the dot product of o and p.
func (o Point) Dot(p Point) float64 { return o.X*p.X + o.Y*p.Y }

// Polygon is a simple polygon with an outer ring and zero or more holes.
// Rings are closed: Outer[0] == Outer[len(Outer)-1].
type Polygon struct {
	Outer []Point
	Holes [][]Point
}

// New validates and constructs a polygon from an open or closed ring. The
// ring is closed automatically if the caller did not repeat the first
// vertex. Coincident adjacent vertices are dropped. Fewer than three
// distinct vertices is an InvalidGeometry error.
func New(ring []Point) (*Polygon, error) {
	closed, err := closeRing(ring)
	if err != nil {
		return nil, err
	}
	return &Polygon{Outer: closed}, nil
}

// NewWithHoles constructs a polygon with an outer ring and inner-ring holes.
func NewWithHoles(outer []Point, holes [][]Point) (*Polygon, error) {
	p, err := New(outer)
	if err != nil {
		return nil, err
	}
	for _, h := range holes {
		ch, err := closeRing(h)
		if err != nil {
			return nil, err
		}
		p.Holes = append(p.Holes, ch)
	}
	return p, nil
}

func closeRing(ring []Point) ([]Point, error) {
	pts := dedupeAdjacent(ring)
	if len(pts) >= 2 && pts[0].Dist(pts[len(pts)-1]) < vertexEps {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, chk.Err("InvalidGeometry: ring has %d distinct vertices, need at least 3", len(pts))
	}
	closed := make([]Point, 0, len(pts)+1)
	closed = append(closed, pts...)
	closed = append(closed, pts[0])
	return closed, nil
}

func dedupeAdjacent(ring []Point) []Point {
	out := make([]Point, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && out[len(out)-1].Dist(p) < vertexEps {
			continue
		}
		out = append(out, p)
	}
	return out
}

// HasHole reports whether the polygon carries any inner rings.
func (o *Polygon) HasHole() bool { return len(o.Holes) > 0 }

// RemoveHoles returns a copy of o with all holes dropped.
func (o *Polygon) RemoveHoles() *Polygon {
	return &Polygon{Outer: append([]Point(nil), o.Outer...)}
}

// ring returns the open vertex list (no repeated closing vertex).
func ring(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	if pts[0].Dist(pts[len(pts)-1]) < vertexEps {
		return pts[:len(pts)-1]
	}
	return pts
}

// shoelaceArea returns the signed area of an open ring (positive if
// counter-clockwise).
func shoelaceArea(pts []Point) float64 {
	o := ring(pts)
	n := len(o)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return sum / 2
}

// Area returns the polygon's area (outer ring minus holes), always >= 0.
func (o *Polygon) Area() float64 {
	a := math.Abs(shoelaceArea(o.Outer))
	for _, h := range o.Holes {
		a -= math.Abs(shoelaceArea(h))
	}
	if a < 0 {
		a = 0
	}
	return a
}

// Centroid returns the area-weighted centroid of the outer ring, corrected
// for holes.
func (o *Polygon) Centroid() Point {
	cx, cy, a := ringCentroidMoment(o.Outer)
	outerCCW := a > 0
	for _, h := range o.Holes {
		hx, hy, ha := ringCentroidMoment(h)
		// a hole removes area whichever way its own ring runs
		if (ha > 0) != outerCCW {
			hx, hy, ha = -hx, -hy, -ha
		}
		cx -= hx
		cy -= hy
		a -= ha
	}
	if math.Abs(a) < 1e-300 {
		return Point{}
	}
	return Point{cx / (3 * a), cy / (3 * a)}
}

// ringCentroidMoment returns the first moments and signed area of a ring;
// the centroid is (mx/(3*a), my/(3*a)).
func ringCentroidMoment(pts []Point) (mx, my, a float64) {
	o := ring(pts)
	n := len(o)
	if n < 3 {
		return 0, 0, 0
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := o[i].X*o[j].Y - o[j].X*o[i].Y
		mx += (o[i].X + o[j].X) * cross
		my += (o[i].Y + o[j].Y) * cross
		a += cross
	}
	a /= 2
	return mx, my, a
}

// MaxRadius returns the maximum distance from c to any vertex (outer ring
// and holes).
func (o *Polygon) MaxRadius(c Point) float64 {
	rmax := 0.0
	for _, v := range ring(o.Outer) {
		if d := c.Dist(v); d > rmax {
			rmax = d
		}
	}
	for _, h := range o.Holes {
		for _, v := range ring(h) {
			if d := c.Dist(v); d > rmax {
				rmax = d
			}
		}
	}
	return rmax
}

// Translate returns a copy of o shifted by (dx,dy).
func (o *Polygon) Translate(dx, dy float64) *Polygon {
	return o.transform(func(pt Point) Point { return Point{pt.X + dx, pt.Y + dy} })
}

// Rotate returns a copy of o rotated by theta radians (counter-clockwise)
// about the point `about`.
func (o *Polygon) Rotate(theta float64, about Point) *Polygon {
	s, c := math.Sin(theta), math.Cos(theta)
	return o.transform(func(pt Point) Point {
		dx, dy := pt.X-about.X, pt.Y-about.Y
		return Point{about.X + dx*c - dy*s, about.Y + dx*s + dy*c}
	})
}

// Scale returns a copy of o scaled by factor about the point `about`.
func (o *Polygon) Scale(factor float64, about Point) *Polygon {
	return o.transform(func(pt Point) Point {
		return Point{about.X + (pt.X-about.X)*factor, about.Y + (pt.Y-about.Y)*factor}
	})
}

func (o *Polygon) transform(f func(Point) Point) *Polygon {
	out := &Polygon{Outer: make([]Point, len(o.Outer))}
	for i, v := range o.Outer {
		out.Outer[i] = f(v)
	}
	for _, h := range o.Holes {
		nh := make([]Point, len(h))
		for i, v := range h {
			nh[i] = f(v)
		}
		out.Holes = append(out.Holes, nh)
	}
	return out
}

// PointLocation is the result of a point-in-polygon query.
type PointLocation int

const (
	Outside PointLocation = iota
	Inside
	OnBoundary
)

// PointInPolygon classifies pt against p using a winding-number test on the
// outer ring with holes treated as exclusions.
func PointInPolygon(pt Point, p *Polygon) PointLocation {
	if onRing(pt, p.Outer) {
		return OnBoundary
	}
	if !windingContains(pt, p.Outer) {
		return Outside
	}
	for _, h := range p.Holes {
		if onRing(pt, h) {
			return OnBoundary
		}
		if windingContains(pt, h) {
			return Outside
		}
	}
	return Inside
}

func onRing(pt Point, pts []Point) bool {
	o := ring(pts)
	n := len(o)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if distToSegment(pt, o[i], o[j]) < vertexEps {
			return true
		}
	}
	return false
}

// windingContains implements the standard winding-number inclusion test.
func windingContains(pt Point, pts []Point) bool {
	o := ring(pts)
	n := len(o)
	wn := 0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := o[i], o[j]
		if a.Y <= pt.Y {
			if b.Y > pt.Y && isLeft(a, b, pt) > 0 {
				wn++
			}
		} else {
			if b.Y <= pt.Y && isLeft(a, b, pt) < 0 {
				wn--
			}
		}
	}
	return wn != 0
}

func isLeft(a, b, pt Point) float64 {
	return (b.X-a.X)*(pt.Y-a.Y) - (pt.X-a.X)*(b.Y-a.Y)
}

func distToSegment(pt, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < 1e-300 {
		return pt.Dist(a)
	}
	t := pt.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := a.Add(ab.Scale(t))
	return pt.Dist(proj)
}

// SignedDistance returns the signed distance from pt to the polygon
// boundary: negative inside, positive outside, magnitude = distance to the
// nearest edge of the outer ring or any hole.
func SignedDistance(pt Point, p *Polygon) float64 {
	d := nearestRingDistance(pt, p.Outer)
	for _, h := range p.Holes {
		if hd := nearestRingDistance(pt, h); hd < d {
			d = hd
		}
	}
	if PointInPolygon(pt, p) == Inside {
		return -d
	}
	return d
}

func nearestRingDistance(pt Point, pts []Point) float64 {
	o := ring(pts)
	n := len(o)
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if d := distToSegment(pt, o[i], o[j]); d < best {
			best = d
		}
	}
	return best
}

// LineIntersection returns the intersection point of segments (a1,a2) and
// (b1,b2), if any.
func LineIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	denom := r.Cross(s)
	if math.Abs(denom) < 1e-300 {
		return Point{}, false
	}
	qp := b1.Sub(a1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < -vertexEps || t > 1+vertexEps || u < -vertexEps || u > 1+vertexEps {
		return Point{}, false
	}
	return a1.Add(r.Scale(t)), true
}

// --- boolean ops, backed by polyclip-go ---

func toPolyclip(p *Polygon) polyclip.Polygon {
	pc := polyclip.Polygon{toContour(p.Outer)}
	for _, h := range p.Holes {
		pc = append(pc, toContour(h))
	}
	return pc
}

func toContour(pts []Point) polyclip.Contour {
	o := ring(pts)
	c := make(polyclip.Contour, len(o))
	for i, v := range o {
		c[i] = polyclip.Point{X: v.X, Y: v.Y}
	}
	return c
}

// fromPolyclip splits a polyclip result (possibly several disjoint outer
// rings, each optionally followed by hole contours) into a list of simple
// polygons. polyclip does not tag contours as outer/hole, so orientation
// (Contour.Clockwise) is used: counter-clockwise contours are outer rings,
// clockwise contours are holes of the most recently started outer ring.
func fromPolyclip(pc polyclip.Polygon) []*Polygon {
	var out []*Polygon
	for _, c := range pc {
		if len(c) < 3 {
			continue
		}
		pts := make([]Point, len(c))
		for i, v := range c {
			pts[i] = Point{v.X, v.Y}
		}
		if c.Clockwise() && len(out) > 0 {
			out[len(out)-1].Holes = append(out[len(out)-1].Holes, pts)
			continue
		}
		poly, err := New(pts)
		if err != nil {
			continue
		}
		out = append(out, poly)
	}
	return out
}

// Intersect returns the (possibly empty, possibly multi-piece) intersection
// of p and q. Empty intersections are not an error (spec: "empty
// intersections return an empty list").
func Intersect(p, q *Polygon) []*Polygon {
	defer func() { recover() }() //nolint: polyclip panics on degenerate input; treat as empty
	res := toPolyclip(p).Construct(polyclip.INTERSECTION, toPolyclip(q))
	return fromPolyclip(res)
}

// Difference returns p \ q as a list of polygon pieces.
func Difference(p, q *Polygon) []*Polygon {
	defer func() { recover() }()
	res := toPolyclip(p).Construct(polyclip.DIFFERENCE, toPolyclip(q))
	return fromPolyclip(res)
}

// Union returns the union of p and q as a list of polygon pieces (more than
// one only if p and q are disjoint).
func Union(p, q *Polygon) []*Polygon {
	defer func() { recover() }()
	res := toPolyclip(p).Construct(polyclip.UNION, toPolyclip(q))
	return fromPolyclip(res)
}

// SplitAlongHorizontalLine cuts p with the horizontal line y=yLine and
// returns the pieces lying below and above it, each with holes removed.
func SplitAlongHorizontalLine(p *Polygon, yLine float64) (below, above []*Polygon) {
	bbox := boundingBox(p)
	pad := (bbox.maxX - bbox.minX) + (bbox.maxY - bbox.minY) + 1
	belowBox, _ := New([]Point{
		{bbox.minX - pad, bbox.minY - pad},
		{bbox.maxX + pad, bbox.minY - pad},
		{bbox.maxX + pad, yLine},
		{bbox.minX - pad, yLine},
	})
	aboveBox, _ := New([]Point{
		{bbox.minX - pad, yLine},
		{bbox.maxX + pad, yLine},
		{bbox.maxX + pad, bbox.maxY + pad},
		{bbox.minX - pad, bbox.maxY + pad},
	})
	noHoles := p.RemoveHoles()
	below = Intersect(noHoles, belowBox)
	above = Intersect(noHoles, aboveBox)
	return
}

// SplitAroundFirstHole cuts p horizontally through the centroid of its
// first hole and returns the below/above piece lists, with holes removed
// from the input beforehand.
func SplitAroundFirstHole(p *Polygon) (below, above []*Polygon, err error) {
	if !p.HasHole() {
		return nil, nil, chk.Err("SplitAroundFirstHole: polygon has no holes")
	}
	holePoly := &Polygon{Outer: append([]Point(nil), p.Holes[0]...)}
	c := holePoly.Centroid()
	below, above = SplitAlongHorizontalLine(&Polygon{Outer: p.Outer}, c.Y)
	return below, above, nil
}

type box struct{ minX, minY, maxX, maxY float64 }

func boundingBox(p *Polygon) box {
	o := ring(p.Outer)
	b := box{o[0].X, o[0].Y, o[0].X, o[0].Y}
	for _, v := range o {
		b.minX = math.Min(b.minX, v.X)
		b.minY = math.Min(b.minY, v.Y)
		b.maxX = math.Max(b.maxX, v.X)
		b.maxY = math.Max(b.maxY, v.Y)
	}
	return b
}

// BoundingBoxPolygon returns the axis-aligned bounding box of p as a polygon.
func BoundingBoxPolygon(p *Polygon) *Polygon {
	b := boundingBox(p)
	poly, _ := New([]Point{{b.minX, b.minY}, {b.maxX, b.minY}, {b.maxX, b.maxY}, {b.minX, b.maxY}})
	return poly
}

// MomentsOfInertia returns Ixx+Iyy (polar moment about the origin of the
// ring, i.e. about (0,0) in the polygon's own local/centroid frame when
// vertices are given relative to the centroid) scaled by rho*h, using
// Green's-theorem summation over the outer ring:
//
//	Ixx+Iyy = (rho*h/12) * |Σ (x_i*y_{i+1} - x_{i+1}*y_i) * (x_i^2+x_i*x_{i+1}+x_{i+1}^2 + y_i^2+y_i*y_{i+1}+y_{i+1}^2)|
func MomentsOfInertia(p *Polygon, rho, h float64) float64 {
	o := ring(p.Outer)
	n := len(o)
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := o[i].X*o[j].Y - o[j].X*o[i].Y
		xTerms := o[i].X*o[i].X + o[i].X*o[j].X + o[j].X*o[j].X
		yTerms := o[i].Y*o[i].Y + o[i].Y*o[j].Y + o[j].Y*o[j].Y
		sum += cross * (xTerms + yTerms)
	}
	return rho * h * math.Abs(sum) / 12
}

// InteriorAngles returns the interior angle at each vertex of the outer ring,
// orienting the ring clockwise first (gofem-style convex-angle test against
// adjacent edges).
func InteriorAngles(p *Polygon) []float64 {
	o := append([]Point(nil), ring(p.Outer)...)
	if shoelaceArea(o) > 0 { // currently CCW; reverse to CW
		for i, j := 0, len(o)-1; i < j; i, j = i+1, j-1 {
			o[i], o[j] = o[j], o[i]
		}
	}
	n := len(o)
	angles := make([]float64, n)
	for i := 0; i < n; i++ {
		prev := o[(i-1+n)%n]
		cur := o[i]
		next := o[(i+1)%n]
		v1 := prev.Sub(cur)
		v2 := next.Sub(cur)
		cosA := v1.Dot(v2) / (v1.Norm() * v2.Norm())
		cosA = math.Max(-1, math.Min(1, cosA))
		ang := math.Acos(cosA)
		// convex-angle test: if the cross product indicates a reflex vertex
		// (turning the "wrong" way for a clockwise ring), use the reflex angle
		if v1.Cross(v2) < 0 {
			ang = 2*math.Pi - ang
		}
		angles[i] = ang
	}
	return angles
}
