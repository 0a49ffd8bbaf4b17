// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func square(x0, y0, s float64) *Polygon {
	p, err := New([]Point{{x0, y0}, {x0 + s, y0}, {x0 + s, y0 + s}, {x0, y0 + s}})
	if err != nil {
		panic(err)
	}
	return p
}

func Test_area_square(tst *testing.T) {
	chk.PrintTitle("area_square")
	p := square(0, 0, 10)
	chk.Scalar(tst, "area", 1e-9, p.Area(), 100)
}

func Test_area_translate_invariant(tst *testing.T) {
	chk.PrintTitle("area_translate_invariant")
	p := square(0, 0, 10)
	q := p.Translate(5, -3)
	chk.Scalar(tst, "area after translation", 1e-9, q.Area(), p.Area())
}

func Test_centroid_square(tst *testing.T) {
	chk.PrintTitle("centroid_square")
	p := square(0, 0, 10)
	c := p.Centroid()
	chk.Scalar(tst, "centroid.X", 1e-9, c.X, 5)
	chk.Scalar(tst, "centroid.Y", 1e-9, c.Y, 5)
}

func Test_intersect_self(tst *testing.T) {
	chk.PrintTitle("intersect_self")
	p := square(0, 0, 10)
	res := Intersect(p, p)
	total := 0.0
	for _, r := range res {
		total += r.Area()
	}
	chk.Scalar(tst, "area(intersect(p,p))", 1e-6, total, p.Area())
}

func Test_difference_self_empty(tst *testing.T) {
	chk.PrintTitle("difference_self_empty")
	p := square(0, 0, 10)
	res := Difference(p, p)
	total := 0.0
	for _, r := range res {
		total += r.Area()
	}
	if total > 1e-6 {
		tst.Fatalf("difference(p,p) area = %v, want ~0", total)
	}
}

func Test_intersect_disjoint_empty(tst *testing.T) {
	chk.PrintTitle("intersect_disjoint_empty")
	p := square(0, 0, 1)
	q := square(100, 100, 1)
	res := Intersect(p, q)
	chk.IntAssert(len(res), 0)
}

func Test_pointInPolygon(tst *testing.T) {
	chk.PrintTitle("pointInPolygon")
	p := square(0, 0, 10)
	if PointInPolygon(Point{5, 5}, p) != Inside {
		tst.Fatalf("center should be inside")
	}
	if PointInPolygon(Point{-1, -1}, p) != Outside {
		tst.Fatalf("outside point should be outside")
	}
	if PointInPolygon(Point{0, 5}, p) != OnBoundary {
		tst.Fatalf("edge point should be on boundary")
	}
}

func Test_rmax_ge_vertex_distance(tst *testing.T) {
	chk.PrintTitle("rmax_ge_vertex_distance")
	p := square(0, 0, 10)
	c := p.Centroid()
	rmax := p.MaxRadius(c)
	for _, v := range p.Outer {
		if c.Dist(v) > rmax+1e-9 {
			tst.Fatalf("rmax %v smaller than vertex distance %v", rmax, c.Dist(v))
		}
	}
}

func Test_splitAlongHorizontalLine_conserves_area(tst *testing.T) {
	chk.PrintTitle("splitAlongHorizontalLine_conserves_area")
	p := square(0, 0, 10)
	below, above := SplitAlongHorizontalLine(p, 5)
	total := 0.0
	for _, r := range below {
		total += r.Area()
	}
	for _, r := range above {
		total += r.Area()
	}
	chk.Scalar(tst, "split area", 1e-6, total, p.Area())
}

func Test_degenerate_ring_fails(tst *testing.T) {
	chk.PrintTitle("degenerate_ring_fails")
	_, err := New([]Point{{0, 0}, {1, 1}})
	if err == nil {
		tst.Fatalf("expected InvalidGeometry error for degenerate ring")
	}
}

func Test_union_overlappingSquares_coversBoth(tst *testing.T) {
	chk.PrintTitle("union_overlappingSquares_coversBoth")
	p := square(0, 0, 10)
	q := square(5, 0, 10)
	pieces := Union(p, q)
	chk.IntAssert(len(pieces), 1)
	total := pieces[0].Area()
	want := p.Area() + q.Area() - 50 // overlap strip is 5x10
	chk.Scalar(tst, "union area", 1e-6, total, want)
}

func Test_union_disjointSquares_twoPieces(tst *testing.T) {
	chk.PrintTitle("union_disjointSquares_twoPieces")
	p := square(0, 0, 10)
	q := square(1000, 0, 10)
	pieces := Union(p, q)
	chk.IntAssert(len(pieces), 2)
}
