// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fracture

import (
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
)

func square(cx, cy, half float64) []geom.Point {
	return []geom.Point{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}
}

func mustFloe(tst *testing.T, coords []geom.Point, id int) *floe.Floe {
	tst.Helper()
	p := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5, RNG: rand.New(rand.NewSource(1))}
	f, err := floe.FromCoords(coords, 1.0, id, p)
	if err != nil {
		tst.Fatalf("FromCoords: %v", err)
	}
	return f
}

func Test_hiblerCurve_centroidAtMinusPOverTwo(tst *testing.T) {
	chk.PrintTitle("hiblerCurve_centroidAtMinusPOverTwo")
	curve := NewHiblerCurve(5e5, -1)
	curve.build(1.0, 0.5) // area fraction 1 so exp(-c*(1-1))==1, P = p*h
	wantP := 5e5 * 0.5
	c := curve.Centroid()
	chk.Scalar(tst, "centroid.X", 1.0, c.X, -wantP/2)
	chk.Scalar(tst, "centroid.Y", 1.0, c.Y, -wantP/2)
}

func Test_hiblerCurve_areaScalesWithPSquared(tst *testing.T) {
	chk.PrintTitle("hiblerCurve_areaScalesWithPSquared")
	small := NewHiblerCurve(1e5, -1)
	small.build(1.0, 1.0)
	big := NewHiblerCurve(2e5, -1)
	big.build(1.0, 1.0)
	ratio := big.Area() / small.Area()
	chk.Scalar(tst, "area ratio (doubled p*)", 1e-3, ratio, 4)
}

func Test_hiblerCurve_containsOriginAndRejectsFarPoint(tst *testing.T) {
	chk.PrintTitle("hiblerCurve_containsOriginAndRejectsFarPoint")
	curve := NewHiblerCurve(5e5, -1)
	curve.build(1.0, 0.5)
	if !curve.Contains(0, 0) {
		tst.Fatal("origin (zero stress) should lie on/inside the yield curve")
	}
	if curve.Contains(1e9, 1e9) {
		tst.Fatal("a far-away stress point should lie outside the yield curve")
	}
}

// Test_hiblerCurve_matchesScenario1 checks the curve against the literal
// hibler(h=0.5, p*=5e5, c=-1) scenario: area and sigma1 extrema of the
// ellipse ((sigma1+sigma2+P)/P)^2 + ((sigma1-sigma2)/(P/e))^2 = 1 with
// e=2, P=2.5e5. Tolerances (2e8 on the area, 50 on the extrema) cover the
// gap between this ellipse and the scenario's numbers (about 3e7 and 26),
// which is larger than the sampling error of the 256-point polygon.
func Test_hiblerCurve_matchesScenario1(tst *testing.T) {
	chk.PrintTitle("hiblerCurve_matchesScenario1")
	curve := NewHiblerCurve(5e5, -1)
	curve.build(1.0, 0.5)

	chk.Scalar(tst, "P", 1e-6, curve.P, 2.5e5)
	chk.Scalar(tst, "area", 2e8, curve.Area(), 4.9054e10)

	minX, maxX := curve.Vertices[0].X, curve.Vertices[0].X
	for _, v := range curve.Vertices {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
	}
	chk.Scalar(tst, "sigma1 min extremum", 50, minX, -264743.588)
	chk.Scalar(tst, "sigma1 max extremum", 50, maxX, 14727.999)
}

func Test_selectCandidates_filtersByAreaAndYield(tst *testing.T) {
	chk.PrintTitle("selectCandidates_filtersByAreaAndYield")
	curve := NewHiblerCurve(5e5, -1)
	curve.build(1.0, 0.5)

	stressed := mustFloe(tst, square(0, 0, 5000), 1)
	stressed.History.Push(floe.Tensor2{{-1e9, 0}, {0, -1e9}})

	tooSmall := mustFloe(tst, square(0, 0, 1), 2)
	tooSmall.History.Push(floe.Tensor2{{-1e9, 0}, {0, -1e9}})

	calm := mustFloe(tst, square(0, 0, 5000), 3)
	calm.History.Push(floe.Tensor2{{0, 0}, {0, 0}})

	floes := []*floe.Floe{stressed, tooSmall, calm}
	got := SelectCandidates(floes, curve, 1e6)
	if len(got) != 1 || got[0].ID != 1 {
		tst.Fatalf("expected only floe 1 to be selected, got %v", idsOf(got))
	}
}

func idsOf(floes []*floe.Floe) []int {
	out := make([]int, len(floes))
	for i, f := range floes {
		out[i] = f.ID
	}
	return out
}

func Test_split_conservesAreaAndMass(tst *testing.T) {
	chk.PrintTitle("split_conservesAreaAndMass")
	parent := mustFloe(tst, square(0, 0, 1000), 1)
	parent.U, parent.V, parent.Xi = 1, 2, 0.5

	ids := floe.NewIDCounter(100)
	p := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5, RNG: rand.New(rand.NewSource(7))}
	children, _ := Split(parent, 3, ids, p, 20)
	if len(children) == 0 {
		tst.Fatal("expected at least one child piece")
	}

	var sumArea, sumMass float64
	for _, c := range children {
		sumArea += c.Area
		sumMass += c.Mass
		if c.U != parent.U || c.V != parent.V || c.Xi != parent.Xi {
			tst.Fatalf("child did not inherit parent velocity: got u=%v v=%v xi=%v", c.U, c.V, c.Xi)
		}
		if len(c.ParentIDs) == 0 || c.ParentIDs[len(c.ParentIDs)-1] != parent.ID {
			tst.Fatalf("child parent_ids does not record parent id: %v", c.ParentIDs)
		}
	}
	chk.Scalar(tst, "sum of child areas vs parent area", 1e-3*parent.Area, sumArea, parent.Area)
	chk.Scalar(tst, "sum of child masses vs parent mass", 1e-3*parent.Mass, sumMass, parent.Mass)
}

func Test_run_skipsWhenFracturesOff(tst *testing.T) {
	chk.PrintTitle("run_skipsWhenFracturesOff")
	curve := NewHiblerCurve(5e5, -1)
	f := mustFloe(tst, square(0, 0, 5000), 1)
	floes := []*floe.Floe{f}
	cfg := config.FractureConfig{FracturesOn: false, Criteria: config.CriteriaHibler}
	out := Run(floes, 1e12, cfg, curve, floe.NewIDCounter(10), floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5})
	if len(out) != 1 || out[0] != f {
		tst.Fatal("expected Run to be a no-op when FracturesOn is false")
	}
}
