// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package integrate

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
	"github.com/Caltech-OCTO/subzero/grid"
)

func square(cx, cy, half float64) []geom.Point {
	return []geom.Point{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}
}

func mustFloe(tst *testing.T) *floe.Floe {
	tst.Helper()
	p := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5}
	f, err := floe.FromCoords(square(0, 0, 100), 1.0, 1, p)
	if err != nil {
		tst.Fatalf("FromCoords: %v", err)
	}
	return f
}

func Test_massFloor_resurrectsAndMarksRemove(tst *testing.T) {
	chk.PrintTitle("massFloor_resurrectsAndMarksRemove")
	f := mustFloe(tst)
	f.Mass = 1
	g := grid.New(-1000, 1000, -1000, 1000, 4, 4)
	oa := grid.NewOceanAtmos(g)
	Step(f, 1, oa, g)
	chk.Scalar(tst, "resurrected mass", 1e-9, f.Mass, 1e3)
	if f.Status != floe.Remove {
		tst.Fatalf("expected status Remove, got %v", f.Status)
	}
}

func Test_runawayGuard_scalesDownLargeCollisionForce(tst *testing.T) {
	chk.PrintTitle("runawayGuard_scalesDownLargeCollisionForce")
	f := mustFloe(tst)
	f.CollisionFx = 1e12
	f.CollisionTrq = 1e12
	dt := 1.0
	runawayGuard(f, dt)
	limit := f.Mass / (5 * dt)
	if f.CollisionFx > limit {
		tst.Fatalf("collision force %v still exceeds limit %v", f.CollisionFx, limit)
	}
}

func Test_positionStep_conservesAreaUnderTranslation(tst *testing.T) {
	chk.PrintTitle("positionStep_conservesAreaUnderTranslation")
	f := mustFloe(tst)
	areaBefore := f.Polygon.Area()
	f.U = 1.0
	positionStep(f, 1.0)
	chk.Scalar(tst, "area under pure translation", 1e-6, f.Polygon.Area(), areaBefore)
	if f.Centroid.X <= 0 {
		tst.Fatalf("expected centroid to move in +x, got %v", f.Centroid.X)
	}
}

func Test_velocityStep_capsAccelerationDisplacement(tst *testing.T) {
	chk.PrintTitle("velocityStep_capsAccelerationDisplacement")
	f := mustFloe(tst)
	f.Height = 1.0
	f.FxOA = 1e15 // absurdly large forcing to trigger the cap
	dt := 1.0
	uncappedDu := (f.FxOA + f.CollisionFx) / f.Mass
	velocityStep(f, dt)
	if math.Abs(f.U) >= math.Abs(1.5*dt*uncappedDu) {
		tst.Fatalf("expected the acceleration cap to shrink the velocity update, got u=%v vs uncapped du=%v", f.U, uncappedDu)
	}
}

func Test_xi_clampedToMax(tst *testing.T) {
	chk.PrintTitle("xi_clampedToMax")
	f := mustFloe(tst)
	f.TorqueOA = 1e20
	velocityStep(f, 1.0)
	if math.Abs(f.Xi) > xiMax+1e-12 {
		tst.Fatalf("xi not clamped: %v", f.Xi)
	}
}
