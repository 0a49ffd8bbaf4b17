// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/domain"
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

func testDomain(tst *testing.T) *domain.Domain {
	tst.Helper()
	n := domain.NewBoundary(domain.North, domain.CollisionKind, 1e5, 0, 0, 0)
	s := domain.NewBoundary(domain.South, domain.CollisionKind, -1e5, 0, 0, 0)
	e := domain.NewBoundary(domain.East, domain.CollisionKind, 1e5, 0, 0, 0)
	w := domain.NewBoundary(domain.West, domain.CollisionKind, -1e5, 0, 0, 0)
	d, err := domain.New(n, s, e, w, nil)
	if err != nil {
		tst.Fatalf("domain.New: %v", err)
	}
	return d
}

func Test_runStep_doesNotPanicOnASingleQuietFloe(tst *testing.T) {
	chk.PrintTitle("runStep_doesNotPanicOnASingleQuietFloe")
	params := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5}
	f, err := floe.FromCoords(square(0, 0, 1000), 1.0, 1, params)
	if err != nil {
		tst.Fatalf("FromCoords: %v", err)
	}

	cfg := config.Default()
	cfg.Grid = config.GridConfig{X0: -1e5, Xf: 1e5, Y0: -1e5, Yf: 1e5, Nx: 4, Ny: 4}
	cfg.Sim.Dt = 10

	d := New(cfg, []*floe.Floe{f}, testDomain(tst), floe.NewIDCounter(2), params)
	if err := d.RunStep(context.Background()); err != nil {
		tst.Fatalf("RunStep: %v", err)
	}
	chk.IntAssert(len(d.Floes), 1)
}

func Test_compact_dropsRemoveStatus(tst *testing.T) {
	chk.PrintTitle("compact_dropsRemoveStatus")
	params := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5}
	f1, _ := floe.FromCoords(square(0, 0, 10), 1.0, 1, params)
	f2, _ := floe.FromCoords(square(500, 500, 10), 1.0, 2, params)
	f2.Status = floe.Remove

	out := compact([]*floe.Floe{f1, f2})
	if len(out) != 1 || out[0].ID != 1 {
		tst.Fatalf("expected only floe 1 to survive compaction, got %v", idsOf(out))
	}
}

func idsOf(floes []*floe.Floe) []int {
	out := make([]int, len(floes))
	for i, f := range floes {
		out[i] = f.ID
	}
	return out
}

func Test_fuse_conservesMass(tst *testing.T) {
	chk.PrintTitle("fuse_conservesMass")
	params := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5}
	f1, _ := floe.FromCoords(square(0, 0, 10), 1.0, 1, params)
	f2, _ := floe.FromCoords(square(15, 0, 10), 1.0, 2, params)
	wantMass := f1.Mass + f2.Mass

	merged := fuse(f1, f2)
	if merged == nil {
		tst.Fatal("expected overlapping squares to fuse")
	}
	chk.Scalar(tst, "fused mass", 1e-6, merged.Mass, wantMass)
}
