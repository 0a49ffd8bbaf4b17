// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"context"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/domain"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
)

func square(cx, cy, halfSide float64) []geom.Point {
	return []geom.Point{
		{X: cx - halfSide, Y: cy - halfSide},
		{X: cx + halfSide, Y: cy - halfSide},
		{X: cx + halfSide, Y: cy + halfSide},
		{X: cx - halfSide, Y: cy + halfSide},
	}
}

func mustFloe(tst *testing.T, coords []geom.Point, id int) *floe.Floe {
	tst.Helper()
	p := floe.Params{Rho: 920, SubFloePointCount: 4, SubFloeGenerator: floe.SubGridGenerator, StressHistoryLen: 5}
	f, err := floe.FromCoords(coords, 1.0, id, p)
	if err != nil {
		tst.Fatalf("FromCoords: %v", err)
	}
	return f
}

func testDomain(tst *testing.T, periodic bool) *domain.Domain {
	tst.Helper()
	kind := domain.CollisionKind
	if periodic {
		kind = domain.PeriodicKind
	}
	n := domain.NewBoundary(domain.North, kind, 1000, 0, 0, 0)
	s := domain.NewBoundary(domain.South, kind, -1000, 0, 0, 0)
	e := domain.NewBoundary(domain.East, kind, 1000, 0, 0, 0)
	w := domain.NewBoundary(domain.West, kind, -1000, 0, 0, 0)
	d, err := domain.New(n, s, e, w, nil)
	if err != nil {
		tst.Fatalf("domain.New: %v", err)
	}
	return d
}

func Test_pairDedup_admitsWhenEitherGhostMatchesFirstSeen(tst *testing.T) {
	chk.PrintTitle("pairDedup_admitsWhenEitherGhostMatchesFirstSeen")
	d := newPairDedup()
	if !d.admit(1, 0, 2, 0) {
		tst.Fatal("first encounter of a pair must be admitted")
	}
	if !d.admit(1, 0, 2, 0) {
		tst.Fatal("the first-seen ghost combination must be admitted again")
	}
	if !d.admit(1, 0, 2, 1) {
		tst.Fatal("a combination matching the first-seen ghost id on one side must be admitted")
	}
	if d.admit(1, 1, 2, 1) {
		tst.Fatal("a combination matching the first-seen ghost id on neither side must be rejected")
	}
}

func Test_overlappingFloes_produceSymmetricInteractions(tst *testing.T) {
	chk.PrintTitle("overlappingFloes_produceSymmetricInteractions")
	f1 := mustFloe(tst, square(0, 0, 10), 1)
	// overlap is 15x20 = 300, above minRegionArea (4 sub-floe points: 4*100/1.75 ~ 228.6)
	f2 := mustFloe(tst, square(5, 0, 10), 2)
	floes := []*floe.Floe{f1, f2}
	d := testDomain(tst, false)

	e := &Engine{Constants: config.DefaultConstants(), Settings: config.CollisionConfig{FloeFloeMaxOverlap: 0.9, FloeDomainMaxOverlap: 0.9}, Dt: 1}
	if err := e.Run(context.Background(), floes, d); err != nil {
		tst.Fatalf("Run: %v", err)
	}

	if f1.NumInters == 0 {
		tst.Fatal("expected floe 1 to have at least one interaction")
	}
	if f2.NumInters == 0 {
		tst.Fatal("expected floe 2 to have at least one interaction")
	}
	found := false
	for _, row := range f1.Interactions {
		if row.OtherID != f2.ID {
			continue
		}
		for _, mirror := range f2.Interactions {
			if mirror.OtherID != f1.ID {
				continue
			}
			chk.Scalar(tst, "mirrored Fx", 1e-12, mirror.Fx, -row.Fx)
			chk.Scalar(tst, "mirrored Fy", 1e-12, mirror.Fy, -row.Fy)
			found = true
		}
	}
	if !found {
		tst.Fatal("no mirrored interaction found between floe 1 and floe 2")
	}
}

func Test_disjointFloes_noInteractions(tst *testing.T) {
	chk.PrintTitle("disjointFloes_noInteractions")
	f1 := mustFloe(tst, square(0, 0, 5), 1)
	f2 := mustFloe(tst, square(500, 500, 5), 2)
	floes := []*floe.Floe{f1, f2}
	d := testDomain(tst, false)

	e := &Engine{Constants: config.DefaultConstants(), Settings: config.CollisionConfig{FloeFloeMaxOverlap: 0.9, FloeDomainMaxOverlap: 0.9}, Dt: 1}
	if err := e.Run(context.Background(), floes, d); err != nil {
		tst.Fatalf("Run: %v", err)
	}
	chk.IntAssert(f1.NumInters, 0)
	chk.IntAssert(f2.NumInters, 0)
}

func Test_buildGhosts_oneGhostPerCrossedAxis(tst *testing.T) {
	chk.PrintTitle("buildGhosts_oneGhostPerCrossedAxis")
	d := testDomain(tst, true)
	f := mustFloe(tst, square(-995, 0, 10), 1)
	floes := BuildGhosts([]*floe.Floe{f}, d)
	chk.IntAssert(len(floes), 2)
	if floes[1].GhostID == 0 {
		tst.Fatal("expected appended floe to be a ghost")
	}
	if floes[1].ID != f.ID {
		tst.Fatalf("ghost must share the parent's logical id, got %d vs %d", floes[1].ID, f.ID)
	}
}
