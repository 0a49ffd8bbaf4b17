// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package integrate implements the per-floe rigid-body time step (spec
// §4.D): mass-floor resurrection, the collision-force runaway guard,
// thermodynamic height change, and the Adams-Bashforth-like position and
// velocity update.
package integrate

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
	"github.com/Caltech-OCTO/subzero/grid"
)

// xiMax is the angular-velocity clamp of spec §4.D.
const xiMax = 1e-5

// Step advances one floe by dt, reading the ambient heat-flux factor from
// oa at the floe's centroid.
func Step(f *floe.Floe, dt float64, oa *grid.OceanAtmos, g *grid.Grid) {
	if f.Height > floe.MaxHeight {
		f.Height = floe.MaxHeight
	}
	if f.Mass < floe.MinMass {
		f.Mass = 1e3
		f.Status = floe.Remove
	}

	runawayGuard(f, dt)
	thermodynamicUpdate(f, dt, oa, g)
	positionStep(f, dt)
	velocityStep(f, dt)
}

// runawayGuard implements spec §4.D's "while max|collision_force| >
// mass/(5*dt), scale collision_force and collision_trq by 0.1".
func runawayGuard(f *floe.Floe, dt float64) {
	limit := f.Mass / (5 * dt)
	for math.Max(math.Abs(f.CollisionFx), math.Abs(f.CollisionFy)) > limit {
		f.CollisionFx *= 0.1
		f.CollisionFy *= 0.1
		f.CollisionTrq *= 0.1
	}
}

// thermodynamicUpdate implements the height/mass/moment shrink of spec
// §4.D: "Δh = hflx*dt/h; scale mass and moment by (h-Δh)/h".
func thermodynamicUpdate(f *floe.Floe, dt float64, oa *grid.OceanAtmos, g *grid.Grid) {
	if f.Height <= 0 {
		return
	}
	hflx := g.SampleNearest(oa.HflxFactor, f.Centroid)
	dh := hflx * dt / f.Height
	newHeight := f.Height - dh
	factor := newHeight / f.Height
	f.Height = newHeight
	f.Mass *= factor
	f.Moment *= factor
}

// positionStep implements the Adams-Bashforth-like position/orientation
// update of spec §4.D: "Δx = 1.5*dt*u - 0.5*dt*ṗx; same for y,α; update
// previous."
func positionStep(f *floe.Floe, dt float64) {
	dx := 1.5*dt*f.U - 0.5*dt*f.PrevU
	dy := 1.5*dt*f.V - 0.5*dt*f.PrevV
	da := 1.5*dt*f.Xi - 0.5*dt*f.PrevXi

	f.Centroid = f.Centroid.Add(geom.Point{X: dx, Y: dy})
	f.Polygon = f.Polygon.Translate(dx, dy)
	if da != 0 {
		f.Polygon = f.Polygon.Rotate(da, f.Centroid)
	}
	f.Alpha += da

	f.PrevU, f.PrevV, f.PrevXi = f.U, f.V, f.Xi
}

// velocityStep implements spec §4.D's acceleration cap and the
// Adams-Bashforth-like velocity update.
func velocityStep(f *floe.Floe, dt float64) {
	du := (f.FxOA + f.CollisionFx) / f.Mass
	dv := (f.FyOA + f.CollisionFy) / f.Mass

	half := f.Height / 2
	factor := 1.0
	if m := math.Abs(dt * du); m > half && m > 0 {
		factor = math.Min(factor, half/m)
	}
	if m := math.Abs(dt * dv); m > half && m > 0 {
		factor = math.Min(factor, half/m)
	}
	du *= factor
	dv *= factor

	dxi := (f.TorqueOA + f.CollisionTrq) / f.Moment

	f.U += 1.5*dt*du - 0.5*dt*f.PrevDU
	f.V += 1.5*dt*dv - 0.5*dt*f.PrevDV
	f.Xi += 1.5*dt*dxi - 0.5*dt*f.PrevDXi

	if f.Xi > xiMax {
		f.Xi = xiMax
	} else if f.Xi < -xiMax {
		f.Xi = -xiMax
	}

	f.PrevDU, f.PrevDV, f.PrevDXi = du, dv, dxi
}

// StepAll advances every real floe in floes by dt concurrently, one
// goroutine per floe (spec §5: "Integration ... fork-joined").
func StepAll(ctx context.Context, floes []*floe.Floe, dt float64, oa *grid.OceanAtmos, g *grid.Grid) error {
	eg, _ := errgroup.WithContext(ctx)
	for _, f := range floes {
		if !f.IsReal() {
			continue
		}
		f := f
		eg.Go(func() error {
			Step(f, dt, oa, g)
			return nil
		})
	}
	return eg.Wait()
}
