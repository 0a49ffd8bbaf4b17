// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim implements the outer simulation driver (spec §4.F): the
// per-timestep stage sequence of ghost construction, coupling, collision,
// integration, fracture, and compaction.
package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cpmech/gosl/io"

	"github.com/Caltech-OCTO/subzero/collision"
	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/coupling"
	"github.com/Caltech-OCTO/subzero/domain"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/fracture"
	"github.com/Caltech-OCTO/subzero/geom"
	"github.com/Caltech-OCTO/subzero/grid"
	"github.com/Caltech-OCTO/subzero/integrate"
)

// Driver owns the full mutable simulation state and advances it one
// timestep at a time.
type Driver struct {
	Cfg    config.Config
	Floes  []*floe.Floe
	Domain *domain.Domain
	Grid   *grid.Grid
	OA     *grid.OceanAtmos
	Curve  *fracture.HiblerCurve
	IDs    *floe.IDCounter

	Step int

	floeParams floe.Params
	collider   *collision.Engine
}

// New builds a Driver from a loaded configuration and an initial floe set.
func New(cfg config.Config, floes []*floe.Floe, dom *domain.Domain, ids *floe.IDCounter, params floe.Params) *Driver {
	var g *grid.Grid
	if cfg.Grid.Nx > 0 && cfg.Grid.Ny > 0 {
		g = grid.New(cfg.Grid.X0, cfg.Grid.Xf, cfg.Grid.Y0, cfg.Grid.Yf, cfg.Grid.Nx, cfg.Grid.Ny)
	} else {
		g = grid.NewFromSpacing(cfg.Grid.X0, cfg.Grid.Xf, cfg.Grid.Y0, cfg.Grid.Yf, cfg.Grid.Dx, cfg.Grid.Dy)
	}
	oa := grid.NewOceanAtmos(g)
	var curve *fracture.HiblerCurve
	if cfg.Fracture.Criteria == config.CriteriaHibler {
		curve = fracture.NewHiblerCurve(cfg.Fracture.Pstar, cfg.Fracture.C)
	}
	return &Driver{
		Cfg:        cfg,
		Floes:      floes,
		Domain:     dom,
		Grid:       g,
		OA:         oa,
		Curve:      curve,
		IDs:        ids,
		floeParams: params,
		collider: &collision.Engine{
			Constants: cfg.Constants,
			Settings:  cfg.Collision,
			Dt:        cfg.Sim.Dt,
		},
	}
}

// realCount returns the number of real (non-ghost) floes at the head of
// d.Floes. Ghosts, when present, always follow the reals (BuildGhosts'
// invariant).
func realCount(floes []*floe.Floe) int {
	n := 0
	for _, f := range floes {
		if f.IsReal() {
			n++
		}
	}
	return n
}

// RunStep advances the simulation by one timestep, implementing the eight
// stages of spec §4.F in order.
func (o *Driver) RunStep(ctx context.Context) error {
	dt := o.Cfg.Sim.Dt
	nReal := realCount(o.Floes)
	o.Floes = o.Floes[:nReal]

	// 1. clear ghosts (already truncated above), per-cell stress, si_frac.
	o.Grid.ClearCellFloes()
	o.Grid.ClearStress()
	o.OA.ClearSiFrac()

	// 2. add ghosts on every periodic axis pair.
	o.Floes = collision.BuildGhosts(o.Floes, o.Domain)

	// 3. coupling, parallel over real floes.
	if err := o.runCoupling(ctx, nReal); err != nil {
		return err
	}

	// 4. collision engine, three passes.
	if err := o.collider.Run(ctx, o.Floes, o.Domain); err != nil {
		return err
	}

	// 5. advance moving boundaries.
	o.Domain.AdvanceBoundaries(dt)

	// 6. integrator, parallel over real floes.
	realFloes := o.Floes[:nReal]
	if err := integrate.StepAll(ctx, realFloes, dt, o.OA, o.Grid); err != nil {
		return err
	}

	// 7. fracture engine, every fracture_dt steps.
	if o.Curve != nil && o.Cfg.Fracture.DtFracture > 0 && o.Step%o.Cfg.Fracture.DtFracture == 0 {
		realFloes = fracture.Run(realFloes, o.Domain.Width()*o.Domain.Height(), o.Cfg.Fracture, o.Curve, o.IDs, o.floeParams)
	}

	// 8. compact: drop Remove, fuse Fuse pairs.
	o.Floes = compact(realFloes)

	if o.Cfg.Sim.Verbose {
		io.Pf("step %d: %d floes\n", o.Step, len(o.Floes))
	}
	o.Step++
	return nil
}

func (o *Driver) runCoupling(ctx context.Context, nReal int) error {
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < nReal; i++ {
		i := i
		g.Go(func() error {
			f := o.Floes[i]
			f.ResetOA()
			coupling.Couple(f, i, geom.Point{}, o.Grid, o.OA, o.Cfg.Constants)
			return nil
		})
	}
	return g.Wait()
}

// compact implements spec §4.F step 8: drop Remove-status floes, merge
// Fuse-marked pairs, and return the surviving real floes.
func compact(floes []*floe.Floe) []*floe.Floe {
	fused := make(map[int]bool)
	out := make([]*floe.Floe, 0, len(floes))
	byID := make(map[int]*floe.Floe, len(floes))
	for _, f := range floes {
		byID[f.ID] = f
	}

	for _, f := range floes {
		if f.Status == floe.Remove || fused[f.ID] {
			continue
		}
		if f.Status == floe.Fuse && len(f.FusePartner) > 0 {
			for _, pid := range f.FusePartner {
				partner, ok := byID[pid]
				if !ok || fused[pid] || partner.Status == floe.Remove {
					continue
				}
				merged := fuse(f, partner)
				if merged != nil {
					f = merged
					fused[pid] = true
				}
			}
		}
		f.Status = floe.Active
		out = append(out, f)
	}
	return out
}

// fuse merges b into a, returning the merged floe (reusing a's identity)
// or nil if the union could not be computed.
func fuse(a, b *floe.Floe) *floe.Floe {
	pieces := geom.Union(a.Polygon, b.Polygon)
	if len(pieces) != 1 {
		return nil
	}
	merged := pieces[0].RemoveHoles()
	totalMass := a.Mass + b.Mass
	if totalMass <= 0 {
		return nil
	}
	centroid := merged.Centroid()
	a.U = (a.Mass*a.U + b.Mass*b.U) / totalMass
	a.V = (a.Mass*a.V + b.Mass*b.V) / totalMass
	a.Xi = (a.Moment*a.Xi + b.Moment*b.Xi) / (a.Moment + b.Moment)
	a.Height = (a.Mass*a.Height + b.Mass*b.Height) / totalMass
	a.Polygon = merged
	a.Centroid = centroid
	a.Area = merged.Area()
	a.Rmax = merged.MaxRadius(centroid)
	a.Mass = totalMass
	a.Moment += b.Moment
	a.FusePartner = nil
	return a
}
