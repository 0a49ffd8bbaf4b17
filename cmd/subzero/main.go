// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/rnd"

	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/domain"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
	"github.com/Caltech-OCTO/subzero/sim"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "", "path to configuration JSON")
	initialPath := flag.String("initial", "", "path to initial-state snapshot JSON")
	nsteps := flag.Int("nsteps", 0, "override the configured number of timesteps (0 = use config)")
	flag.Parse()

	io.PfWhite("\nSubzero -- discrete-element sea-ice floe simulator\n\n")

	if *configPath == "" {
		chk.Panic("Please provide -config path/to/config.json")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		chk.Panic("%v", err)
	}

	initial, err := loadInitialState(*initialPath)
	if err != nil {
		chk.Panic("%v", err)
	}

	rnd.Init(int(cfg.Sim.RNGSeed))
	rng := rand.New(rand.NewSource(cfg.Sim.RNGSeed))

	dom, err := buildDomain(cfg, initial)
	if err != nil {
		chk.Panic("%v", err)
	}

	ids := floe.NewIDCounter(1)
	params := floe.Params{
		Rho:               cfg.Constants.RhoIce,
		SubFloePointCount: cfg.Floe.SubFloePointCount,
		SubFloeGenerator:  floe.SubFloePointGenerator(cfg.Floe.SubFloePointGenerator),
		StressHistoryLen:  cfg.Floe.StressHistoryLen,
		RNG:               rng,
	}

	floes, err := buildFloes(initial, ids, params)
	if err != nil {
		chk.Panic("%v", err)
	}

	driver := sim.New(cfg, floes, dom, ids, params)

	n := cfg.Sim.NDt
	if *nsteps > 0 {
		n = *nsteps
	}
	ctx := context.Background()
	for i := 0; i < n; i++ {
		if err := driver.RunStep(ctx); err != nil {
			chk.Panic("step %d failed: %v", i, err)
		}
	}

	io.Pf("\ndone: %d steps, %d floes remaining\n", n, len(driver.Floes))
}

func loadInitialState(path string) (config.InitialState, error) {
	var st config.InitialState
	if path == "" {
		return st, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return st, chk.Err("cannot read initial-state file %q: %v", path, err)
	}
	if err := json.Unmarshal(buf, &st); err != nil {
		return st, chk.Err("cannot parse initial-state file %q: %v", path, err)
	}
	return st, nil
}

func buildDomain(cfg config.Config, initial config.InitialState) (*domain.Domain, error) {
	dir := func(k config.BoundaryKind, val, u, v float64, d domain.Direction) *domain.Boundary {
		kind := domain.OpenKind
		switch k {
		case config.Periodic:
			kind = domain.PeriodicKind
		case config.Collision:
			kind = domain.CollisionKind
		case config.Moving:
			kind = domain.MovingKind
		}
		return domain.NewBoundary(d, kind, val, u, v, 0)
	}

	north := dir(cfg.Domain.North.Kind, cfg.Grid.Yf, cfg.Domain.North.U, cfg.Domain.North.V, domain.North)
	south := dir(cfg.Domain.South.Kind, cfg.Grid.Y0, cfg.Domain.South.U, cfg.Domain.South.V, domain.South)
	east := dir(cfg.Domain.East.Kind, cfg.Grid.Xf, cfg.Domain.East.U, cfg.Domain.East.V, domain.East)
	west := dir(cfg.Domain.West.Kind, cfg.Grid.X0, cfg.Domain.West.U, cfg.Domain.West.V, domain.West)

	var topos []*domain.Topography
	for _, t := range initial.Topography {
		poly, err := geom.New(toPoints(t.Coords))
		if err != nil {
			return nil, err
		}
		topos = append(topos, domain.NewTopography(poly))
	}
	return domain.New(north, south, east, west, topos)
}

func buildFloes(initial config.InitialState, ids *floe.IDCounter, params floe.Params) ([]*floe.Floe, error) {
	var out []*floe.Floe
	for _, spec := range initial.Floes {
		f, err := floe.FromCoords(toPoints(spec.Coords), spec.Height, ids.Next(), params)
		if err != nil {
			return nil, err
		}
		f.U, f.V, f.Xi, f.Alpha = spec.U, spec.V, spec.Xi, spec.Alpha
		out = append(out, f)
	}
	return out, nil
}

func toPoints(coords [][2]float64) []geom.Point {
	pts := make([]geom.Point, len(coords))
	for i, c := range coords {
		pts[i] = geom.Point{X: c[0], Y: c[1]}
	}
	return pts
}
