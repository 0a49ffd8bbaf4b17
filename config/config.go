// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements the JSON configuration surface (spec §6) in
// gofem's inp-package idiom: plain structs with json tags, loaded with
// encoding/json, defaults applied after unmarshalling.
package config

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"
)

// Constants holds the physical constants shared by coupling, collision and
// the integrator (spec §6).
type Constants struct {
	RhoIce    float64 `json:"rho_i"`      // ice density, kg/m^3
	RhoOcean  float64 `json:"rho_o"`      // ocean density, kg/m^3
	RhoAtmos  float64 `json:"rho_a"`      // atmosphere density, kg/m^3
	Cio       float64 `json:"c_io"`       // ocean-ice drag coefficient
	Cia       float64 `json:"c_ia"`       // atmosphere-ice drag coefficient
	Cao       float64 `json:"c_ao"`       // atmosphere-ocean drag coefficient
	Fcor      float64 `json:"f"`          // Coriolis parameter, rad/s
	TurnAngle float64 `json:"turn_theta"` // ocean turning angle, radians
	L         float64 `json:"l"`          // reference domain length scale, m
	K         float64 `json:"k"`          // thermal conductivity
	Nu        float64 `json:"nu"`         // Poisson ratio
	Mu        float64 `json:"mu"`         // Coulomb friction coefficient
	E         float64 `json:"e"`          // Young's modulus, Pa
}

// DefaultConstants returns the constants listed verbatim in spec §6.
func DefaultConstants() Constants {
	deg := 15.0 * 3.14159265358979323846 / 180.0
	return Constants{
		RhoIce:    920,
		RhoOcean:  1027,
		RhoAtmos:  1.2,
		Cio:       3e-3,
		Cia:       1e-3,
		Cao:       1.25e-3,
		Fcor:      1.4e-4,
		TurnAngle: deg,
		L:         2.93e5,
		K:         2.14,
		Nu:        0.3,
		Mu:        0.2,
		E:         6e6,
	}
}

// GridConfig describes the Eulerian coupling grid, either by explicit cell
// counts or by target spacing (spec §6).
type GridConfig struct {
	X0 float64 `json:"x0"`
	Xf float64 `json:"xf"`
	Y0 float64 `json:"y0"`
	Yf float64 `json:"yf"`
	Dx float64 `json:"dx,omitempty"`
	Dy float64 `json:"dy,omitempty"`
	Nx int     `json:"nx,omitempty"`
	Ny int     `json:"ny,omitempty"`
}

// BoundaryKind mirrors domain.Kind in the JSON surface.
type BoundaryKind string

const (
	Open      BoundaryKind = "open"
	Periodic  BoundaryKind = "periodic"
	Collision BoundaryKind = "collision"
	Moving    BoundaryKind = "moving"
)

// BoundaryConfig describes one wall (spec §6).
type BoundaryConfig struct {
	Kind BoundaryKind `json:"kind"`
	U    float64      `json:"u,omitempty"`
	V    float64      `json:"v,omitempty"`
}

// DomainConfig describes the four walls and nothing else; topography and
// initial floes are supplied separately as geometry, not JSON scalars.
type DomainConfig struct {
	North BoundaryConfig `json:"north"`
	South BoundaryConfig `json:"south"`
	East  BoundaryConfig `json:"east"`
	West  BoundaryConfig `json:"west"`
}

// FractureCriteria names the yield test used to decide whether a floe
// fractures (spec §6).
type FractureCriteria string

const (
	CriteriaNone   FractureCriteria = "none"
	CriteriaHibler FractureCriteria = "hibler"
	CriteriaCustom FractureCriteria = "custom"
)

// FractureConfig is the fracture engine's configuration surface (spec §6).
type FractureConfig struct {
	FracturesOn bool             `json:"fractures_on"`
	Criteria    FractureCriteria `json:"criteria"`
	Pstar       float64          `json:"p_star,omitempty"` // Hibler p*
	C           float64          `json:"c,omitempty"`      // Hibler c
	DtFracture  int              `json:"dt_fracture"`      // run every N timesteps
	NPieces     int              `json:"npieces"`
	DeformOn    bool             `json:"deform_on"`
	MinFloeArea float64          `json:"min_floe_area"`
	MaxTries    int              `json:"max_tries,omitempty"` // Voronoi seeding retry cap
}

// CollisionConfig is the collision engine's configuration surface.
type CollisionConfig struct {
	FloeFloeMaxOverlap   float64 `json:"floe_floe_max_overlap"`
	FloeDomainMaxOverlap float64 `json:"floe_domain_max_overlap"`
}

// FloeConfig is the floe-factory configuration surface.
type FloeConfig struct {
	MinFloeArea          float64 `json:"min_floe_area"`
	SubFloePointGenerator string  `json:"subfloe_point_generator"`
	SubFloePointCount     int     `json:"subfloe_point_count"`
	StressCalculator      string  `json:"stress_calculator"`
	StressHistoryLen      int     `json:"stress_history_len"`
}

// SimulationConfig is the outer-loop configuration surface.
type SimulationConfig struct {
	Dt       float64 `json:"dt"`
	NDt      int     `json:"ndt"`
	Verbose  bool    `json:"verbose"`
	RNGSeed  int64   `json:"rng_seed"`
}

// Config is the full recognized configuration surface (spec §6).
type Config struct {
	Grid      GridConfig       `json:"grid"`
	Domain    DomainConfig     `json:"domain"`
	Constants Constants        `json:"constants"`
	Fracture  FractureConfig   `json:"fracture"`
	Collision CollisionConfig  `json:"collision"`
	Floe      FloeConfig       `json:"floe_settings"`
	Sim       SimulationConfig `json:"simulation"`
}

// Default returns a Config with every documented default applied.
func Default() Config {
	return Config{
		Constants: DefaultConstants(),
		Fracture: FractureConfig{
			Criteria:    CriteriaNone,
			DtFracture:  1,
			NPieces:     3,
			MinFloeArea: 1e6,
			MaxTries:    10,
		},
		Collision: CollisionConfig{
			FloeFloeMaxOverlap:   0.75,
			FloeDomainMaxOverlap: 0.75,
		},
		Floe: FloeConfig{
			MinFloeArea:           1e6,
			SubFloePointGenerator: "subgrid",
			SubFloePointCount:     9,
			StressCalculator:      "averaged",
			StressHistoryLen:      20,
		},
		Sim: SimulationConfig{
			Dt:  10,
			NDt: 100,
		},
	}
}

// Load reads a JSON configuration file, applying Default() first so
// unspecified fields keep their documented defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, chk.Err("cannot read config file %q: %v", path, err)
	}
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return cfg, chk.Err("cannot parse config file %q: %v", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg Config) error {
	buf, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return chk.Err("cannot marshal config: %v", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return chk.Err("cannot write config file %q: %v", path, err)
	}
	return nil
}
