// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

// FloeRecord is one floe's persisted state at a single timestep (spec §6,
// "Persisted floe-field snapshot"). Records with GhostID>0 are periodic
// replicas and must be filtered out before computing conservation
// diagnostics.
type FloeRecord struct {
	Timestep  int         `json:"timestep"`
	ID        int         `json:"id"`
	GhostID   int         `json:"ghost_id"`
	ParentIDs []int       `json:"parent_ids,omitempty"`
	Centroid  [2]float64  `json:"centroid"`
	Coords    [][2]float64 `json:"coords"`
	Mass      float64     `json:"mass"`
	Moment    float64     `json:"moment"`
	U         float64     `json:"u"`
	V         float64     `json:"v"`
	Xi        float64     `json:"xi"`
	StressAccum [2][2]float64 `json:"stress_accum"`
	Strain      [2][2]float64 `json:"strain"`
	Area      float64     `json:"area"`
	Height    float64     `json:"height"`
}

// InitialFloeSpec describes one floe in the initial-state snapshot: enough
// to reconstruct it via floe.FromCoords.
type InitialFloeSpec struct {
	Coords [][2]float64 `json:"coords"`
	Height float64      `json:"height"`
	U      float64      `json:"u"`
	V      float64      `json:"v"`
	Xi     float64      `json:"xi"`
	Alpha  float64      `json:"alpha"`
}

// TopographySpec describes one immovable obstacle.
type TopographySpec struct {
	Coords [][2]float64 `json:"coords"`
}

// InitialState is the full simulation configuration persisted once at the
// start of a run (spec §6, "Initial-state snapshot").
type InitialState struct {
	Config      Config             `json:"config"`
	Floes       []InitialFloeSpec  `json:"floes"`
	Topography  []TopographySpec   `json:"topography"`
}
