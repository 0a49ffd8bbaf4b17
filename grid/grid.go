// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements the regular rectilinear Eulerian grid that floes
// couple to, the per-cell ice-stress accumulators, and the ocean/atmosphere
// field matrices.
package grid

import (
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/Caltech-OCTO/subzero/geom"
)

// CellFloeRef records that a floe (possibly through a periodic translation)
// registered itself against a grid-line point.
type CellFloeRef struct {
	FloeIdx int        // index into the driver's floe slice
	Trans   geom.Point // periodic translation applied before registering
}

// IceStressCell accumulates the reverse-stress contribution of every floe
// overlapping a cell, per spec §4.B ("Reverse-stress the ocean cell").
type IceStressCell struct {
	mu      sync.Mutex
	SumTauX float64
	SumTauY float64
	NPoints int
}

// Add folds in one floe's contribution to this cell, serialized with a
// per-cell lock (spec §5: "either one mutex per cell or one lock-free
// list-per-cell").
func (o *IceStressCell) Add(tx, ty float64) {
	o.mu.Lock()
	o.SumTauX += tx
	o.SumTauY += ty
	o.NPoints++
	o.mu.Unlock()
}

// Clear resets the accumulator, called once per timestep by the driver.
func (o *IceStressCell) Clear() {
	o.SumTauX, o.SumTauY, o.NPoints = 0, 0, 0
}

// Grid is an axis-aligned regular rectilinear grid with Nx x Ny cells.
type Grid struct {
	Nx, Ny int
	Xg, Yg []float64 // grid lines, length Nx+1 / Ny+1
	Xc, Yc []float64 // cell centers, length Nx / Ny

	// CellFloes is indexed [i][j] over grid-line points (Nx+1)x(Ny+1),
	// per spec §3 ("Each grid-line point owns a CellFloes list").
	CellFloes [][][]CellFloeRef

	// Stress is indexed [i][j] over cells (Nx x Ny).
	Stress [][]*IceStressCell
}

// New builds a grid from explicit cell counts.
func New(x0, xf, y0, yf float64, nx, ny int) *Grid {
	if nx < 1 || ny < 1 {
		chk.Panic("ArgumentOutOfRange: grid requires Nx,Ny >= 1, got (%d,%d)", nx, ny)
	}
	if xf <= x0 || yf <= y0 {
		chk.Panic("DomainInvariant: grid bounds must satisfy xf>x0 and yf>y0")
	}
	g := &Grid{Nx: nx, Ny: ny}
	g.Xg = linspace(x0, xf, nx+1)
	g.Yg = linspace(y0, yf, ny+1)
	g.Xc = centers(g.Xg)
	g.Yc = centers(g.Yg)
	g.CellFloes = make([][][]CellFloeRef, nx+1)
	for i := range g.CellFloes {
		g.CellFloes[i] = make([][]CellFloeRef, ny+1)
	}
	g.Stress = make([][]*IceStressCell, nx)
	for i := range g.Stress {
		g.Stress[i] = make([]*IceStressCell, ny)
		for j := range g.Stress[i] {
			g.Stress[i][j] = &IceStressCell{}
		}
	}
	return g
}

// NewFromSpacing builds a grid from a target cell spacing instead of an
// explicit cell count: the count is (xf-x0)/dx (resp. (yf-y0)/dy) rounded
// to the nearest integer, and the grid spans exactly [x0,xf] x [y0,yf], so
// the realized spacing can differ from dx,dy.
func NewFromSpacing(x0, xf, y0, yf, dx, dy float64) *Grid {
	if dx <= 0 || dy <= 0 {
		chk.Panic("ArgumentOutOfRange: grid spacing must be positive, got (%v,%v)", dx, dy)
	}
	nx := int((xf-x0)/dx + 0.5)
	ny := int((yf-y0)/dy + 0.5)
	return New(x0, xf, y0, yf, nx, ny)
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	return out
}

func centers(lines []float64) []float64 {
	out := make([]float64, len(lines)-1)
	for i := range out {
		out[i] = 0.5 * (lines[i] + lines[i+1])
	}
	return out
}

// CellPolygon returns the axis-aligned rectangle of cell (i,j).
func (o *Grid) CellPolygon(i, j int) *geom.Polygon {
	p, err := geom.New([]geom.Point{
		{o.Xg[i], o.Yg[j]},
		{o.Xg[i+1], o.Yg[j]},
		{o.Xg[i+1], o.Yg[j+1]},
		{o.Xg[i], o.Yg[j+1]},
	})
	if err != nil {
		chk.Panic("internal: cell polygon degenerate: %v", err)
	}
	return p
}

// ClearCellFloes empties the per-grid-line-point floe registration lists,
// called at the start of every timestep.
func (o *Grid) ClearCellFloes() {
	for i := range o.CellFloes {
		for j := range o.CellFloes[i] {
			o.CellFloes[i][j] = o.CellFloes[i][j][:0]
		}
	}
}

// ClearStress resets every cell's ice-stress accumulator.
func (o *Grid) ClearStress() {
	for i := range o.Stress {
		for j := range o.Stress[i] {
			o.Stress[i][j].Clear()
		}
	}
}

// CandidateCells returns the (i,j) indices of cells whose center lies
// within radius of center, per spec §4.B.
func (o *Grid) CandidateCells(center geom.Point, radius float64) [][2]int {
	var out [][2]int
	for i, xc := range o.Xc {
		if xc < center.X-radius-maxSpacing(o.Xg) || xc > center.X+radius+maxSpacing(o.Xg) {
			continue
		}
		for j, yc := range o.Yc {
			d := center.Dist(geom.Point{X: xc, Y: yc})
			if d <= radius {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

func maxSpacing(lines []float64) float64 {
	m := 0.0
	for i := 1; i < len(lines); i++ {
		if d := lines[i] - lines[i-1]; d > m {
			m = d
		}
	}
	return m
}

// OceanAtmos holds the ocean/atmosphere state matrices, one value per
// grid-line point, sized (Nx+1) x (Ny+1) per spec §3.
type OceanAtmos struct {
	Nx, Ny int

	U, V           [][]float64 // ocean surface velocity
	Uatm, Vatm     [][]float64 // atmosphere velocity
	Temp           [][]float64 // ocean temperature
	TauX, TauY     [][]float64 // ice-on-ocean stress; coupling accumulates reverse stress in Grid.Stress, not here
	SiFrac         [][]float64 // sea-ice areal fraction
	HflxFactor     [][]float64 // heat-flux scaling factor
	Dissolved      [][]float64 // dissolved/melted ice tracer
}

// NewOceanAtmos allocates zeroed matrices sized to g.
func NewOceanAtmos(g *Grid) *OceanAtmos {
	nx, ny := g.Nx+1, g.Ny+1
	oa := &OceanAtmos{Nx: nx, Ny: ny}
	oa.U = alloc(nx, ny)
	oa.V = alloc(nx, ny)
	oa.Uatm = alloc(nx, ny)
	oa.Vatm = alloc(nx, ny)
	oa.Temp = alloc(nx, ny)
	oa.TauX = alloc(nx, ny)
	oa.TauY = alloc(nx, ny)
	oa.SiFrac = alloc(nx, ny)
	oa.HflxFactor = alloc(nx, ny)
	oa.Dissolved = alloc(nx, ny)
	return oa
}

func alloc(nx, ny int) [][]float64 {
	m := make([][]float64, nx)
	for i := range m {
		m[i] = make([]float64, ny)
	}
	return m
}

// SampleNearest returns the value of a grid-line-sized field at the
// grid-line point nearest pt, used by the integrator to read a scalar
// forcing field (e.g. heat-flux factor) at a floe's centroid.
func (o *Grid) SampleNearest(field [][]float64, pt geom.Point) float64 {
	bi, bj := 0, 0
	best := -1.0
	for i, x := range o.Xg {
		for j, y := range o.Yg {
			d := pt.Dist(geom.Point{X: x, Y: y})
			if best < 0 || d < best {
				best, bi, bj = d, i, j
			}
		}
	}
	return field[bi][bj]
}

// ClearSiFrac zeroes the per-step sea-ice fraction accumulator.
func (o *OceanAtmos) ClearSiFrac() {
	for i := range o.SiFrac {
		for j := range o.SiFrac[i] {
			o.SiFrac[i][j] = 0
		}
	}
}

// CheckThermodynamics logs and returns a (non-fatal) ThermodynamicWarning
// for every grid-line point whose ocean temperature lies outside
// [freezeLo, freezeHi]. It does not compare ocean and atmosphere
// temperatures: OceanAtmos holds no atmosphere temperature field.
func (o *OceanAtmos) CheckThermodynamics(freezeLo, freezeHi float64) []error {
	var warnings []error
	for i := range o.Temp {
		for j := range o.Temp[i] {
			t := o.Temp[i][j]
			if t < freezeLo || t > freezeHi {
				warn := chk.Err("ThermodynamicWarning: ocean temperature %v at (%d,%d) outside freezing range [%v,%v]", t, i, j, freezeLo, freezeHi)
				io.Pfyel("%v\n", warn)
				warnings = append(warnings, warn)
			}
		}
	}
	return warnings
}
