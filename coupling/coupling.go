// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coupling implements the ocean/atmosphere forcing step: per-floe
// force and torque integrated over the grid cells it overlaps, and the
// reverse stress deposited back onto the ocean grid (spec §4.B).
package coupling

import (
	"math"

	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
	"github.com/Caltech-OCTO/subzero/grid"
)

// cornerAverage reads a grid-line-sized field at the four corners of cell
// (i,j) and averages them, approximating the field's value at the cell
// center. The OA matrices are defined at grid-line points (spec §3) while
// coupling needs one value per overlapped cell; this is the natural
// bilinear-ish reduction and is documented as such in DESIGN.md.
func cornerAverage(field [][]float64, i, j int) float64 {
	return 0.25 * (field[i][j] + field[i+1][j] + field[i+1][j+1] + field[i][j+1])
}

// depositCorners spreads a cell-level quantity evenly onto the cell's four
// grid-line corners, the inverse of cornerAverage.
func depositCorners(field [][]float64, i, j int, v float64) {
	field[i][j] += v / 4
	field[i+1][j] += v / 4
	field[i+1][j+1] += v / 4
	field[i][j+1] += v / 4
}

// Couple computes fOA/torqueOA for one floe and accumulates its reverse
// stress onto the grid's per-cell IceStressCell accumulators and the OA
// field's si_frac. floeIdx is this floe's index in the driver's floe slice,
// used to register the grid-line CellFloes lists (spec §3).
func Couple(f *floe.Floe, floeIdx int, trans geom.Point, g *grid.Grid, oa *grid.OceanAtmos, c config.Constants) {
	candidates := g.CandidateCells(f.Centroid, f.Rmax)
	registerCellFloes(g, floeIdx, trans, f.Centroid, f.Rmax)

	sinT, cosT := math.Sin(c.TurnAngle), math.Cos(c.TurnAngle)
	turnSign := 1.0
	if c.Fcor < 0 {
		turnSign = -1.0
	}
	sinT *= turnSign

	for _, cell := range candidates {
		i, j := cell[0], cell[1]
		cellPoly := g.CellPolygon(i, j)
		overlaps := geom.Intersect(f.Polygon, cellPoly)
		if len(overlaps) == 0 {
			continue
		}
		overlapArea := 0.0
		for _, o := range overlaps {
			overlapArea += o.Area()
		}
		cellArea := cellPoly.Area()
		if cellArea <= 0 || overlapArea <= 0 {
			continue
		}
		r := overlapArea / cellArea
		xc, yc := g.Xc[i], g.Yc[j]

		uIce := f.U - f.Xi*(yc-f.Centroid.Y)
		vIce := f.V + f.Xi*(xc-f.Centroid.X)

		uAtm := cornerAverage(oa.Uatm, i, j)
		vAtm := cornerAverage(oa.Vatm, i, j)
		uOcn := cornerAverage(oa.U, i, j)
		vOcn := cornerAverage(oa.V, i, j)

		atmSpeed := math.Hypot(uAtm, vAtm)
		fAtmX := c.RhoAtmos * c.Cia * atmSpeed * uAtm * overlapArea
		fAtmY := c.RhoAtmos * c.Cia * atmSpeed * vAtm * overlapArea

		massOverArea := f.Mass / f.Area
		fPgX := massOverArea * c.Fcor * vOcn * overlapArea
		fPgY := -massOverArea * c.Fcor * uOcn * overlapArea

		fCorX := massOverArea * c.Fcor * f.V * overlapArea
		fCorY := -massOverArea * c.Fcor * f.U * overlapArea

		dvx, dvy := uOcn-uIce, vOcn-vIce
		rvx := dvx*cosT - dvy*sinT
		rvy := dvx*sinT + dvy*cosT
		dvSpeed := math.Hypot(dvx, dvy)
		fOcnX := c.RhoOcean * c.Cio * dvSpeed * rvx * overlapArea
		fOcnY := c.RhoOcean * c.Cio * dvSpeed * rvy * overlapArea

		fx := fAtmX + fPgX + fCorX + fOcnX
		fy := fAtmY + fPgY + fCorY + fOcnY

		f.FxOA += fx
		f.FyOA += fy
		f.TorqueOA += (xc-f.Centroid.X)*fy - (yc-f.Centroid.Y)*fx

		// reverse ocean stress, a force-per-area (stress) deposited onto
		// the grid weighted by the overlap fraction.
		tauX := -fOcnX / overlapArea * r
		tauY := -fOcnY / overlapArea * r
		g.Stress[i][j].Add(tauX, tauY)
		depositCorners(oa.SiFrac, i, j, r)
	}
}

func registerCellFloes(g *grid.Grid, floeIdx int, trans geom.Point, centroid geom.Point, rmax float64) {
	for i, xg := range g.Xg {
		if xg < centroid.X-rmax || xg > centroid.X+rmax {
			continue
		}
		for j, yg := range g.Yg {
			d := math.Hypot(xg-centroid.X, yg-centroid.Y)
			if d <= rmax {
				g.CellFloes[i][j] = append(g.CellFloes[i][j], grid.CellFloeRef{FloeIdx: floeIdx, Trans: trans})
			}
		}
	}
}
