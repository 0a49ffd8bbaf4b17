// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/Caltech-OCTO/subzero/domain"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
)

// axisCross describes one periodic axis: the translation applied to build a
// ghost, and how to test whether a floe's bounding disc crosses it.
type axisCross struct {
	translate geom.Point
	crosses   func(f *floe.Floe, d *domain.Domain) bool
}

func axes(d *domain.Domain) []axisCross {
	var out []axisCross
	if d.West.Periodic() {
		width := d.Width()
		out = append(out,
			axisCross{
				translate: geom.Point{X: width},
				crosses: func(f *floe.Floe, d *domain.Domain) bool {
					return f.Centroid.X-f.Rmax < d.West.Val
				},
			},
			axisCross{
				translate: geom.Point{X: -width},
				crosses: func(f *floe.Floe, d *domain.Domain) bool {
					return f.Centroid.X+f.Rmax > d.East.Val
				},
			},
		)
	}
	if d.South.Periodic() {
		height := d.Height()
		out = append(out,
			axisCross{
				translate: geom.Point{Y: height},
				crosses: func(f *floe.Floe, d *domain.Domain) bool {
					return f.Centroid.Y-f.Rmax < d.South.Val
				},
			},
			axisCross{
				translate: geom.Point{Y: -height},
				crosses: func(f *floe.Floe, d *domain.Domain) bool {
					return f.Centroid.Y+f.Rmax > d.North.Val
				},
			},
		)
	}
	return out
}

// translateFloe returns a ghost clone of f translated by v.
func translateFloe(f *floe.Floe, v geom.Point) *floe.Floe {
	g := f.Clone()
	g.Polygon = g.Polygon.Translate(v.X, v.Y)
	g.Centroid = g.Centroid.Add(v)
	g.ParentIDs = nil
	return g
}

// swapState exchanges the geometric/kinematic state of a and b in place,
// keeping their identity fields (ID, GhostID, Ghosts) fixed. Used when a
// freshly built ghost ends up in-domain while the parent that spawned it
// does not (spec §4.C.3: "the real floe always has an in-domain centroid").
func swapState(a, b *floe.Floe) {
	a.Polygon, b.Polygon = b.Polygon, a.Polygon
	a.Centroid, b.Centroid = b.Centroid, a.Centroid
	a.U, b.U = b.U, a.U
	a.V, b.V = b.V, a.V
	a.Xi, b.Xi = b.Xi, a.Xi
	a.Alpha, b.Alpha = b.Alpha, a.Alpha
	a.PrevU, b.PrevU = b.PrevU, a.PrevU
	a.PrevV, b.PrevV = b.PrevV, a.PrevV
	a.PrevXi, b.PrevXi = b.PrevXi, a.PrevXi
	a.PrevDU, b.PrevDU = b.PrevDU, a.PrevDU
	a.PrevDV, b.PrevDV = b.PrevDV, a.PrevDV
	a.PrevDXi, b.PrevDXi = b.PrevDXi, a.PrevDXi
}

// BuildGhosts implements spec §4.C.3: for every periodic axis and every real
// floe whose bounding disc crosses it, creates one translated ghost replica,
// swapping parent/ghost state if the parent would otherwise end up outside
// the domain. It mutates floes' Ghosts fields and returns the full slice
// with ghosts appended (real floes occupy indices [0,nReal)).
func BuildGhosts(floes []*floe.Floe, d *domain.Domain) []*floe.Floe {
	crossings := axes(d)
	if len(crossings) == 0 {
		return floes
	}
	nReal := len(floes)
	for i := 0; i < nReal; i++ {
		f := floes[i]
		f.Ghosts = nil
		for _, ax := range crossings {
			if !ax.crosses(f, d) {
				continue
			}
			ghost := translateFloe(f, ax.translate)
			ghost.ID = f.ID
			ghost.GhostID = len(f.Ghosts) + 1
			floes = append(floes, ghost)
			f.Ghosts = append(f.Ghosts, len(floes)-1)

			if !d.Contains(f.Centroid) && d.Contains(ghost.Centroid) {
				swapState(f, ghost)
			}
		}
	}
	return floes
}

// FoldGhostInteractions implements the ghost-folding half of Pass 2: for
// every real floe, append each of its ghosts' accumulated interaction rows
// (their Px,Py offsets are already expressed relative to the shared shape's
// centroid, hence translation-invariant and usable unchanged) onto the
// parent's own table, then clears the ghost rows.
func FoldGhostInteractions(floes []*floe.Floe) {
	nReal := 0
	for _, f := range floes {
		if f.IsReal() {
			nReal++
		}
	}
	for i := 0; i < nReal; i++ {
		parent := floes[i]
		for _, gi := range parent.Ghosts {
			ghost := floes[gi]
			for _, row := range ghost.Interactions {
				parent.AddInteraction(row)
			}
			ghost.Interactions = nil
			ghost.NumInters = 0
		}
	}
}
