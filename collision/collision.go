// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collision implements the three-pass floe-floe and floe-domain
// collision engine (spec §4.C): a parallel detection/force pass, a serial
// mirroring pass, and a parallel totals pass, plus the ghost-floe machinery
// that lets periodic boundaries participate in detection.
package collision

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Caltech-OCTO/subzero/config"
	"github.com/Caltech-OCTO/subzero/domain"
	"github.com/Caltech-OCTO/subzero/floe"
	"github.com/Caltech-OCTO/subzero/geom"
)

// largeFloeAreaThreshold selects between the two spring-constant formulas of
// spec §4.C: floes whose area both exceed this are treated as "large" and
// use k = E*min(h)/min(sqrt(area)); this value is not given by the spec and
// is an open-question decision recorded in DESIGN.md, picked so that the
// typical floe sizes used in the scenario tests of spec §8 fall below it.
const largeFloeAreaThreshold = 1e9

// contact is one pairwise overlap found in Pass 1, expressed with a world
// coordinate contact point so Pass 2 can re-express it relative to either
// floe's own centroid.
type contact struct {
	jIdx    int
	fx, fy  float64
	cx, cy  float64
	overlap float64
}

// springConstant implements spec §4.C's floe-floe spring constant branch.
func springConstant(e, h1, h2, a1, a2 float64) float64 {
	if math.Min(a1, a2) > largeFloeAreaThreshold {
		return e * math.Min(h1, h2) / math.Min(math.Sqrt(a1), math.Sqrt(a2))
	}
	return e * h1 * h2 / (h1*math.Sqrt(a2) + h2*math.Sqrt(a1))
}

// wallSpringConstant implements the single-body wall/topography spring
// constant of spec §4.C ("k = E*h/sqrt(A)").
func wallSpringConstant(e, h, a float64) float64 {
	return e * h / math.Sqrt(a)
}

// minRegionArea implements the "min(n1,n2)*100/1.75" area threshold of spec
// §4.C, read as the sub-floe point counts of the two floes (the spec's n1,
// n2 are otherwise undefined; this reading is the only one anchored to
// quantities the data model actually carries, and is recorded in DESIGN.md).
func minRegionArea(a, b *floe.Floe) float64 {
	n1, n2 := len(a.SubFloePointsX), len(b.SubFloePointsX)
	n := n1
	if n2 < n1 {
		n = n2
	}
	return float64(n) * 100 / 1.75
}

// Engine runs the three collision passes over a floe slice that has already
// had BuildGhosts applied.
type Engine struct {
	Constants config.Constants
	Settings  config.CollisionConfig
	Dt        float64
}

// Run executes Pass 1 (parallel detection+force), Pass 2 (serial mirror and
// ghost fold), and Pass 3 (parallel totals) in sequence.
func (o *Engine) Run(ctx context.Context, floes []*floe.Floe, d *domain.Domain) error {
	nReal := 0
	for _, f := range floes {
		if f.IsReal() {
			nReal++
		}
	}
	for _, f := range floes {
		f.ResetInteractions()
	}

	contacts := make([][]contact, len(floes))
	if err := o.pass1(ctx, floes, d, contacts); err != nil {
		return err
	}
	o.pass2(floes, nReal, contacts)
	FoldGhostInteractions(floes)
	return o.pass3(ctx, floes[:nReal])
}

// pass1 is the parallel detection/force pass: floe-floe pairwise overlap and
// floe-domain (wall/topography) interaction, one goroutine per floe i.
func (o *Engine) pass1(ctx context.Context, floes []*floe.Floe, d *domain.Domain, contacts [][]contact) error {
	dedup := newPairDedup()
	g, _ := errgroup.WithContext(ctx)
	for i := range floes {
		i := i
		g.Go(func() error {
			fi := floes[i]
			for j := i + 1; j < len(floes); j++ {
				fj := floes[j]
				if fi.ID == fj.ID {
					continue
				}
				if fi.Centroid.Dist(fj.Centroid) > fi.Rmax+fj.Rmax {
					continue
				}
				if !dedup.admit(fi.ID, fi.GhostID, fj.ID, fj.GhostID) {
					continue
				}
				o.pairwise(fi, fj, i, j, contacts)
			}
			o.domainInteraction(fi, d)
			return nil
		})
	}
	return g.Wait()
}

func (o *Engine) pairwise(fi, fj *floe.Floe, i, j int, contacts [][]contact) {
	regions := geom.Intersect(fi.Polygon, fj.Polygon)
	if len(regions) == 0 {
		return
	}
	total := 0.0
	for _, r := range regions {
		total += r.Area()
	}
	if total/fi.Area > o.Settings.FloeFloeMaxOverlap || total/fj.Area > o.Settings.FloeFloeMaxOverlap {
		fi.Status = floe.Fuse
		fj.Status = floe.Fuse
		fi.FusePartner = append(fi.FusePartner, fj.ID)
		fj.FusePartner = append(fj.FusePartner, fi.ID)
		return
	}

	minArea := minRegionArea(fi, fj)
	k := springConstant(o.Constants.E, fi.Height, fj.Height, fi.Area, fj.Area)
	for _, region := range regions {
		area := region.Area()
		if area <= minArea {
			continue
		}
		axis, ok := contactAxis(region, fi.Polygon, fj.Polygon)
		if !ok {
			continue
		}
		c := region.Centroid()
		mag := area * k

		relVel := velocityAt(fi.U, fi.V, fi.Xi, fi.Centroid, c).Sub(velocityAt(fj.U, fj.V, fj.Xi, fj.Centroid, c))
		contactLen := math.Sqrt(area)
		friction := frictionForce(relVel, mag, contactLen, o.Dt, o.Constants.E, o.Constants.Nu, o.Constants.Mu)

		fx := axis.X*mag + friction.X
		fy := axis.Y*mag + friction.Y

		contacts[i] = append(contacts[i], contact{jIdx: j, fx: fx, fy: fy, cx: c.X, cy: c.Y, overlap: area})
	}
}

// domainInteraction handles fi's bounding-circle prune against the four
// walls and every topography element (spec §4.C paragraph 2).
func (o *Engine) domainInteraction(fi *floe.Floe, d *domain.Domain) {
	for _, w := range d.Walls() {
		if w.Periodic() {
			continue
		}
		box := w.BoundingBox(d)
		if fi.Centroid.Dist(box.Centroid()) > fi.Rmax+box.MaxRadius(box.Centroid()) {
			continue
		}
		regions := geom.Intersect(fi.Polygon, box)
		if len(regions) == 0 {
			continue
		}
		total := 0.0
		for _, r := range regions {
			total += r.Area()
		}
		if w.Kind == domain.OpenKind {
			fi.Status = floe.Remove
			continue
		}
		if total/fi.Area > o.Settings.FloeDomainMaxOverlap {
			fi.Status = floe.Remove
			continue
		}
		k := wallSpringConstant(o.Constants.E, fi.Height, fi.Area)
		normal := w.Normal()
		tangent := w.Tangent()
		for _, region := range regions {
			area := region.Area()
			c := region.Centroid()
			mag := area * k
			fx := -normal.X * mag
			fy := -normal.Y * mag
			// zero-out the component parallel to the wall tangent.
			along := fx*tangent.X + fy*tangent.Y
			fx -= along * tangent.X
			fy -= along * tangent.Y
			fi.AddInteraction(floe.Interaction{
				OtherID: -1 - int(w.Dir),
				Fx:      fx,
				Fy:      fy,
				Px:      c.X - fi.Centroid.X,
				Py:      c.Y - fi.Centroid.Y,
				Torque:  (c.X - fi.Centroid.X) * fy - (c.Y - fi.Centroid.Y) * fx,
				Overlap: area,
			})
		}
	}
	for ti, topo := range d.Topography {
		if fi.Centroid.Dist(topo.Centroid) > fi.Rmax+topo.Rmax {
			continue
		}
		regions := geom.Intersect(fi.Polygon, topo.Polygon)
		if len(regions) == 0 {
			continue
		}
		total := 0.0
		for _, r := range regions {
			total += r.Area()
		}
		if total/fi.Area > o.Settings.FloeDomainMaxOverlap {
			fi.Status = floe.Remove
			continue
		}
		k := wallSpringConstant(o.Constants.E, fi.Height, fi.Area)
		for _, region := range regions {
			area := region.Area()
			axis, ok := contactAxis(region, fi.Polygon, topo.Polygon)
			if !ok {
				continue
			}
			c := region.Centroid()
			mag := area * k
			fi.AddInteraction(floe.Interaction{
				OtherID: -1000 - ti,
				Fx:      axis.X * mag,
				Fy:      axis.Y * mag,
				Px:      c.X - fi.Centroid.X,
				Py:      c.Y - fi.Centroid.Y,
				Torque:  (c.X - fi.Centroid.X) * (axis.Y * mag) - (c.Y - fi.Centroid.Y) * (axis.X * mag),
				Overlap: area,
			})
		}
	}
}

// pass2 is the serial mirror pass: for each Pass-1 contact on floe i, append
// the row to i's table and, if j is real, the sign-flipped mirror to j's.
func (o *Engine) pass2(floes []*floe.Floe, nReal int, contacts [][]contact) {
	for i, row := range contacts {
		fi := floes[i]
		for _, c := range row {
			fj := floes[c.jIdx]
			fi.AddInteraction(floe.Interaction{
				OtherID: fj.ID,
				Fx:      c.fx,
				Fy:      c.fy,
				Px:      c.cx - fi.Centroid.X,
				Py:      c.cy - fi.Centroid.Y,
				Torque:  (c.cx - fi.Centroid.X) * c.fy - (c.cy - fi.Centroid.Y) * c.fx,
				Overlap: c.overlap,
			})
			if c.jIdx < nReal {
				fj.AddInteraction(floe.Interaction{
					OtherID: fi.ID,
					Fx:      -c.fx,
					Fy:      -c.fy,
					Px:      c.cx - fj.Centroid.X,
					Py:      c.cy - fj.Centroid.Y,
					Torque:  (c.cx - fj.Centroid.X) * (-c.fy) - (c.cy - fj.Centroid.Y) * (-c.fx),
					Overlap: c.overlap,
				})
			}
		}
	}
}

// pass3 is the parallel totals pass: sum each real floe's interaction table
// into its collision force/torque accumulators.
func (o *Engine) pass3(ctx context.Context, reals []*floe.Floe) error {
	g, _ := errgroup.WithContext(ctx)
	for _, f := range reals {
		f := f
		g.Go(func() error {
			var fx, fy, trq float64
			for _, row := range f.Interactions {
				fx += row.Fx
				fy += row.Fy
				trq += row.Px*row.Fy - row.Py*row.Fx
			}
			f.CollisionFx, f.CollisionFy, f.CollisionTrq = fx, fy, trq
			return nil
		})
	}
	return g.Wait()
}
