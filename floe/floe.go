// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package floe implements the floe entity (state, stress history, fuse/
// remove lifecycle) and the factory operations that construct floes from
// coordinates, polygons, or a Voronoi tessellation fill.
package floe

import (
	"github.com/Caltech-OCTO/subzero/geom"
)

// Status is the per-floe lifecycle state.
type Status int

const (
	Active Status = iota
	Remove
	Fuse
)

// Tensor2 is a symmetric-or-not 2x2 tensor, used for stress and strain.
type Tensor2 [2][2]float64

// Add returns o+b.
func (o Tensor2) Add(b Tensor2) Tensor2 {
	return Tensor2{
		{o[0][0] + b[0][0], o[0][1] + b[0][1]},
		{o[1][0] + b[1][0], o[1][1] + b[1][1]},
	}
}

// Sub returns o-b.
func (o Tensor2) Sub(b Tensor2) Tensor2 {
	return Tensor2{
		{o[0][0] - b[0][0], o[0][1] - b[0][1]},
		{o[1][0] - b[1][0], o[1][1] - b[1][1]},
	}
}

// Scale returns o scaled by f.
func (o Tensor2) Scale(f float64) Tensor2 {
	return Tensor2{
		{o[0][0] * f, o[0][1] * f},
		{o[1][0] * f, o[1][1] * f},
	}
}

// StressHistory is a fixed-capacity ring buffer of 2x2 tensors with a
// running sum kept alongside it, per spec §9: "push subtracts the evicted
// matrix and adds the new one in O(1)".
type StressHistory struct {
	buf   []Tensor2
	head  int
	count int
	Sum   Tensor2
}

// NewStressHistory allocates a ring buffer of the given capacity.
func NewStressHistory(capacity int) *StressHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &StressHistory{buf: make([]Tensor2, capacity)}
}

// Push appends m, evicting the oldest entry once the buffer is full.
func (o *StressHistory) Push(m Tensor2) {
	cap := len(o.buf)
	if o.count == cap {
		evicted := o.buf[o.head]
		o.Sum = o.Sum.Sub(evicted)
	} else {
		o.count++
	}
	o.buf[o.head] = m
	o.Sum = o.Sum.Add(m)
	o.head = (o.head + 1) % cap
}

// Len returns the number of tensors currently stored.
func (o *StressHistory) Len() int { return o.count }

// Mean returns the running average of the buffer's contents (zero tensor
// when empty).
func (o *StressHistory) Mean() Tensor2 {
	if o.count == 0 {
		return Tensor2{}
	}
	return o.Sum.Scale(1 / float64(o.count))
}

// Interaction is one row of a floe's collision-interaction table: the force
// exerted on this floe by another floe, wall, or topography element, and
// its point of application expressed as an offset from this floe's own
// centroid (so that torque = Px*Fy - Py*Fx directly).
type Interaction struct {
	OtherID int // id of the other floe/topography this interaction is with
	Fx, Fy  float64
	Px, Py  float64 // point of application, offset from this floe's centroid
	Torque  float64
	Overlap float64 // overlap area contributing to this interaction
}

// Floe is a single rigid polygonal ice plate.
type Floe struct {
	// geometry
	Polygon  *geom.Polygon
	Centroid geom.Point
	Area     float64
	Rmax     float64

	// mass properties
	Height float64
	Mass   float64
	Moment float64

	// kinematics
	U, V  float64 // linear velocity
	Xi    float64 // angular velocity ξ
	Alpha float64 // orientation, radians

	// previous-step derivatives, for the Adams-Bashforth-like integrator
	// (spec §4.D). PrevU/PrevV/PrevXi are ṗx,ṗy,ṗα (previous u,v,ξ used in
	// the position/orientation step); PrevDU/PrevDV/PrevDXi are ṗu,ṗv,ṗξ
	// (previous du̇,dv̇,dξ̇ used in the velocity step).
	PrevU, PrevV, PrevXi    float64
	PrevDU, PrevDV, PrevDXi float64

	// sub-floe integration points: offsets from the centroid used as
	// quadrature points when integrating OA forces over the footprint.
	SubFloePointsX []float64
	SubFloePointsY []float64

	// forces accumulated this timestep
	FxOA, FyOA, TorqueOA     float64
	CollisionFx, CollisionFy float64
	CollisionTrq             float64

	// interactions
	Interactions []Interaction
	NumInters    int
	Overarea     float64

	// status
	Status      Status
	FusePartner []int // IDs (not slice indices) of floes this one is marked to fuse with

	// identity
	ID         int
	GhostID    int // 0 => real; >0 => ghost replica
	ParentIDs  []int
	Ghosts     []int // indices of this floe's ghost replicas, valid for reals only

	// stress/strain
	StressAccum Tensor2
	History     *StressHistory
	Strain      Tensor2
}

// IsReal reports whether this entry is a real floe (as opposed to a ghost
// replica created for periodic collision detection).
func (o *Floe) IsReal() bool { return o.GhostID == 0 }

// ResetInteractions clears the interaction table and per-step totals ahead
// of a new collision pass, keeping the underlying slice capacity (Go's
// append already grows geometrically, so there is no need to hand-roll the
// doubling growth strategy beyond keeping this capacity across steps).
func (o *Floe) ResetInteractions() {
	o.Interactions = o.Interactions[:0]
	o.NumInters = 0
	o.Overarea = 0
	o.CollisionFx, o.CollisionFy, o.CollisionTrq = 0, 0, 0
}

// AddInteraction appends a row and keeps NumInters/Overarea in sync.
func (o *Floe) AddInteraction(row Interaction) {
	o.Interactions = append(o.Interactions, row)
	o.NumInters++
	o.Overarea += row.Overlap
}

// ResetOA clears the ocean/atmosphere force accumulators ahead of a new
// coupling pass.
func (o *Floe) ResetOA() {
	o.FxOA, o.FyOA, o.TorqueOA = 0, 0, 0
}

// Clone copies the floe, used to build ghost replicas (spec §4.C.3). The
// polygon, sub-floe points and parent IDs are deep-copied; the stress
// History pointer is shared with the original.
func (o *Floe) Clone() *Floe {
	g := *o
	g.Polygon = &geom.Polygon{Outer: append([]geom.Point(nil), o.Polygon.Outer...)}
	for _, h := range o.Polygon.Holes {
		g.Polygon.Holes = append(g.Polygon.Holes, append([]geom.Point(nil), h...))
	}
	g.SubFloePointsX = append([]float64(nil), o.SubFloePointsX...)
	g.SubFloePointsY = append([]float64(nil), o.SubFloePointsY...)
	g.Interactions = nil
	g.NumInters = 0
	g.Overarea = 0
	g.ParentIDs = append([]int(nil), o.ParentIDs...)
	g.Ghosts = nil
	g.FusePartner = nil
	return &g
}
