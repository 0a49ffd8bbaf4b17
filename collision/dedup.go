// Copyright 2024 The Subzero Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import "sync"

// pairKey identifies a logical (id_hi, id_lo) floe pair, independent of
// which real/ghost replica is being tested.
type pairKey struct{ hiID, loID int }

// ghostKey records which ghost replicas (ghost_id per side) were first seen
// for a logical pair.
type ghostKey struct{ hi, lo int }

// pairDedup implements spec §4.C's duplicate-admission rule: a real-real
// pair overrides real-ghost pairs for the same logical interaction, and
// exactly one ghost crossing per periodic axis is admitted.
type pairDedup struct {
	mu sync.Mutex
	m  map[pairKey]ghostKey
}

func newPairDedup() *pairDedup {
	return &pairDedup{m: make(map[pairKey]ghostKey)}
}

// admit reports whether the pair (idA,ghostA)-(idB,ghostB) should be
// processed, recording the first-seen ghost combination for this logical
// pair if this is the first time it's encountered.
func (o *pairDedup) admit(idA, ghostA, idB, ghostB int) bool {
	hiID, loID, ghostHi, ghostLo := idA, idB, ghostA, ghostB
	if idB > idA {
		hiID, loID, ghostHi, ghostLo = idB, idA, ghostB, ghostA
	}
	key := pairKey{hiID, loID}

	o.mu.Lock()
	defer o.mu.Unlock()
	g, ok := o.m[key]
	if !ok {
		o.m[key] = ghostKey{ghostHi, ghostLo}
		return true
	}
	matchHi := ghostHi == g.hi
	matchLo := ghostLo == g.lo
	return matchHi || matchLo
}
