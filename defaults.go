// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

// DefaultRoutable returns the indices of the entries the router's default
// route would handle identically: a single link in, the opposite link out.
//
// An entry only qualifies if no entry after it intersects it, otherwise
// removing it would hand its keys to that later entry instead of the
// default route.
func DefaultRoutable(entries []Entry) []int {
	var out []int
	for i, e := range entries {
		if !e.Defaultable() {
			continue
		}
		shadowed := false
		for _, o := range entries[i+1:] {
			if o.Intersects(e.KeyMask) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, i)
		}
	}
	return out
}

// RemoveDefaultRoutes drops the default routable entries from t, but only
// if that alone brings t down to target; otherwise t is left unchanged.
// It reports whether the entries were removed and how many.
//
// The order of the remaining entries is preserved.
func RemoveDefaultRoutes(t *Table, target int) (bool, int) {
	if t.Len() <= target {
		return true, 0
	}

	idx := DefaultRoutable(t.entries[:t.size])
	if t.Len()-len(idx) > target {
		return false, 0
	}

	w, k := 0, 0
	for r := range t.Len() {
		if k < len(idx) && idx[k] == r {
			k++
			continue
		}
		t.Copy(w, r)
		w++
	}
	t.RemoveFromSize(len(idx))

	return true, len(idx)
}
