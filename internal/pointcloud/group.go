package pointcloud

import "sort"

// GroupIndex maps a group id to the ordered indices of its points in a Cloud.
type GroupIndex map[int][]int

// GroupBy builds the group index of a cloud in a single pass. Point order
// within a group follows cloud order.
func GroupBy(c Cloud) GroupIndex {
	idx := make(GroupIndex)
	for i, p := range c {
		idx[p.GroupID] = append(idx[p.GroupID], i)
	}
	return idx
}

// IDs returns the group ids in ascending order.
func (g GroupIndex) IDs() []int {
	ids := make([]int, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Count returns the number of points in group id.
func (g GroupIndex) Count(id int) int {
	return len(g[id])
}

// Subset copies the points of group id out of c. Unknown ids yield an empty cloud.
func (g GroupIndex) Subset(c Cloud, id int) Cloud {
	indices := g[id]
	out := make(Cloud, len(indices))
	for i, j := range indices {
		out[i] = c[j]
	}
	return out
}
