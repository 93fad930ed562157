package framegraph

import "container/heap"

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder peels zero-indegree passes Kahn-style. The ready set is a min-heap
// keyed by registration index, so simultaneously-eligible passes always come
// out in registration order and the result is deterministic for identical
// registrations. A short result means the remaining passes form a cycle.
func topoOrder(outgoing [][]int, indegIn []int) []int {
	indeg := make([]int, len(indegIn))
	copy(indeg, indegIn)

	ready := &intMinHeap{}
	heap.Init(ready)
	for i := range indeg {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		out = append(out, u)
		for _, v := range outgoing[u] {
			indeg[v]--
			if indeg[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}
	return out
}

// computeLevels groups passes by longest-path depth. An edge A->B forces
// depth(B) > depth(A), so two passes sharing a depth can have no edge between
// them. Levels are returned front to back; membership within a level keeps
// registration order because order itself does.
func computeLevels(order []int, incoming [][]int) [][]int {
	depth := make([]int, len(order))
	maxDepth := 0
	for _, u := range order {
		d := 0
		for _, p := range incoming[u] {
			if depth[p]+1 > d {
				d = depth[p] + 1
			}
		}
		depth[u] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]int, maxDepth+1)
	for _, u := range order {
		levels[depth[u]] = append(levels[depth[u]], u)
	}
	return levels
}

// findCycle extracts the members of one cycle with a deterministic DFS over
// pass indices. It returns a single stable witness, not every cycle.
func findCycle(n int, outgoing [][]int) []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range outgoing[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				// Back-edge u -> v closes the cycle v ... u. Walk parents
				// from u back to v, then reverse into forward order.
				walk := []int{v}
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					walk = append(walk, cur)
				}
				for i := len(walk) - 1; i >= 1; i-- {
					cycle = append(cycle, walk[i])
				}
				cycle = append([]int{v}, cycle...)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := 0; i < n; i++ {
		if color[i] != white {
			continue
		}
		if dfs(i) {
			break
		}
	}
	return cycle
}
