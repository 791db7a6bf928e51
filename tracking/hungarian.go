package tracking

import "math"

// solveAssignment finds the minimum cost assignment of a square cost matrix with the
// Kuhn-Munkres algorithm (potentials form, O(n^3)).
// It returns assignment[row] = column.
func solveAssignment(cost [][]float64) []int {
	n := len(cost)
	assignment := make([]int, n)
	if n == 0 {
		return assignment
	}
	inf := math.MaxFloat64 / 2

	// 1-indexed: column 0 is virtual
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	rowOfColumn := make([]int, n+1)
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		rowOfColumn[0] = i
		j0 := 0
		for j := 1; j <= n; j++ {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := rowOfColumn[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[rowOfColumn[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if rowOfColumn[j0] == 0 {
				break
			}
		}
		// Augmenting path
		for j0 != 0 {
			j1 := way[j0]
			rowOfColumn[j0] = rowOfColumn[j1]
			j0 = j1
		}
	}

	for j := 1; j <= n; j++ {
		assignment[rowOfColumn[j]-1] = j - 1
	}
	return assignment
}
