package music

// CombinationsLex returns every k-element subset of [0, n) in lexicographic order.
//
// Each combination is strictly increasing. The first result is [0..k-1] and
// the last is [n-k..n-1]. k > n or k < 0 yields no combinations; k == 0
// yields a single empty combination.
func CombinationsLex(n, k int) [][]int {
	if k < 0 || k > n {
		return [][]int{}
	}
	if k == 0 {
		return [][]int{{}}
	}

	comb := make([]int, k)
	for i := range comb {
		comb[i] = i
	}

	result := make([][]int, 0, Binomial(n, k))
	for {
		next := make([]int, k)
		copy(next, comb)
		result = append(result, next)

		// Rightmost position that can still move
		i := k - 1
		for i >= 0 && comb[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		comb[i]++
		for j := i + 1; j < k; j++ {
			comb[j] = comb[j-1] + 1
		}
	}
	return result
}

// Binomial returns C(n, k), or 0 when k is out of [0, n]
func Binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}

// Page returns the pageIndex-th window of perPage elements
func Page[T any](items []T, pageIndex, perPage int) []T {
	if pageIndex < 0 || perPage <= 0 {
		return []T{}
	}
	start := pageIndex * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
