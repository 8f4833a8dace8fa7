// Package dedupe collapses repeated entries of the same event.
package dedupe

// Result splits input positions into the kept representative per key and the
// dropped repeats. Both slices hold indexes into the input and are in
// input order.
type Result struct {
	Kept    []int
	Dropped []int
}

// BestByKey keeps, for every key, the single item that wins under better.
// When better reports neither item as winning, the earlier item is kept, so the
// outcome only depends on input order and never on map iteration.
func BestByKey[T any](items []T, key func(T) string, better func(a, b T) bool) Result {
	winner := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for i, it := range items {
		k := key(it)
		cur, ok := winner[k]
		if !ok {
			winner[k] = i
			order = append(order, k)
			continue
		}
		if better(it, items[cur]) {
			winner[k] = i
		}
	}

	kept := make(map[int]bool, len(winner))
	for _, k := range order {
		kept[winner[k]] = true
	}

	res := Result{
		Kept:    make([]int, 0, len(winner)),
		Dropped: make([]int, 0, len(items)-len(winner)),
	}
	for i := range items {
		if kept[i] {
			res.Kept = append(res.Kept, i)
		} else {
			res.Dropped = append(res.Dropped, i)
		}
	}
	return res
}
