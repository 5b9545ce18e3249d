package reconcile

// Result partitions two inputs into items to add, items to remove and items
// present in both.
type Result[T any] struct {
	ToAdd     []T
	ToRemove  []T
	Unchanged []T
}

// Empty reports whether the result requires no writes.
func (r Result[T]) Empty() bool {
	return len(r.ToAdd) == 0 && len(r.ToRemove) == 0
}

// Diff compares two lists of comparable identities.
func Diff[K comparable](desired, current []K) Result[K] {
	return DiffBy(desired, current, func(k K) K { return k })
}

// DiffBy compares two lists whose identity is derived by key. When both sides
// hold an item with the same key, Unchanged carries the desired side's value.
func DiffBy[T any, K comparable](desired, current []T, key func(T) K) Result[T] {
	currentKeys := make(map[K]struct{}, len(current))
	for _, item := range current {
		currentKeys[key(item)] = struct{}{}
	}

	var result Result[T]
	desiredKeys := make(map[K]struct{}, len(desired))
	for _, item := range desired {
		k := key(item)
		if _, dup := desiredKeys[k]; dup {
			continue
		}
		desiredKeys[k] = struct{}{}
		if _, ok := currentKeys[k]; ok {
			result.Unchanged = append(result.Unchanged, item)
		} else {
			result.ToAdd = append(result.ToAdd, item)
		}
	}

	seen := make(map[K]struct{}, len(current))
	for _, item := range current {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := desiredKeys[k]; !ok {
			result.ToRemove = append(result.ToRemove, item)
		}
	}
	return result
}
