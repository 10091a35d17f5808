package util

// Contains returns whether the given slice contains the given element.
func Contains[T comparable](slice []T, elem T) bool {
	for _, x := range slice {
		if x == elem {
			return true
		}
	}

	return false
}

// Map applies a function to the given slice and returns the transformed slice.
func Map[T, R any](slice []T, f func(T) R) []R {
	mSlice := make([]R, len(slice))

	for i, elem := range slice {
		mSlice[i] = f(elem)
	}

	return mSlice
}

// Filter returns the elements of the slice for which the predicate holds, in
// their original order.
func Filter[T any](slice []T, pred func(T) bool) []T {
	var fSlice []T

	for _, elem := range slice {
		if pred(elem) {
			fSlice = append(fSlice, elem)
		}
	}

	return fSlice
}

// IndexOf returns the index of the first occurrence of elem or -1.
func IndexOf[T comparable](slice []T, elem T) int {
	for i, x := range slice {
		if x == elem {
			return i
		}
	}

	return -1
}
