// Package collection provides generic, functional-style helpers for slices.
//
// Usage:
//
//	names := collection.Map(products, func(p models.Product) string { return p.Name })
//	low := collection.Filter(products, func(p models.Product) bool { return p.Stock < 5 })
package collection

import "sort"

// Map transforms each element of slice s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first element matching fn, or (zero, false).
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Unique returns s with duplicate elements removed, keeping first-seen order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	var out []T
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// SortBy sorts s in place with less, keeping the order of equal elements.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	return s
}

// Reduce folds s into a single value using fn, starting with initial.
func Reduce[T, R any](s []T, initial R, fn func(carry R, item T) R) R {
	carry := initial
	for _, v := range s {
		carry = fn(carry, v)
	}
	return carry
}

// Take returns the first n elements.
func Take[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	return s[:n]
}
