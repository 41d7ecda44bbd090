// Package schedule computes which care tasks are active for a reference
// month and time, given care profiles and the user's action history. All
// functions are pure and safe for concurrent use; they only read
// caller-supplied inputs.
package schedule

// InWindow reports whether month falls inside the inclusive month window
// [start, end]. Windows may wrap the year end: start=11, end=2 covers
// Nov, Dec, Jan and Feb. Equal start and end mean a single-month window.
func InWindow(start, end, month int) bool {
	if start <= end {
		return month >= start && month <= end
	}
	return month >= start || month <= end
}

// WindowMonths enumerates every calendar month a window spans, in window
// order. Wrapped windows iterate start..12 then 1..end.
func WindowMonths(start, end int) []int {
	if start <= end {
		months := make([]int, 0, end-start+1)
		for m := start; m <= end; m++ {
			months = append(months, m)
		}
		return months
	}
	months := make([]int, 0, (12-start+1)+end)
	for m := start; m <= 12; m++ {
		months = append(months, m)
	}
	for m := 1; m <= end; m++ {
		months = append(months, m)
	}
	return months
}
