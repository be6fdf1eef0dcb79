// Package layout maps the physical geometry of the tree onto LED
// string indices. The string winds up and down eight branches, so
// neighbouring logical indices are not neighbouring LEDs; patterns
// address the tree by (row, branch) through this table instead.
package layout

const (
	// NumBranches is the number of branches around the tree.
	NumBranches = 8
	// BranchLEDs is the number of LEDs per branch, star excluded.
	BranchLEDs = 3
	// Star is the string index of the tree-top LED. The bottom row of
	// the table points every branch at it.
	Star = 3
)

// indices[row][branch]: row 0 is the top of each branch, row
// BranchLEDs the star.
var indices = [BranchLEDs + 1][NumBranches]int{
	{24, 19, 7, 0, 16, 15, 6, 12},
	{23, 20, 8, 1, 17, 14, 5, 11},
	{22, 21, 9, 2, 18, 13, 4, 10},
	{3, 3, 3, 3, 3, 3, 3, 3},
}

// Index returns the string index of the LED at (row, branch). It
// panics when either coordinate is out of range, like any array index.
func Index(row, branch int) int {
	return indices[row][branch]
}

// Column returns the string indices of one branch, top row first. The
// star is not included. The slice is freshly allocated.
func Column(branch int) []int {
	out := make([]int, BranchLEDs)
	for row := 0; row < BranchLEDs; row++ {
		out[row] = indices[row][branch]
	}
	return out
}

// Row returns the string indices of one height ring around the tree,
// branch 0 first. The slice is freshly allocated.
func Row(row int) []int {
	out := make([]int, NumBranches)
	copy(out, indices[row][:])
	return out
}
