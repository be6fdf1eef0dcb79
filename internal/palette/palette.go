// Package palette holds the colour records the animation patterns
// share. Records are plain [r, g, b] value slices in the shape the
// tree device accepts.
package palette

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	Red    = []int{255, 0, 0}
	Yellow = []int{255, 255, 0}
	Green  = []int{0, 255, 0}
	Blue   = []int{0, 0, 255}
	White  = []int{255, 255, 255}
	Off    = []int{0, 0, 0}
)

// Swirl is the four-colour cycle the swirl pattern rotates through the
// branches.
var Swirl = [][]int{Red, Yellow, Green, Blue}

// Random returns a fully saturated colour: hue uniform over the wheel,
// saturation and value both 1.
func Random(rnd *rand.Rand) []int {
	r, g, b := colorful.Hsv(rnd.Float64()*360, 1, 1).RGB255()
	return []int{int(r), int(g), int(b)}
}
