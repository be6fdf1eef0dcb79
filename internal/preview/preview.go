// Package preview paints committed LED frames onto a display.Drawer
// instead of real hardware, for machines without an SPI port. Wired
// behind a recording SPI port it receives the exact bytes the tree
// device would have transmitted.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-arborluminis/internal/tree"
)

// Sink accepts raw transmission frames through Write, decodes the
// per-LED records back into brightness-scaled RGB and draws them as a
// one-pixel-high strip.
type Sink struct {
	d    display.Drawer
	nled int
	img  *image.NRGBA
}

// New returns a Sink expecting frames for nled LEDs.
func New(d display.Drawer, nled int) *Sink {
	return &Sink{
		d:    d,
		nled: nled,
		img:  image.NewNRGBA(image.Rect(0, 0, nled, 1)),
	}
}

// Write consumes exactly one full transmission frame per call.
func (s *Sink) Write(p []byte) (int, error) {
	if len(p) != tree.FrameLen(s.nled) {
		return 0, fmt.Errorf("preview: frame is %d bytes, want %d", len(p), tree.FrameLen(s.nled))
	}
	for i := 0; i < s.nled; i++ {
		rec := p[4+i*4 : 4+i*4+4]
		level := int(rec[0] & 0x1F)
		// Wire order is B, G, R.
		s.img.SetNRGBA(i, 0, color.NRGBA{
			R: scale(rec[3], level),
			G: scale(rec[2], level),
			B: scale(rec[1], level),
			A: 255,
		})
	}
	if err := s.d.Draw(s.d.Bounds(), s.img, image.Point{}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close halts the drawer.
func (s *Sink) Close() error {
	return s.d.Halt()
}

func scale(ch byte, level int) uint8 {
	return uint8(int(ch) * level / 31)
}
