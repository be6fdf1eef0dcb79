// Package tree drives the 25-LED APA102 string of a 3D RGB Christmas
// tree over SPI.
//
// The device keeps one fixed-size transmission buffer covering the
// whole string: a 4-byte zero start frame, one 4-byte record per LED
// and a 5-byte zero end frame. Set and SetRange mutate the buffer;
// nothing reaches the hardware until Commit transmits it verbatim.
//
// Each LED record on the wire is [brightness, blue, green, red]: the
// brightness byte carries the protocol's fixed 0b111 marker in its top
// three bits and a 5-bit level below, and the colour channels travel
// in reverse order relative to the RGB values handed to Set. Get reads
// records back in raw wire order and does not undo the channel swap.
package tree

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Wire framing.
const (
	startFrameLen = 4
	endFrameLen   = 5
	ledRecordLen  = 4

	// brightnessMarker is the fixed 0b111 prefix the protocol requires
	// on every per-LED brightness byte.
	brightnessMarker = 0xE0
)

// Explicit brightness bounds for Set and SetBrightness. Level 0 would
// be indistinguishable from framing on some strips, so it is not a
// legal explicit value.
const (
	MinBrightness = 1
	MaxBrightness = 31
)

// DefaultLEDs is the LED count of the stock tree: eight branches of
// three plus the star on top.
const DefaultLEDs = 25

// FrameLen returns the size in bytes of one full transmission frame
// for n LEDs, framing included.
func FrameLen(n int) int {
	return startFrameLen + n*ledRecordLen + endFrameLen
}

var (
	// ErrClosed is returned by transport-needing operations after Close.
	ErrClosed = errors.New("tree: device closed")
	// ErrLEDIndex is returned for an index outside [0, Len()).
	ErrLEDIndex = errors.New("tree: LED index out of range")
	// ErrRecordLength is returned when a record is not 3 or 4 values long.
	ErrRecordLength = errors.New("tree: record length must be 3 or 4")
	// ErrChannelRange is returned when any record value exceeds 255.
	ErrChannelRange = errors.New("tree: record value above 255")
	// ErrBrightnessRange is returned for a brightness outside [1, 31].
	ErrBrightnessRange = errors.New("tree: brightness must be between 1 and 31")
	// ErrLengthMismatch is returned by SetRange when a per-index record
	// list does not match the resolved index range.
	ErrLengthMismatch = errors.New("tree: record count does not match index range")
)

// Opts holds the construction options.
type Opts struct {
	// NumLEDs is the string length. 0 means DefaultLEDs.
	NumLEDs int
	// Freq is the SPI clock. 0 means 1MHz, comfortably inside what the
	// bit-banged GPIO12/GPIO25 hat sustains.
	Freq physic.Frequency
}

// Dev is the handle to the LED string.
//
// A Dev is single-owner and not safe for concurrent use; the intended
// caller is one goroutine running an animate-then-sleep loop.
type Dev struct {
	p      spi.PortCloser
	c      conn.Conn
	nled   int
	buf    []byte
	closed bool
}

// New connects to the tree on the supplied SPI port and blanks it.
//
// The port is configured for Mode0, 8-bit words. New takes ownership
// of the port: on any error the port is closed before returning, and
// on success Close releases it. opts can be nil to use defaults.
//
// Construction transmits twice: an all-zero frame to flush whatever
// the strip was showing, then an off frame (brightness 1, channels 0)
// so every LED starts from a defined brightness.
func New(p spi.PortCloser, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	nled := opts.NumLEDs
	if nled == 0 {
		nled = DefaultLEDs
	}
	if nled < 0 {
		p.Close()
		return nil, fmt.Errorf("tree: number of LEDs must be positive, got %d", opts.NumLEDs)
	}
	freq := opts.Freq
	if freq == 0 {
		freq = 1 * physic.MegaHertz
	}
	c, err := p.Connect(freq, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, err
	}
	d := &Dev{
		p:    p,
		c:    c,
		nled: nled,
		buf:  make([]byte, FrameLen(nled)),
	}
	if err := d.Reset(); err != nil {
		p.Close()
		return nil, err
	}
	if err := d.Off(); err != nil {
		p.Close()
		return nil, err
	}
	return d, nil
}

// Len returns the number of LEDs on the string.
func (d *Dev) Len() int {
	return d.nled
}

func (d *Dev) String() string {
	return fmt.Sprintf("tree.Dev{%d}", d.nled)
}

// Set stages one LED record in the transmission buffer.
//
// val is either [r, g, b] or [brightness, r, g, b]. The three-value
// form leaves the LED's brightness byte exactly as a previous write
// left it; the four-value form encodes brightness into the record's
// first wire byte. Values above 255 are rejected; there is no lower
// bound check on channels, negative values truncate to a byte.
//
// The staged bytes are invisible until Commit.
func (d *Dev) Set(ind int, val []int) error {
	if ind < 0 || ind >= d.nled {
		return fmt.Errorf("%w: %d of %d", ErrLEDIndex, ind, d.nled)
	}
	if len(val) < 3 || len(val) > 4 {
		return fmt.Errorf("%w, got %d", ErrRecordLength, len(val))
	}
	// The upper bound applies to every element, the brightness one
	// included, and is checked first: a brightness of 300 reports a
	// value error, not a brightness error.
	for _, v := range val {
		if v > 255 {
			return fmt.Errorf("%w: %d", ErrChannelRange, v)
		}
	}
	s := startFrameLen + ind*ledRecordLen
	if len(val) == 4 {
		b, err := encodeBrightness(val[0])
		if err != nil {
			return err
		}
		d.buf[s] = b
	}
	// RGB in, BGR on the wire.
	rgb := val[len(val)-3:]
	d.buf[s+1] = byte(rgb[2])
	d.buf[s+2] = byte(rgb[1])
	d.buf[s+3] = byte(rgb[0])
	return nil
}

// Get returns the staged 4-value record [brightness, ch, ch, ch] for
// one LED, brightness decoded back to its 5-bit level. The channels
// come back in raw wire order (blue, green, red for an RGB write);
// Get deliberately does not undo the channel swap Set applies.
func (d *Dev) Get(ind int) ([]int, error) {
	if ind < 0 || ind >= d.nled {
		return nil, fmt.Errorf("%w: %d of %d", ErrLEDIndex, ind, d.nled)
	}
	s := startFrameLen + ind*ledRecordLen
	return []int{
		int(d.buf[s] & 0x1F),
		int(d.buf[s+1]),
		int(d.buf[s+2]),
		int(d.buf[s+3]),
	}, nil
}

// Range selects LED indices for SetRange, resolving like a slice
// expression over [0, Len()).
//
// A zero Step counts up by one. A zero Stop runs to the end of travel
// in the step's direction, so the zero value Range selects every LED
// and Range{Start: 4, Step: -2} selects 4, 2, 0. Stop is exclusive.
type Range struct {
	Start, Stop, Step int
}

// Span selects [start, stop) counting up by one.
func Span(start, stop int) Range {
	return Range{Start: start, Stop: stop, Step: 1}
}

func (r Range) resolve(n int) []int {
	step := r.Step
	if step == 0 {
		step = 1
	}
	start, stop := r.Start, r.Stop
	var out []int
	if step > 0 {
		if stop == 0 {
			stop = n
		}
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		if stop == 0 {
			stop = -1
		}
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out
}

// Assignment is the value side of SetRange: one record broadcast to
// every selected index, or one record per index.
type Assignment struct {
	broadcast []int
	perIndex  [][]int
}

// Broadcast applies a single record to every index in the range.
func Broadcast(rec []int) Assignment {
	return Assignment{broadcast: rec}
}

// PerIndex applies records pairwise; their count must equal the
// resolved range length.
func PerIndex(recs ...[]int) Assignment {
	return Assignment{perIndex: recs}
}

// SetRange stages records across a range of LEDs.
//
// Records are applied left to right in range order with the same
// validation as Set. A mid-sequence failure stops there and leaves the
// earlier indices written; nothing is rolled back. A PerIndex count
// mismatch is detected before any write.
func (d *Dev) SetRange(r Range, a Assignment) error {
	idx := r.resolve(d.nled)
	if a.broadcast != nil {
		for _, i := range idx {
			if err := d.Set(i, a.broadcast); err != nil {
				return err
			}
		}
		return nil
	}
	if len(a.perIndex) != len(idx) {
		return fmt.Errorf("%w: %d records for %d LEDs", ErrLengthMismatch, len(a.perIndex), len(idx))
	}
	for k, i := range idx {
		if err := d.Set(i, a.perIndex[k]); err != nil {
			return err
		}
	}
	return nil
}

// Commit transmits the full frame, start and end padding included.
// The write is synchronous; transport errors propagate as-is.
func (d *Dev) Commit() error {
	if d.closed {
		return ErrClosed
	}
	return d.c.Tx(d.buf, nil)
}

// Reset zero-fills the whole transmission buffer, padding included,
// and commits. The strip latches an all-dark, brightness-less frame.
func (d *Dev) Reset() error {
	if d.closed {
		return ErrClosed
	}
	for i := range d.buf {
		d.buf[i] = 0
	}
	return d.Commit()
}

// Off blacks out every LED at minimum brightness and commits. Unlike
// Reset the LED records keep their brightness marker, so a subsequent
// three-value Set lights up without an explicit brightness write.
func (d *Dev) Off() error {
	if d.closed {
		return ErrClosed
	}
	for i := 0; i < d.nled; i++ {
		if err := d.Set(i, []int{1, 0, 0, 0}); err != nil {
			return err
		}
	}
	return d.Commit()
}

// Brightness returns the mean of the raw wire brightness bytes over
// every LED, marker bits included: with all LEDs at level 10 it
// reports 234 (0xE0|10), not 10.
func (d *Dev) Brightness() float64 {
	var sum int
	for i := 0; i < d.nled; i++ {
		sum += int(d.buf[startFrameLen+i*ledRecordLen])
	}
	return float64(sum) / float64(d.nled)
}

// SetBrightness stages brightness v on every LED without touching the
// channel bytes and without committing.
func (d *Dev) SetBrightness(v int) error {
	b, err := encodeBrightness(v)
	if err != nil {
		return err
	}
	for i := 0; i < d.nled; i++ {
		d.buf[startFrameLen+i*ledRecordLen] = b
	}
	return nil
}

// Close releases the SPI port. The first call closes; later calls are
// no-ops returning nil. Commit, Reset and Off fail with ErrClosed
// afterwards.
func (d *Dev) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.p.Close()
}

func encodeBrightness(v int) (byte, error) {
	if v < MinBrightness || v > MaxBrightness {
		return 0, fmt.Errorf("%w, got %d", ErrBrightnessRange, v)
	}
	return brightnessMarker | byte(v), nil
}
