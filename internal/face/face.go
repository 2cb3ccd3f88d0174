// Package face defines the six die-face identities and the intensity
// classifier that maps an averaged brightness byte onto one of them.
package face

import (
	"errors"
	"fmt"
)

// Identity is a die face number in 1..6. Faces are ordered by pip count,
// which is also the brightness order of the classifier buckets.
type Identity uint8

const (
	One Identity = iota + 1
	Two
	Three
	Four
	Five
	Six
)

// Count is the number of faces in a set.
const Count = 6

// All lists every face in ascending order.
var All = [Count]Identity{One, Two, Three, Four, Five, Six}

// Valid reports whether id is one of the six faces.
func (id Identity) Valid() bool { return id >= One && id <= Six }

// Index returns the 0-based slot of the face.
func (id Identity) Index() int { return int(id) - 1 }

func (id Identity) String() string {
	if !id.Valid() {
		return fmt.Sprintf("face(%d)", uint8(id))
	}
	return fmt.Sprintf("face %d", uint8(id))
}

// Thresholds holds the inclusive upper bound of faces 1..5. Face 6 takes
// everything above the last bound, so any strictly increasing table is a
// total partition of [0,255].
type Thresholds [Count - 1]uint8

// DefaultThresholds splits the byte range into six near-equal buckets:
//
//	[0,42] 1  [43,85] 2  [86,128] 3  [129,171] 4  [172,214] 5  [215,255] 6
var DefaultThresholds = Thresholds{42, 85, 128, 171, 214}

// ErrThresholds is returned for tables that are not strictly increasing.
var ErrThresholds = errors.New("invalid face thresholds")

// ParseThresholds builds a table from configuration values.
func ParseThresholds(bounds []int) (Thresholds, error) {
	var t Thresholds
	if len(bounds) != len(t) {
		return t, fmt.Errorf("%w: want %d bounds, got %d", ErrThresholds, len(t), len(bounds))
	}
	for i, b := range bounds {
		if b < 0 || b > 254 {
			return t, fmt.Errorf("%w: bound %d out of range 0..254", ErrThresholds, b)
		}
		t[i] = uint8(b)
	}
	return t, t.Validate()
}

// Validate checks that the bounds strictly increase.
func (t Thresholds) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return fmt.Errorf("%w: bound %d (%d) not above bound %d (%d)",
				ErrThresholds, i+1, t[i], i, t[i-1])
		}
	}
	return nil
}

// Classify maps an average brightness to a face. Values on a bound belong
// to the lower face.
func (t Thresholds) Classify(avg uint8) Identity {
	for i, upper := range t {
		if avg <= upper {
			return Identity(i + 1)
		}
	}
	return Six
}

// Range returns the closed brightness interval covered by id.
func (t Thresholds) Range(id Identity) (lo, hi uint8) {
	switch {
	case !id.Valid():
		return 0, 0
	case id == One:
		return 0, t[0]
	case id == Six:
		return t[len(t)-1] + 1, 255
	}
	i := id.Index()
	return t[i-1] + 1, t[i]
}

// Ints returns the bounds as plain ints, the form used in config files.
func (t Thresholds) Ints() []int {
	out := make([]int, len(t))
	for i, v := range t {
		out[i] = int(v)
	}
	return out
}

// Classify maps avg using DefaultThresholds.
func Classify(avg uint8) Identity {
	return DefaultThresholds.Classify(avg)
}

// Histogram counts cells per face.
type Histogram [Count]int

// Add records one cell of face id. Invalid ids are ignored.
func (h *Histogram) Add(id Identity) {
	if id.Valid() {
		h[id.Index()]++
	}
}

// Count returns the number of cells recorded for id.
func (h Histogram) Count(id Identity) int {
	if !id.Valid() {
		return 0
	}
	return h[id.Index()]
}

// Total returns the number of recorded cells.
func (h Histogram) Total() int {
	n := 0
	for _, v := range h {
		n += v
	}
	return n
}

// Merge adds the counts of o into h.
func (h *Histogram) Merge(o Histogram) {
	for i, v := range o {
		h[i] += v
	}
}
