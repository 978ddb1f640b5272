package symbols

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	MIN_EXTENT = 1
	MAX_EXTENT = 32767

	// stored in place of an out-of-range extent.
	FALLBACK_EXTENT = 1
)

// ArrayDescriptor is the dope vector of an array-typed symbol: the extent of each dimension, outermost first.
// The rank is always len(extents).
type ArrayDescriptor struct {
	extents []int
	frozen  bool
	logger  zerolog.Logger
}

func NewArrayDescriptor(logger zerolog.Logger) *ArrayDescriptor {
	return &ArrayDescriptor{logger: logger}
}

// AddDimension appends a dimension. An extent outside [MIN_EXTENT, MAX_EXTENT] is not rejected:
// FALLBACK_EXTENT is stored instead and a diagnostic is logged. The stored extent is returned.
func (d *ArrayDescriptor) AddDimension(extent int) (int, error) {
	if d.frozen {
		return 0, ErrDescriptorFrozen
	}

	stored := extent
	if extent < MIN_EXTENT || extent > MAX_EXTENT {
		stored = FALLBACK_EXTENT
		d.logger.Warn().
			Int("extent", extent).
			Int("dimension", len(d.extents)).
			Int("stored", stored).
			Msg("invalid array dimension size")
	}

	d.extents = append(d.extents, stored)
	return stored, nil
}

// Freeze prevents further dimensions from being added, it is called when the declaration statement ends.
func (d *ArrayDescriptor) Freeze() {
	d.frozen = true
}

func (d *ArrayDescriptor) IsFrozen() bool {
	return d.frozen
}

func (d *ArrayDescriptor) Rank() int {
	return len(d.extents)
}

func (d *ArrayDescriptor) Extents() []int {
	return slices.Clone(d.extents)
}

// Count returns the total number of elements, 0 if the descriptor has no dimensions. The result saturates
// at math.MaxInt.
func (d *ArrayDescriptor) Count() int {
	if len(d.extents) == 0 {
		return 0
	}
	count := 1
	for _, e := range d.extents {
		if count > math.MaxInt/e {
			return math.MaxInt
		}
		count *= e
	}
	return count
}

// Describe returns the type suffix of the array: one "[]" per dimension, without extents.
func (d *ArrayDescriptor) Describe() string {
	return strings.Repeat("[]", len(d.extents))
}

// String returns the extents in the form [e1,e2,...,en].
func (d *ArrayDescriptor) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range d.extents {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(e))
	}
	b.WriteByte(']')
	return b.String()
}

// ValidateIndices returns true if there is exactly one index per dimension and each index i satisfies
// 0 <= indices[i] < extents[i].
func (d *ArrayDescriptor) ValidateIndices(indices []int) bool {
	_, ok := d.firstInvalidIndex(indices)
	return ok
}

// firstInvalidIndex returns (-1, false) on an arity mismatch and (dim, false) when the index of dimension dim
// is out of range.
func (d *ArrayDescriptor) firstInvalidIndex(indices []int) (int, bool) {
	if indices == nil || len(indices) != len(d.extents) {
		return -1, false
	}
	for i, index := range indices {
		if index < 0 || index >= d.extents[i] {
			return i, false
		}
	}
	return 0, true
}

// Offset returns the row-major offset (in elements) of the element designated by indices.
func (d *ArrayDescriptor) Offset(indices []int) (int, error) {
	if !d.ValidateIndices(indices) {
		return 0, ErrInvalidIndices
	}

	offset := 0
	for i, index := range indices {
		extent := d.extents[i]
		if offset > (math.MaxInt-index)/extent {
			return 0, ErrOffsetOverflow
		}
		offset = offset*extent + index
	}
	return offset, nil
}
