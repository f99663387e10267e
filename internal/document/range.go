package document

import "fmt"

// ByteOffset is a byte position in a document.
type ByteOffset int

// Range represents a byte range in the document.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// NewRange creates a new Range from start and end offsets.
func NewRange(start, end ByteOffset) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range in bytes.
func (r Range) Len() ByteOffset {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if Start <= End and Start is not negative.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.Start <= r.End
}
