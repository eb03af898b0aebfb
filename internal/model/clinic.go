package model

import (
	"encoding/json"
	"fmt"
)

// UnknownSentinel is the wire representation the extraction service uses
// for a field it could not resolve.
const UnknownSentinel = "unknown"

// FieldValue is the result for a single extracted field: either a known
// string value or the unknown sentinel.
//
// Design decision: We model unknown as a tagged value rather than the
// literal string "unknown" so that the expansion trigger is a type-level
// check. String comparison against a sentinel word is fragile: a clinic
// could legitimately be located in Unknown, Arizona.
type FieldValue struct {
	value string
	known bool
}

// Known constructs a resolved field value.
func Known(value string) FieldValue {
	return FieldValue{value: value, known: true}
}

// Unknown constructs an unresolved field value.
func Unknown() FieldValue {
	return FieldValue{}
}

// IsKnown reports whether the field was resolved.
func (f FieldValue) IsKnown() bool { return f.known }

// Value returns the resolved value, or "" for unknown fields.
func (f FieldValue) Value() string {
	if !f.known {
		return ""
	}
	return f.value
}

// String renders the field for reports, using the sentinel for unknowns.
func (f FieldValue) String() string {
	if !f.known {
		return UnknownSentinel
	}
	return f.value
}

// MarshalJSON encodes known values as-is and unknowns as the sentinel,
// matching the extraction service's wire format.
func (f FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes the wire format: the sentinel string (any case)
// and the empty string both map to Unknown.
func (f *FieldValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = ParseFieldValue(s)
	return nil
}

// ParseFieldValue converts a wire string into a FieldValue.
func ParseFieldValue(s string) FieldValue {
	switch s {
	case "", UnknownSentinel, "Unknown", "UNKNOWN", "n/a", "not specified":
		return Unknown()
	default:
		return Known(s)
	}
}

// ClinicInfo holds the four fields the system exists to extract.
type ClinicInfo struct {
	Specialty  FieldValue `json:"specialty"`
	Modalities FieldValue `json:"modalities"`
	Location   FieldValue `json:"location"`
	ClinicSize FieldValue `json:"clinic_size"`
}

// UnknownFields returns the names of fields still unresolved, in a fixed
// order. An empty slice means extraction is complete.
func (c ClinicInfo) UnknownFields() []string {
	var unknown []string
	for _, f := range []struct {
		name  string
		value FieldValue
	}{
		{"specialty", c.Specialty},
		{"modalities", c.Modalities},
		{"location", c.Location},
		{"clinic_size", c.ClinicSize},
	} {
		if !f.value.IsKnown() {
			unknown = append(unknown, f.name)
		}
	}
	return unknown
}

// Resolved reports whether every field is known.
func (c ClinicInfo) Resolved() bool {
	return len(c.UnknownFields()) == 0
}

// SizeEstimate is a clinic-size determination. Exactly one of the two
// variants is set: an exact provider count, or a coarse bucket.
//
// When both an exact count and range text are derivable from a site, the
// exact count wins.
type SizeEstimate struct {
	// ExactCount is the number of providers when known precisely.
	// Zero means no exact count was found.
	ExactCount int

	// Bucket is a coarse size label used when no exact count exists.
	Bucket SizeBucket
}

// SizeBucket is a coarse practice-size category.
type SizeBucket int

// Size buckets ordered smallest to largest.
const (
	BucketUnknown SizeBucket = iota
	BucketSolo
	BucketSmallGroup
	BucketMediumGroup
	BucketLargeGroup
)

// String returns the report label for the bucket.
func (b SizeBucket) String() string {
	switch b {
	case BucketSolo:
		return "Solo Practice (1 provider)"
	case BucketSmallGroup:
		return "Small Group Practice (2-10 providers)"
	case BucketMediumGroup:
		return "Medium Group Practice (11-20 providers)"
	case BucketLargeGroup:
		return "Large Group Practice (21+ providers)"
	default:
		return UnknownSentinel
	}
}

// BucketForCount maps an exact provider count onto its bucket.
func BucketForCount(n int) SizeBucket {
	switch {
	case n <= 0:
		return BucketUnknown
	case n == 1:
		return BucketSolo
	case n <= 10:
		return BucketSmallGroup
	case n <= 20:
		return BucketMediumGroup
	default:
		return BucketLargeGroup
	}
}

// Field renders the estimate as an extraction field value.
func (s SizeEstimate) Field() FieldValue {
	if s.ExactCount == 1 {
		return Known("Solo Practice (1 provider)")
	}
	if s.ExactCount > 1 {
		label := "Large Group Practice"
		switch BucketForCount(s.ExactCount) {
		case BucketSmallGroup:
			label = "Small Group Practice"
		case BucketMediumGroup:
			label = "Medium Group Practice"
		}
		return Known(fmt.Sprintf("%s (%d providers)", label, s.ExactCount))
	}
	if s.Bucket != BucketUnknown {
		return Known(s.Bucket.String())
	}
	return Unknown()
}
