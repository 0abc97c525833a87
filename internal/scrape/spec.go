package scrape

import "fmt"

// ExtractionSpec declares, for one source, which fields come from where and
// which ones a record cannot live without.
//
// Invariants, checked by Validate:
//   - every required field appears in FromListing or FromDetail
//   - no field appears in both FromListing and FromDetail
type ExtractionSpec struct {
	// Required fields whose absence drops the whole record.
	Required []FieldID
	// FromListing fields extracted directly from the results-page fragment.
	FromListing []FieldID
	// FromDetail fields that need the listing's own detail page.
	FromDetail []FieldID
}

// Validate checks the spec's internal consistency.
func (s ExtractionSpec) Validate() error {
	listing := make(map[FieldID]bool, len(s.FromListing))
	for _, f := range s.FromListing {
		listing[f] = true
	}
	for _, f := range s.FromDetail {
		if listing[f] {
			return fmt.Errorf("field %s declared in both listing and detail sets", f)
		}
	}
	detail := make(map[FieldID]bool, len(s.FromDetail))
	for _, f := range s.FromDetail {
		detail[f] = true
	}
	for _, f := range s.Required {
		if !listing[f] && !detail[f] {
			return fmt.Errorf("required field %s is not extracted by any phase", f)
		}
	}
	return nil
}

// IsRequired reports whether the field is in the required set.
func (s ExtractionSpec) IsRequired(field FieldID) bool {
	for _, f := range s.Required {
		if f == field {
			return true
		}
	}
	return false
}
