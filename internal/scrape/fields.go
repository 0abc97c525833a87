// Package scrape implements the orchestration engine that turns a job search
// into a set of validated records: pagination planning, concurrent page
// fetching, and per-field extraction with a required-field policy.
package scrape

import (
	"fmt"
	"time"

	"github.com/law-makers/funnel/pkg/models"
)

// FieldID is one of the enumerated job attributes the engine extracts.
// The set is closed; unknown lookups fail with UnsupportedFieldError.
type FieldID int

const (
	FieldTitle FieldID = iota
	FieldCompany
	FieldLocation
	FieldPostDate
	FieldURL
	FieldKeyID
	FieldDescription
	FieldTags
	FieldWage
)

var fieldNames = map[FieldID]string{
	FieldTitle:       "title",
	FieldCompany:     "company",
	FieldLocation:    "location",
	FieldPostDate:    "post_date",
	FieldURL:         "url",
	FieldKeyID:       "key_id",
	FieldDescription: "description",
	FieldTags:        "tags",
	FieldWage:        "wage",
}

func (f FieldID) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// DescriptionValue lets a detail extractor hand back both the readable text
// and the raw markup of a job description in one value.
type DescriptionValue struct {
	Text string
	HTML string
}

// recordSetters maps each field to the function that writes an extracted
// value into a record. A dispatch table rather than a conditional chain, so
// adding a field is a table edit.
var recordSetters = map[FieldID]func(*models.JobRecord, any) error{
	FieldTitle:    func(r *models.JobRecord, v any) error { return setString(&r.Title, v) },
	FieldCompany:  func(r *models.JobRecord, v any) error { return setString(&r.Company, v) },
	FieldLocation: func(r *models.JobRecord, v any) error { return setString(&r.Location, v) },
	FieldURL:      func(r *models.JobRecord, v any) error { return setString(&r.URL, v) },
	FieldKeyID:    func(r *models.JobRecord, v any) error { return setString(&r.KeyID, v) },
	FieldWage:     func(r *models.JobRecord, v any) error { return setString(&r.Wage, v) },
	FieldPostDate: func(r *models.JobRecord, v any) error {
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		r.PostDate = t
		return nil
	},
	FieldTags: func(r *models.JobRecord, v any) error {
		tags, ok := v.([]string)
		if !ok {
			return fmt.Errorf("expected []string, got %T", v)
		}
		r.Tags = tags
		return nil
	},
	FieldDescription: func(r *models.JobRecord, v any) error {
		switch d := v.(type) {
		case string:
			r.Description = d
		case DescriptionValue:
			r.Description = d.Text
			r.DescriptionHTML = d.HTML
		default:
			return fmt.Errorf("expected string or description value, got %T", v)
		}
		return nil
	},
}

// recordHas reports whether a field has been populated on a record.
var recordHas = map[FieldID]func(*models.JobRecord) bool{
	FieldTitle:       func(r *models.JobRecord) bool { return r.Title != "" },
	FieldCompany:     func(r *models.JobRecord) bool { return r.Company != "" },
	FieldLocation:    func(r *models.JobRecord) bool { return r.Location != "" },
	FieldPostDate:    func(r *models.JobRecord) bool { return !r.PostDate.IsZero() },
	FieldURL:         func(r *models.JobRecord) bool { return r.URL != "" },
	FieldKeyID:       func(r *models.JobRecord) bool { return r.KeyID != "" },
	FieldDescription: func(r *models.JobRecord) bool { return r.Description != "" },
	FieldTags:        func(r *models.JobRecord) bool { return len(r.Tags) > 0 },
	FieldWage:        func(r *models.JobRecord) bool { return r.Wage != "" },
}

func setString(dst *string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	*dst = s
	return nil
}

// Assign writes an extracted value into the record's field.
func Assign(rec *models.JobRecord, field FieldID, value any) error {
	set, ok := recordSetters[field]
	if !ok {
		return &UnsupportedFieldError{Field: field}
	}
	if err := set(rec, value); err != nil {
		return fmt.Errorf("assign %s: %w", field, err)
	}
	return nil
}

// Has reports whether the record already carries a value for the field.
func Has(rec *models.JobRecord, field FieldID) bool {
	has, ok := recordHas[field]
	return ok && has(rec)
}
