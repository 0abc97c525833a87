package scrape

import (
	"errors"
	"testing"
	"time"

	"github.com/law-makers/funnel/pkg/models"
)

func TestAssignAndHas(t *testing.T) {
	rec := &models.JobRecord{}

	if Has(rec, FieldTitle) {
		t.Error("empty record should not have title")
	}
	if err := Assign(rec, FieldTitle, "Go Developer"); err != nil {
		t.Fatalf("Assign title: %v", err)
	}
	if rec.Title != "Go Developer" || !Has(rec, FieldTitle) {
		t.Errorf("title not assigned: %q", rec.Title)
	}

	posted := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	if err := Assign(rec, FieldPostDate, posted); err != nil {
		t.Fatalf("Assign post date: %v", err)
	}
	if !rec.PostDate.Equal(posted) || !Has(rec, FieldPostDate) {
		t.Error("post date not assigned")
	}

	if err := Assign(rec, FieldTags, []string{"remote", "full-time"}); err != nil {
		t.Fatalf("Assign tags: %v", err)
	}
	if len(rec.Tags) != 2 {
		t.Errorf("tags = %v", rec.Tags)
	}
}

func TestAssign_Description(t *testing.T) {
	rec := &models.JobRecord{}
	if err := Assign(rec, FieldDescription, "plain text"); err != nil {
		t.Fatalf("Assign string description: %v", err)
	}
	if rec.Description != "plain text" {
		t.Errorf("description = %q", rec.Description)
	}

	rec = &models.JobRecord{}
	err := Assign(rec, FieldDescription, DescriptionValue{Text: "text", HTML: "<p>text</p>"})
	if err != nil {
		t.Fatalf("Assign description value: %v", err)
	}
	if rec.Description != "text" || rec.DescriptionHTML != "<p>text</p>" {
		t.Errorf("description = %q, html = %q", rec.Description, rec.DescriptionHTML)
	}
}

func TestAssign_TypeMismatch(t *testing.T) {
	rec := &models.JobRecord{}
	if err := Assign(rec, FieldTitle, 42); err == nil {
		t.Error("expected error assigning int to title")
	}
	if err := Assign(rec, FieldPostDate, "yesterday"); err == nil {
		t.Error("expected error assigning string to post date")
	}
}

func TestAssign_UnknownField(t *testing.T) {
	rec := &models.JobRecord{}
	err := Assign(rec, FieldID(99), "x")
	var unsupported *UnsupportedFieldError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFieldError, got %v", err)
	}
}

func TestSpecValidate(t *testing.T) {
	valid := ExtractionSpec{
		Required:    []FieldID{FieldTitle, FieldKeyID},
		FromListing: []FieldID{FieldTitle, FieldURL},
		FromDetail:  []FieldID{FieldKeyID},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}

	orphanRequired := ExtractionSpec{
		Required:    []FieldID{FieldWage},
		FromListing: []FieldID{FieldTitle},
	}
	if err := orphanRequired.Validate(); err == nil {
		t.Error("required field outside both phases should be rejected")
	}

	overlapping := ExtractionSpec{
		FromListing: []FieldID{FieldTitle},
		FromDetail:  []FieldID{FieldTitle},
	}
	if err := overlapping.Validate(); err == nil {
		t.Error("field in both phases should be rejected")
	}
}

func TestFieldNames(t *testing.T) {
	if FieldPostDate.String() != "post_date" {
		t.Errorf("FieldPostDate = %q", FieldPostDate.String())
	}
	if got := FieldID(99).String(); got != "field(99)" {
		t.Errorf("unknown field name = %q", got)
	}
}
