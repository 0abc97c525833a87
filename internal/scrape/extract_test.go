package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/law-makers/funnel/pkg/models"
)

func TestExtractorTable_UnknownFieldFails(t *testing.T) {
	table := ExtractorTable{}

	_, err := table.ExtractListing(FieldTitle, Fragment{})
	var unsupported *UnsupportedFieldError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFieldError, got %v", err)
	}
	if unsupported.Field != FieldTitle {
		t.Errorf("error field = %s, want title", unsupported.Field)
	}

	_, err = table.ExtractDetail(context.Background(), FieldWage, &models.JobRecord{}, nil)
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFieldError for detail, got %v", err)
	}
}

func TestExtractorTable_WrapsExtractorErrors(t *testing.T) {
	sentinel := fmt.Errorf("markup changed")
	table := ExtractorTable{
		Listing: map[FieldID]ListingFunc{
			FieldTitle: func(Fragment) (any, error) { return nil, sentinel },
		},
	}

	_, err := table.ExtractListing(FieldTitle, Fragment{})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractErr.Field != FieldTitle {
		t.Errorf("error field = %s, want title", extractErr.Field)
	}
	if !errors.Is(err, sentinel) {
		t.Error("ExtractionError should unwrap to the extractor's error")
	}
}

func TestExtractorTable_PassesValuesThrough(t *testing.T) {
	table := ExtractorTable{
		Listing: map[FieldID]ListingFunc{
			FieldTitle: func(Fragment) (any, error) { return "Go Developer", nil },
		},
	}

	v, err := table.ExtractListing(FieldTitle, Fragment{})
	if err != nil {
		t.Fatalf("ExtractListing failed: %v", err)
	}
	if v != "Go Developer" {
		t.Errorf("value = %v, want Go Developer", v)
	}
}
