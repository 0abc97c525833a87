package output

import (
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/law-makers/funnel/pkg/models"
)

// csvHeader is the master-list column order. Stable so runs can be diffed.
var csvHeader = []string{
	"provider", "key_id", "title", "company", "location",
	"post_date", "url", "tags", "wage", "scraped_at", "description",
}

// SaveCSV writes the scraped records to a CSV master list.
func SaveCSV(records []*models.JobRecord, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.Provider,
			rec.KeyID,
			rec.Title,
			rec.Company,
			rec.Location,
			formatDate(rec.PostDate),
			rec.URL,
			strings.Join(rec.Tags, ";"),
			rec.Wage,
			rec.ScrapedAt.Format(time.RFC3339),
			rec.Description,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
