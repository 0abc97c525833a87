package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/funnel/pkg/models"
)

func sampleRecords() []*models.JobRecord {
	return []*models.JobRecord{
		{
			Provider:  "monster",
			KeyID:     "218052",
			Title:     "Backend Developer",
			Company:   "Initech",
			Location:  "Toronto, ON",
			PostDate:  time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC),
			URL:       "https://www.monster.ca/jobs/view/218052",
			Tags:      []string{"remote", "full-time"},
			ScrapedAt: time.Date(2021, 3, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			Provider:        "glassdoor",
			KeyID:           "3946382607",
			Title:           "Software Engineer",
			Company:         "Hooli",
			Location:        "Austin, TX",
			URL:             "https://www.glassdoor.com/partner/jobListing.htm?id=3946382607",
			Description:     "Build things",
			DescriptionHTML: `<p>Build <b>things</b> <a href="/teams">with us</a></p><script>evil()</script>`,
			ScrapedAt:       time.Date(2021, 3, 15, 14, 0, 0, 0, time.UTC),
		},
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := SaveCSV(sampleRecords(), path); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "provider" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "Backend Developer" {
		t.Errorf("title cell = %q", rows[1][2])
	}
	if rows[1][5] != "2021-03-12" {
		t.Errorf("post date cell = %q", rows[1][5])
	}
	if rows[1][7] != "remote;full-time" {
		t.Errorf("tags cell = %q", rows[1][7])
	}
	if rows[2][5] != "" {
		t.Errorf("zero post date should be empty, got %q", rows[2][5])
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := SaveJSON(sampleRecords(), path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded []models.JobRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("records = %d", len(decoded))
	}
	if decoded[1].DescriptionHTML != "" {
		t.Error("raw description HTML should not appear in the JSON export")
	}
}

func TestCleanHTML(t *testing.T) {
	dirty := `<div onclick="x()"><script>evil()</script><p class="fancy">Hello <a href="/a" title="t" onclick="y()">link</a></p></div>`
	cleaned, err := CleanHTML(dirty)
	if err != nil {
		t.Fatalf("CleanHTML failed: %v", err)
	}
	if strings.Contains(cleaned, "script") || strings.Contains(cleaned, "onclick") {
		t.Errorf("unsafe markup survived: %q", cleaned)
	}
	if !strings.Contains(cleaned, `href="/a"`) || !strings.Contains(cleaned, `title="t"`) {
		t.Errorf("anchor attributes lost: %q", cleaned)
	}
	if strings.Contains(cleaned, "class=") {
		t.Errorf("non-anchor attributes should be stripped: %q", cleaned)
	}
}

func TestSaveMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.md")
	if err := SaveMarkdown(sampleRecords(), path); err != nil {
		t.Fatalf("SaveMarkdown failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	report := string(raw)

	if !strings.Contains(report, "## Backend Developer — Initech") {
		t.Errorf("missing job heading:\n%s", report)
	}
	if !strings.Contains(report, "**things**") {
		t.Errorf("description HTML not converted to markdown:\n%s", report)
	}
	// Relative link in the description resolved against the job URL.
	if !strings.Contains(report, "https://www.glassdoor.com/teams") {
		t.Errorf("relative description link not resolved:\n%s", report)
	}
	if strings.Contains(report, "evil()") {
		t.Error("script content leaked into the report")
	}
}
