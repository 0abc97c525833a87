package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/funnel/pkg/models"
)

// SaveJSON writes an indented JSON export of the records to filepath.
// Raw description HTML is excluded by the record's marshalling tags.
func SaveJSON(records []*models.JobRecord, filepath string) error {
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
