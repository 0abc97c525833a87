package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/funnel/internal/utils/url"
	"github.com/law-makers/funnel/pkg/models"
)

// SaveMarkdown writes a human-readable report of the records: one section per
// job, descriptions converted from sanitized HTML to Markdown.
func SaveMarkdown(records []*models.JobRecord, filepath string) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Job Report (%d listings)\n\n", len(records)))

	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("## %s — %s\n\n", rec.Title, rec.Company))
		sb.WriteString(fmt.Sprintf("- Provider: %s\n", rec.Provider))
		sb.WriteString(fmt.Sprintf("- Location: %s\n", rec.Location))
		if !rec.PostDate.IsZero() {
			sb.WriteString(fmt.Sprintf("- Posted: %s\n", rec.PostDate.Format("2006-01-02")))
		}
		if rec.Wage != "" {
			sb.WriteString(fmt.Sprintf("- Wage: %s\n", rec.Wage))
		}
		if len(rec.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("- Tags: %s\n", strings.Join(rec.Tags, ", ")))
		}
		sb.WriteString(fmt.Sprintf("- Link: <%s>\n\n", rec.URL))

		body, err := descriptionMarkdown(rec)
		if err != nil {
			return fmt.Errorf("convert description for %s: %w", rec.UniqueKey(), err)
		}
		if body != "" {
			sb.WriteString(body)
			sb.WriteString("\n\n")
		}
	}

	return os.WriteFile(filepath, []byte(sb.String()), 0644)
}

// descriptionMarkdown converts one record's description to Markdown,
// preferring the raw HTML when the extractor captured it.
func descriptionMarkdown(rec *models.JobRecord) (string, error) {
	if rec.DescriptionHTML == "" {
		return strings.TrimSpace(rec.Description), nil
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Resolve relative links against the job's own page.
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(rec.URL, href)
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", selec.Text(), resolved, titlePart)
			return &str
		},
	})

	cleaned, err := CleanHTML(rec.DescriptionHTML)
	if err != nil {
		return "", err
	}

	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(mdStr), nil
}
