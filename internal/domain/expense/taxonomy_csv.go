package expense

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// categoryRow is the CSV row shape for taxonomy extensions. Keywords are a
// pipe-separated list so the file stays a plain single-value-per-column CSV.
//
//	id,name,icon,color,keywords
//	pets,Pets,🐾,teal,vet|petco|dog food|litter
type categoryRow struct {
	ID       string `csv:"id"`
	Name     string `csv:"name"`
	Icon     string `csv:"icon"`
	Color    string `csv:"color"`
	Keywords string `csv:"keywords"`
}

// LoadTaxonomyCSV reads taxonomy extension categories from CSV. New
// categories are matched by the same classifier without code changes; they
// rank after the built-in ones for tie-breaking because Extend appends them.
func LoadTaxonomyCSV(r io.Reader) ([]CategoryInfo, error) {
	var rows []categoryRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy csv: %w", err)
	}

	entries := make([]CategoryInfo, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.ID) == "" {
			return nil, fmt.Errorf("taxonomy csv row %d: missing id", i+1)
		}
		if strings.TrimSpace(row.Name) == "" {
			return nil, fmt.Errorf("taxonomy csv row %d (%s): missing name", i+1, row.ID)
		}

		var keywords []string
		for _, kw := range strings.Split(row.Keywords, "|") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}

		entries = append(entries, CategoryInfo{
			ID:       Category(strings.TrimSpace(row.ID)),
			Name:     strings.TrimSpace(row.Name),
			Icon:     strings.TrimSpace(row.Icon),
			Color:    strings.TrimSpace(row.Color),
			Keywords: keywords,
		})
	}
	return entries, nil
}

// LoadTaxonomyCSVFile is LoadTaxonomyCSV over a file path.
func LoadTaxonomyCSVFile(path string) ([]CategoryInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy csv: %w", err)
	}
	defer f.Close()
	return LoadTaxonomyCSV(f)
}
