package expense

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// categoryDocument is the indexed representation of one taxonomy entry.
type categoryDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Keywords string `json:"keywords"`
}

// CategoryMatch is one full-text search hit with its relevance score.
type CategoryMatch struct {
	Category CategoryInfo `json:"category"`
	Score    float64      `json:"score"`
}

// SearchIndex provides full-text search over the taxonomy using an in-memory
// Bleve index. It is built once from a taxonomy and is read-only afterwards,
// so extending the taxonomy means building a new index — which keeps the
// "taxonomy as immutable configuration" contract intact.
type SearchIndex struct {
	taxonomy *Taxonomy
	index    bleve.Index
}

// NewSearchIndex builds an in-memory search index over the taxonomy's display
// names and keyword lists.
func NewSearchIndex(taxonomy *Taxonomy) (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildCategoryIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create category index: %w", err)
	}

	batch := index.NewBatch()
	for _, entry := range taxonomy.entries {
		doc := categoryDocument{
			ID:       string(entry.ID),
			Name:     entry.Name,
			Keywords: strings.Join(entry.Keywords, " "),
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return nil, fmt.Errorf("failed to index category %s: %w", entry.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to execute batch index: %w", err)
	}

	return &SearchIndex{taxonomy: taxonomy, index: index}, nil
}

func buildCategoryIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("keywords", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Search returns the categories matching the query, best first. The match
// query tolerates one edit of typo distance.
func (si *SearchIndex) Search(query string, limit int) ([]CategoryMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	request := bleve.NewSearchRequest(matchQuery)
	request.Size = limit

	results, err := si.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("category search failed: %w", err)
	}

	matches := make([]CategoryMatch, 0, len(results.Hits))
	for _, hit := range results.Hits {
		info, ok := si.taxonomy.Lookup(Category(hit.ID))
		if !ok {
			continue
		}
		matches = append(matches, CategoryMatch{Category: info, Score: hit.Score})
	}
	return matches, nil
}

// Close releases the index resources.
func (si *SearchIndex) Close() error {
	return si.index.Close()
}
