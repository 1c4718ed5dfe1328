// Package expense implements the conversational expense parser: it turns a
// free-form utterance like "lunch cost me $25 yesterday" into a structured
// record with an amount, category, date, description and confidence score.
package expense

import (
	"fmt"
	"strings"
)

// Category identifies one entry of the expense taxonomy.
type Category string

// Built-in category identifiers, in taxonomy declaration order.
const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryBills          Category = "bills"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategoryOther          Category = "other"
)

// CategoryInfo carries the display metadata and keyword triggers for one category.
type CategoryInfo struct {
	ID       Category `json:"id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Keywords []string `json:"keywords"`
}

// Taxonomy is the ordered, read-only set of expense categories. Declaration
// order is significant: the classifier breaks score ties in favor of the
// earliest-declared category. A Taxonomy is immutable after construction and
// safe for concurrent use.
type Taxonomy struct {
	entries []CategoryInfo
	index   map[Category]int
}

// NewTaxonomy builds a taxonomy from the given entries. Keywords are
// normalized to lowercase. Duplicate or empty identifiers are rejected.
func NewTaxonomy(entries []CategoryInfo) (*Taxonomy, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("taxonomy requires at least one category")
	}

	t := &Taxonomy{
		entries: make([]CategoryInfo, 0, len(entries)),
		index:   make(map[Category]int, len(entries)),
	}

	for _, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("category with display name %q has an empty identifier", entry.Name)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("category %q has an empty display name", entry.ID)
		}
		if _, exists := t.index[entry.ID]; exists {
			return nil, fmt.Errorf("duplicate category identifier %q", entry.ID)
		}

		keywords := make([]string, 0, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			keywords = append(keywords, kw)
		}
		entry.Keywords = keywords

		t.index[entry.ID] = len(t.entries)
		t.entries = append(t.entries, entry)
	}

	return t, nil
}

// DefaultTaxonomy returns the built-in expense taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(defaultCategories())
	if err != nil {
		// The built-in table is static; a construction failure is a programming error.
		panic(fmt.Sprintf("expense: invalid built-in taxonomy: %v", err))
	}
	return t
}

// Extend returns a new taxonomy with the given categories appended after the
// existing ones. The receiver is left untouched.
func (t *Taxonomy) Extend(entries []CategoryInfo) (*Taxonomy, error) {
	combined := make([]CategoryInfo, 0, len(t.entries)+len(entries))
	combined = append(combined, t.entries...)
	combined = append(combined, entries...)
	return NewTaxonomy(combined)
}

// Entries returns the categories in declaration order.
func (t *Taxonomy) Entries() []CategoryInfo {
	out := make([]CategoryInfo, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup returns the metadata for the given category identifier.
func (t *Taxonomy) Lookup(id Category) (CategoryInfo, bool) {
	idx, ok := t.index[id]
	if !ok {
		return CategoryInfo{}, false
	}
	return t.entries[idx], true
}

// DisplayName returns the human-readable name for the given category, or the
// raw identifier when the category is unknown.
func (t *Taxonomy) DisplayName(id Category) string {
	if info, ok := t.Lookup(id); ok {
		return info.Name
	}
	return string(id)
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

func defaultCategories() []CategoryInfo {
	return []CategoryInfo{
		{
			ID:       CategoryFood,
			Name:     "Food & Dining",
			Icon:     "🍔",
			Color:    "warning",
			Keywords: []string{"lunch", "dinner", "breakfast", "restaurant", "groceries", "coffee", "pizza", "food", "meal", "eat", "drink"},
		},
		{
			ID:       CategoryTransportation,
			Name:     "Transportation",
			Icon:     "🚗",
			Color:    "primary",
			Keywords: []string{"gas", "fuel", "uber", "taxi", "bus", "train", "parking", "metro", "transport", "car", "bike"},
		},
		{
			ID:       CategoryEntertainment,
			Name:     "Entertainment",
			Icon:     "🎬",
			Color:    "success",
			Keywords: []string{"movie", "cinema", "game", "concert", "show", "streaming", "netflix", "entertainment", "fun", "music"},
		},
		{
			ID:       CategoryShopping,
			Name:     "Shopping",
			Icon:     "🛍️",
			Color:    "expense",
			Keywords: []string{"clothes", "amazon", "store", "shopping", "buy", "purchase", "mall", "online", "shop"},
		},
		{
			ID:       CategoryBills,
			Name:     "Bills & Utilities",
			Icon:     "💡",
			Color:    "blue",
			Keywords: []string{"electricity", "water", "rent", "phone", "internet", "cable", "bill", "utility", "subscription"},
		},
		{
			ID:       CategoryHealthcare,
			Name:     "Healthcare",
			Icon:     "🏥",
			Color:    "red",
			Keywords: []string{"doctor", "medicine", "pharmacy", "hospital", "dentist", "health", "medical", "prescription"},
		},
		{
			ID:       CategoryEducation,
			Name:     "Education",
			Icon:     "📚",
			Color:    "green",
			Keywords: []string{"books", "course", "tuition", "school", "education", "learning", "class", "study"},
		},
		{
			ID:       CategoryTravel,
			Name:     "Travel",
			Icon:     "✈️",
			Color:    "amber",
			Keywords: []string{"hotel", "flight", "vacation", "trip", "travel", "booking", "holiday", "airbnb"},
		},
		{
			ID:       CategoryOther,
			Name:     "Other",
			Icon:     "📦",
			Color:    "muted",
			Keywords: []string{"other", "miscellaneous", "random", "misc"},
		},
	}
}
