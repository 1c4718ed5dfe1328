package expense

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is a Wednesday afternoon; date-resolution tests anchor here.
var fixedNow = time.Date(2025, time.March, 12, 15, 4, 5, 0, time.UTC)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(DefaultTaxonomy(), WithClock(func() time.Time { return fixedNow }))
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestParser_ExtractAmount(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		input string
		want  string // empty means absent
	}{
		{"dollar prefix", "I spent $50 on groceries", "50"},
		{"dollar prefix with cents", "paid $50.25 for parking", "50.25"},
		{"dollars word", "50 dollars for dinner", "50"},
		{"dollar word singular", "1 dollar for candy", "1"},
		{"bucks word", "spent 50 bucks at the mall", "50"},
		{"buck word singular", "1 buck for gum", "1"},
		{"dollar suffix", "coffee 50$", "50"},
		{"prefix pattern beats dollars word", "20 dollars or $10", "10"},
		{"first match within pattern wins", "$5 then $9", "5"},
		{"zero amount is absent", "$0", ""},
		{"zero with cents is absent", "paid $0.00 somehow", ""},
		{"zero candidate does not block later patterns", "$0 or 5 dollars", "5"},
		{"no amount", "lunch with friends", ""},
		{"bare number without marker", "ate 12 tacos", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input).Amount
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParser_ExtractCategory(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		input string
		want  Category // empty means absent
	}{
		{"single keyword", "I spent $50 on groceries", CategoryFood},
		{"transportation keyword", "Gas for $60 yesterday", CategoryTransportation},
		{"travel keyword", "booked a flight for the trip", CategoryTravel},
		{"case insensitive", "LUNCH WITH THE TEAM", CategoryFood},
		{"highest cumulative count wins", "uber to the lunch dinner meal", CategoryFood},
		{"repeated keyword counts per occurrence", "coffee uber coffee", CategoryFood},
		{"keyword matches as substring", "carpool to work", CategoryTransportation},
		{"no keywords", "hello there", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input).Category
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

// Ties on the highest count must resolve by taxonomy declaration order, not
// map iteration order.
func TestParser_CategoryTieBreak(t *testing.T) {
	t.Run("default taxonomy", func(t *testing.T) {
		p := newTestParser(t)

		// "lunch" (food) and "uber" (transportation) each occur once; food is
		// declared first.
		got := p.Parse("lunch uber").Category
		require.NotNil(t, got)
		assert.Equal(t, CategoryFood, *got)

		// Same tie between transportation and entertainment.
		got = p.Parse("uber movie").Category
		require.NotNil(t, got)
		assert.Equal(t, CategoryTransportation, *got)
	})

	t.Run("declaration order is authoritative", func(t *testing.T) {
		taxonomy, err := NewTaxonomy([]CategoryInfo{
			{ID: "zeta", Name: "Zeta", Keywords: []string{"widget"}},
			{ID: "alpha", Name: "Alpha", Keywords: []string{"gadget"}},
		})
		require.NoError(t, err)

		p := NewParser(taxonomy, WithClock(func() time.Time { return fixedNow }))
		got := p.Parse("one widget one gadget").Category
		require.NotNil(t, got)
		assert.Equal(t, Category("zeta"), *got, "first-declared category wins the tie")
	})
}

func TestParser_ResolveDate(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"today", "bought lunch today", timePtr(day(2025, time.March, 12))},
		{"yesterday", "Gas for $60 yesterday", timePtr(day(2025, time.March, 11))},
		{"n days ago", "dentist 3 days ago", timePtr(day(2025, time.March, 9))},
		{"n day ago singular", "movie 1 day ago", timePtr(day(2025, time.March, 11))},
		{"last week", "rent last week", timePtr(day(2025, time.March, 5))},
		{"lastweek no space", "rent lastweek", timePtr(day(2025, time.March, 5))},
		{"monday resolves to this week", "train ticket monday", timePtr(day(2025, time.March, 10))},
		{"friday resolves to last week", "dinner friday", timePtr(day(2025, time.March, 7))},
		{"weekday equal to today goes a full week back", "groceries wednesday", timePtr(day(2025, time.March, 5))},
		{"sunday", "brunch on Sunday", timePtr(day(2025, time.March, 9))},
		{"unrecognized phrase", "$15 for coffee this morning", nil},
		{"no phrase", "random text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input).Date
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(*tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

// An explicit "N days ago" overrides any fixed phrase present in the same
// utterance, regardless of which pattern matched first.
func TestParser_DaysAgoOverridesFixedPhrases(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"dinner yesterday, well actually 3 days ago", day(2025, time.March, 9)},
		{"today... no, 5 days ago", day(2025, time.March, 7)},
		{"on monday 2 days ago", day(2025, time.March, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input).Date
			require.NotNil(t, got)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParser_BuildDescription(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"residual text kept", "I spent $50 on groceries", "I groceries"},
		{"pronouns survive stripping", "lunch cost me $25", "lunch me"},
		{"filler and amount stripped", "Gas for $60 yesterday", "Gas"},
		{"unrecognized date words stay", "$15 for coffee this morning", "coffee this morning"},
		{"short residual falls back to category name", "purchase $25", "Shopping"},
		{"empty residual without category is generic", "$25", "Expense"},
		{"short residual without category is generic", "me $25", "Expense"},
		{"whitespace collapsed", "paid   $10    for    parking   meter", "parking meter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input).Description
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

// Confidence must equal the weighted presence sum for every combination of
// extracted fields.
func TestScoreConfidence_AllCombinations(t *testing.T) {
	for i := 0; i < 16; i++ {
		hasAmount := i&1 != 0
		hasCategory := i&2 != 0
		hasDate := i&4 != 0
		hasDescription := i&8 != 0

		want := 0.0
		if hasAmount {
			want += 0.4
		}
		if hasCategory {
			want += 0.3
		}
		if hasDate {
			want += 0.2
		}
		if hasDescription {
			want += 0.1
		}

		name := fmt.Sprintf("amount=%v category=%v date=%v description=%v",
			hasAmount, hasCategory, hasDate, hasDescription)
		t.Run(name, func(t *testing.T) {
			got := scoreConfidence(hasAmount, hasCategory, hasDate, hasDescription)
			assert.InDelta(t, want, got, 1e-9)
		})
	}
}

func TestParser_Scenarios(t *testing.T) {
	p := newTestParser(t)

	t.Run("spent on groceries", func(t *testing.T) {
		parsed := p.Parse("I spent $50 on groceries")
		require.NotNil(t, parsed.Amount)
		assert.Equal(t, "50", parsed.Amount.String())
		require.NotNil(t, parsed.Category)
		assert.Equal(t, CategoryFood, *parsed.Category)
		assert.Nil(t, parsed.Date)
		assert.InDelta(t, 0.8, parsed.Confidence, 1e-9)
	})

	t.Run("gas yesterday has full confidence", func(t *testing.T) {
		parsed := p.Parse("Gas for $60 yesterday")
		require.NotNil(t, parsed.Amount)
		assert.Equal(t, "60", parsed.Amount.String())
		require.NotNil(t, parsed.Category)
		assert.Equal(t, CategoryTransportation, *parsed.Category)
		require.NotNil(t, parsed.Date)
		assert.True(t, parsed.Date.Equal(day(2025, time.March, 11)))
		assert.InDelta(t, 1.0, parsed.Confidence, 1e-9)
	})

	t.Run("lunch cost me", func(t *testing.T) {
		parsed := p.Parse("lunch cost me $25")
		require.NotNil(t, parsed.Amount)
		assert.Equal(t, "25", parsed.Amount.String())
		require.NotNil(t, parsed.Category)
		assert.Equal(t, CategoryFood, *parsed.Category)
		assert.InDelta(t, 0.8, parsed.Confidence, 1e-9)
	})

	t.Run("unparseable input degrades, never errors", func(t *testing.T) {
		parsed := p.Parse("hello there")
		assert.Nil(t, parsed.Amount)
		assert.Nil(t, parsed.Category)
		assert.Nil(t, parsed.Date)
		assert.Equal(t, "hello there", parsed.Description)
		assert.InDelta(t, 0.1, parsed.Confidence, 1e-9)
	})

	t.Run("unrecognized date phrase reports absent", func(t *testing.T) {
		parsed := p.Parse("$15 for coffee this morning")
		require.NotNil(t, parsed.Amount)
		assert.Equal(t, "15", parsed.Amount.String())
		require.NotNil(t, parsed.Category)
		assert.Equal(t, CategoryFood, *parsed.Category)
		assert.Nil(t, parsed.Date)
		assert.InDelta(t, 0.8, parsed.Confidence, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		parsed := p.Parse("")
		assert.Nil(t, parsed.Amount)
		assert.Nil(t, parsed.Category)
		assert.Nil(t, parsed.Date)
		assert.Equal(t, GenericDescription, parsed.Description)
		assert.InDelta(t, 0.1, parsed.Confidence, 1e-9)
	})
}

// Each parse reads the clock exactly once, so every offset within one call
// resolves against the same instant.
func TestParser_ClockReadOncePerParse(t *testing.T) {
	reads := 0
	p := NewParser(DefaultTaxonomy(), WithClock(func() time.Time {
		reads++
		return fixedNow
	}))

	p.Parse("coffee $4 yesterday")
	assert.Equal(t, 1, reads)

	p.Parse("lunch 3 days ago")
	assert.Equal(t, 2, reads)
}

func TestParser_ConcurrentUse(t *testing.T) {
	p := newTestParser(t)

	done := make(chan ParsedExpense, 32)
	for i := 0; i < 32; i++ {
		go func() {
			done <- p.Parse("Gas for $60 yesterday")
		}()
	}

	for i := 0; i < 32; i++ {
		parsed := <-done
		assert.InDelta(t, 1.0, parsed.Confidence, 1e-9)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
