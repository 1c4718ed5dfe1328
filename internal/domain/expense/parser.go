package expense

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

// GenericDescription is the placeholder label used when an utterance yields
// no usable residual text and no category to fall back on.
const GenericDescription = "Expense"

// Confidence weights. The score is fully determined by which fields were
// extracted; it is never set independently.
const (
	amountWeight      = 0.4
	categoryWeight    = 0.3
	dateWeight        = 0.2
	descriptionWeight = 0.1
)

// ParsedExpense is the structured result of parsing one utterance. Optional
// fields are nil when the corresponding extraction found nothing; a nil Date
// means the caller should default to today. The record is a fresh value on
// every parse and is never mutated afterwards.
type ParsedExpense struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Description string           `json:"description"`
	Date        *time.Time       `json:"date,omitempty"`
	Confidence  float64          `json:"confidence"`
}

// Amount surface forms, tried in priority order. The first pattern that
// matches wins, and only its first match is considered.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`),              // $50, $50.25
	regexp.MustCompile(`(?i)(\d+(?:\.\d{2})?)\s*dollars?`), // 50 dollars
	regexp.MustCompile(`(?i)(\d+(?:\.\d{2})?)\s*bucks?`),   // 50 bucks
	regexp.MustCompile(`(\d+(?:\.\d{2})?)\s*\$`),           // 50$
}

// daysAgoPattern is the numeric relative-date form. When it appears anywhere
// in the input it overrides whichever fixed phrase matched first.
var daysAgoPattern = regexp.MustCompile(`(?i)(\d+)\s*days?\s*ago`)

type datePattern struct {
	re     *regexp.Regexp
	offset func(now time.Time) int
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`(?i)today`), fixedOffset(0)},
	{regexp.MustCompile(`(?i)yesterday`), fixedOffset(-1)},
	{daysAgoPattern, fixedOffset(-1)},
	{regexp.MustCompile(`(?i)last\s*week`), fixedOffset(-7)},
	{regexp.MustCompile(`(?i)monday`), lastWeekday(time.Monday)},
	{regexp.MustCompile(`(?i)tuesday`), lastWeekday(time.Tuesday)},
	{regexp.MustCompile(`(?i)wednesday`), lastWeekday(time.Wednesday)},
	{regexp.MustCompile(`(?i)thursday`), lastWeekday(time.Thursday)},
	{regexp.MustCompile(`(?i)friday`), lastWeekday(time.Friday)},
	{regexp.MustCompile(`(?i)saturday`), lastWeekday(time.Saturday)},
	{regexp.MustCompile(`(?i)sunday`), lastWeekday(time.Sunday)},
}

var (
	// Matches every amount surface form for description stripping, including
	// bare numbers with an optional currency suffix.
	stripAmountPattern = regexp.MustCompile(`(?i)\$?\d+(?:\.\d{2})?(?:\s*dollars?|\s*bucks?|\$)?`)
	// Transaction filler words removed as whole words.
	stripFillerPattern = regexp.MustCompile(`(?i)\b(spent|paid|cost|for|on|bought|purchase|today|yesterday)\b`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Parser converts a single free-text utterance into a ParsedExpense. It holds
// only compiled patterns, the immutable taxonomy and a clock; it is stateless
// across calls and safe for concurrent use.
type Parser struct {
	taxonomy *Taxonomy

	// Aho-Corasick matcher over every taxonomy keyword, with the categories
	// owning each keyword kept in matcher pattern order.
	keywords      *ahocorasick.Matcher
	keywordValues []string
	keywordOwners [][]int

	now func() time.Time
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithClock overrides the wall-clock source used by the date resolver.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

// NewParser builds a parser over the given taxonomy.
func NewParser(taxonomy *Taxonomy, opts ...ParserOption) *Parser {
	p := &Parser{
		taxonomy: taxonomy,
		now:      time.Now,
	}
	p.buildKeywordMatcher()

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// buildKeywordMatcher compiles all taxonomy keywords into a single
// Aho-Corasick automaton so classification scans the input once regardless of
// how many categories the taxonomy carries. The same keyword may belong to
// several categories; owners are grouped per unique keyword.
func (p *Parser) buildKeywordMatcher() {
	seen := make(map[string]int)

	for catIdx, entry := range p.taxonomy.entries {
		for _, kw := range entry.Keywords {
			if idx, ok := seen[kw]; ok {
				p.keywordOwners[idx] = append(p.keywordOwners[idx], catIdx)
				continue
			}
			seen[kw] = len(p.keywordValues)
			p.keywordValues = append(p.keywordValues, kw)
			p.keywordOwners = append(p.keywordOwners, []int{catIdx})
		}
	}

	if len(p.keywordValues) > 0 {
		p.keywords = ahocorasick.NewStringMatcher(p.keywordValues)
	}
}

// Parse extracts the structured expense from one utterance. Every leaf
// extraction runs on the raw input independently; "not found" is reported as
// a nil field, never an error. The wall clock is read once so all relative
// offsets within the call resolve against the same instant.
func (p *Parser) Parse(input string) ParsedExpense {
	now := p.now()

	amount := p.extractAmount(input)
	category := p.extractCategory(input)
	date := p.resolveDate(input, now)
	description := p.buildDescription(input, category)

	return ParsedExpense{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		Confidence:  scoreConfidence(amount != nil, category != nil, date != nil, description != ""),
	}
}

// extractAmount returns the first monetary amount found, or nil. Patterns are
// tried in declaration order; a candidate that fails to parse to a positive
// number does not stop the scan of the remaining surface forms.
func (p *Parser) extractAmount(input string) *decimal.Decimal {
	for _, pattern := range amountPatterns {
		m := pattern.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		amount, err := decimal.NewFromString(m[1])
		if err != nil || !amount.IsPositive() {
			continue
		}
		return &amount
	}
	return nil
}

// extractCategory assigns at most one category by cumulative keyword
// occurrence count over the lowercased input. Ties on the highest nonzero
// count resolve to the first-declared category.
func (p *Parser) extractCategory(input string) *Category {
	if p.keywords == nil {
		return nil
	}

	lower := strings.ToLower(input)
	hits := p.keywords.Match([]byte(lower))
	if len(hits) == 0 {
		return nil
	}

	scores := make([]int, p.taxonomy.Len())
	for _, hit := range hits {
		count := strings.Count(lower, p.keywordValues[hit])
		for _, catIdx := range p.keywordOwners[hit] {
			scores[catIdx] += count
		}
	}

	best := -1
	bestScore := 0
	for i, score := range scores {
		// Strictly greater keeps the earliest-declared category on ties.
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return nil
	}

	id := p.taxonomy.entries[best].ID
	return &id
}

// resolveDate maps a relative date phrase to an absolute calendar date
// anchored to now, or nil when no phrase is recognized. The parser never
// substitutes "today" itself; that default belongs to the caller.
func (p *Parser) resolveDate(input string, now time.Time) *time.Time {
	for _, pattern := range datePatterns {
		if !pattern.re.MatchString(input) {
			continue
		}

		offset := pattern.offset(now)
		// An explicit "N days ago" anywhere in the input overrides the fixed
		// offset of whichever phrase matched first.
		if m := daysAgoPattern.FindStringSubmatch(input); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				offset = -n
			}
		}

		date := midnight(now.AddDate(0, 0, offset))
		return &date
	}
	return nil
}

// buildDescription strips amount tokens and transaction filler words from the
// utterance, keeping the residual text as the label. Residuals shorter than
// three characters fall back to the category display name, then to the
// generic placeholder.
func (p *Parser) buildDescription(input string, category *Category) string {
	desc := stripAmountPattern.ReplaceAllString(input, "")
	desc = stripFillerPattern.ReplaceAllString(desc, "")
	desc = strings.TrimSpace(whitespacePattern.ReplaceAllString(desc, " "))

	if len(desc) < 3 {
		if category != nil {
			if info, ok := p.taxonomy.Lookup(*category); ok {
				return info.Name
			}
		}
		return GenericDescription
	}
	return desc
}

// scoreConfidence is the deterministic weighted sum over field presence.
func scoreConfidence(hasAmount, hasCategory, hasDate, hasDescription bool) float64 {
	score := 0.0
	if hasAmount {
		score += amountWeight
	}
	if hasCategory {
		score += categoryWeight
	}
	if hasDate {
		score += dateWeight
	}
	if hasDescription {
		score += descriptionWeight
	}
	return score
}

func fixedOffset(days int) func(time.Time) int {
	return func(time.Time) int { return days }
}

// lastWeekday returns the offset to the most recent prior occurrence of the
// target weekday. The offset is always strictly negative: when today is the
// target weekday the phrase means a week ago, not today.
func lastWeekday(target time.Weekday) func(time.Time) int {
	return func(now time.Time) int {
		diff := int(now.Weekday()) - int(target)
		if diff <= 0 {
			diff += 7
		}
		return -diff
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
