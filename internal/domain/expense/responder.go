package expense

import (
	"fmt"
)

// ActionableConfidence is the contractual cutoff at which callers treat a
// parse as good enough to auto-record instead of asking the user for
// clarification. It is caller-side policy, not used by the scorer itself.
const ActionableConfidence = 0.3

// replyDateFormat mirrors a short en-US date line, e.g. "Sat Aug 29 2026".
const replyDateFormat = "Mon Jan 2 2006"

// Responder turns a parse result into the bot's natural-language reply. It is
// a pure function of its inputs; the taxonomy provides display names.
type Responder struct {
	taxonomy *Taxonomy
}

// NewResponder builds a responder over the given taxonomy.
func NewResponder(taxonomy *Taxonomy) *Responder {
	return &Responder{taxonomy: taxonomy}
}

// Generate produces the bot reply for a parse result. Exactly one branch
// fires, evaluated in fixed order: not understood, missing amount, missing
// category, confirmation.
func (r *Responder) Generate(parsed ParsedExpense, success bool) string {
	if !success || parsed.Confidence < ActionableConfidence {
		return "I couldn't understand that expense. Could you try again? " +
			"For example: 'I spent $50 on groceries' or 'lunch cost me $25'."
	}

	if parsed.Amount == nil {
		return "I see you mentioned an expense, but I couldn't find the amount. How much did you spend?"
	}

	if parsed.Category == nil {
		return fmt.Sprintf(
			"I found an expense of $%s, but what category was this for? (Food, Transportation, Entertainment, etc.)",
			parsed.Amount,
		)
	}

	displayName := r.taxonomy.DisplayName(*parsed.Category)

	// Display-only default: an absent date renders as "today" without
	// touching the record's date field.
	dateStr := "today"
	if parsed.Date != nil {
		dateStr = parsed.Date.Format(replyDateFormat)
	}

	reply := fmt.Sprintf("Perfect! I've added $%s for %s on %s.", parsed.Amount, displayName, dateStr)
	if r.isResidualDescription(parsed.Description, displayName) {
		reply += fmt.Sprintf(" (%s)", parsed.Description)
	}
	return reply + " Anything else you'd like to track?"
}

// isResidualDescription reports whether the description came from the
// utterance itself rather than a fallback label, and so is worth echoing.
func (r *Responder) isResidualDescription(description, displayName string) bool {
	return description != "" && description != GenericDescription && description != displayName
}
