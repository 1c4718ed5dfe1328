package expense

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartspend/backend/pkg/money"
)

// AddedVia marks how an expense entered the system.
type AddedVia string

const (
	AddedViaManual  AddedVia = "manual"
	AddedViaChatbot AddedVia = "chatbot"
)

var (
	ErrNonPositiveAmount = errors.New("expense amount must be positive")
	ErrUnknownCategory   = errors.New("unknown expense category")
)

// CreateExpenseParams is the creation payload a caller derives from an
// actionable parse: the parsed amount and category, the residual description,
// and the resolved date — or today, defaulted by the caller, never by the
// parser.
type CreateExpenseParams struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Category    Category
	Description string
	Date        time.Time
	AddedVia    AddedVia
}

// Expense is a recorded expense.
type Expense struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Amount      *money.Money `json:"amount"`
	Category    Category     `json:"category"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	AddedVia    AddedVia     `json:"added_via"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Recorder records expenses derived from actionable parses.
type Recorder interface {
	Record(ctx context.Context, params CreateExpenseParams) (*Expense, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Expense, error)
}

// MemoryRecorder is an in-memory Recorder. It validates payloads against the
// taxonomy and keeps expenses per user in insertion order.
type MemoryRecorder struct {
	taxonomy *Taxonomy
	now      func() time.Time

	mu     sync.RWMutex
	byUser map[uuid.UUID][]*Expense
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder(taxonomy *Taxonomy) *MemoryRecorder {
	return &MemoryRecorder{
		taxonomy: taxonomy,
		now:      time.Now,
		byUser:   make(map[uuid.UUID][]*Expense),
	}
}

// Record validates and stores a new expense.
func (r *MemoryRecorder) Record(_ context.Context, params CreateExpenseParams) (*Expense, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, params.Amount)
	}
	if _, ok := r.taxonomy.Lookup(params.Category); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, params.Category)
	}
	if params.UserID == uuid.Nil {
		return nil, errors.New("expense requires a user id")
	}

	description := params.Description
	if description == "" {
		description = GenericDescription
	}

	addedVia := params.AddedVia
	if addedVia == "" {
		addedVia = AddedViaManual
	}

	exp := &Expense{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Amount:      money.NewFromDecimal(params.Amount, money.USD),
		Category:    params.Category,
		Description: description,
		Date:        params.Date,
		AddedVia:    addedVia,
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[params.UserID] = append(r.byUser[params.UserID], exp)

	return exp, nil
}

// ListByUser returns the user's expenses in insertion order.
func (r *MemoryRecorder) ListByUser(_ context.Context, userID uuid.UUID) ([]*Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expenses := r.byUser[userID]
	out := make([]*Expense, len(expenses))
	copy(out, expenses)
	return out, nil
}
