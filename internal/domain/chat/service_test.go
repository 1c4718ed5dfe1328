package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartspend/backend/internal/domain/expense"
	"github.com/smartspend/backend/pkg/metrics"
)

var testNow = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

type recorderStub struct {
	params []expense.CreateExpenseParams
	err    error
}

func (r *recorderStub) Record(_ context.Context, params expense.CreateExpenseParams) (*expense.Expense, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.params = append(r.params, params)
	return &expense.Expense{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Category:    params.Category,
		Description: params.Description,
		Date:        params.Date,
		AddedVia:    params.AddedVia,
	}, nil
}

func newTestService(t *testing.T, recorder ExpenseRecorder) (*Service, *metrics.Metrics) {
	t.Helper()

	taxonomy := expense.DefaultTaxonomy()
	parser := expense.NewParser(taxonomy, expense.WithClock(func() time.Time { return testNow }))
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(parser, expense.NewResponder(taxonomy), recorder, NewHistory(0), logger, m)
	svc.now = func() time.Time { return testNow }
	return svc, m
}

func TestService_HandleMessage_Actionable(t *testing.T) {
	recorder := &recorderStub{}
	svc, m := newTestService(t, recorder)
	userID := uuid.New()

	result, err := svc.HandleMessage(context.Background(), userID, "Gas for $60 yesterday")
	require.NoError(t, err)

	require.NotNil(t, result.Recorded)
	require.Len(t, recorder.params, 1)

	params := recorder.params[0]
	assert.Equal(t, userID, params.UserID)
	assert.Equal(t, "60", params.Amount.String())
	assert.Equal(t, expense.CategoryTransportation, params.Category)
	assert.Equal(t, expense.AddedViaChatbot, params.AddedVia)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), params.Date)

	assert.True(t, result.UserMessage.IsUser)
	assert.False(t, result.Reply.IsUser)
	assert.Contains(t, result.Reply.Content, "Perfect!")
	assert.Equal(t, result.Recorded, result.Reply.Expense)

	assert.Len(t, svc.History(userID), 2)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExpensesRecorded))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ParseOutcomes.WithLabelValues(metrics.OutcomeRecorded)))
}

func TestService_HandleMessage_DateDefaultsToToday(t *testing.T) {
	recorder := &recorderStub{}
	svc, _ := newTestService(t, recorder)

	result, err := svc.HandleMessage(context.Background(), uuid.New(), "I spent $50 on groceries")
	require.NoError(t, err)

	// The parsed record keeps its absent date; only the derived payload gets
	// the caller-side default.
	assert.Nil(t, result.Parsed.Date)
	require.Len(t, recorder.params, 1)
	assert.Equal(t, testNow, recorder.params[0].Date)
}

func TestService_HandleMessage_NotActionable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		outcome string
	}{
		{"not understood", "hello there", metrics.OutcomeNotUnderstood},
		{"missing amount", "paid way too much for lunch", metrics.OutcomeMissingAmount},
		{"missing category", "spent $12 there", metrics.OutcomeMissingCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &recorderStub{}
			svc, m := newTestService(t, recorder)
			userID := uuid.New()

			result, err := svc.HandleMessage(context.Background(), userID, tt.input)
			require.NoError(t, err)

			assert.Nil(t, result.Recorded)
			assert.Empty(t, recorder.params, "nothing may reach the recorder")
			assert.NotEmpty(t, result.Reply.Content)
			assert.Len(t, svc.History(userID), 2)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.ParseOutcomes.WithLabelValues(tt.outcome)))
		})
	}
}

func TestService_HandleMessage_RecorderError(t *testing.T) {
	recorder := &recorderStub{err: errors.New("store unavailable")}
	svc, _ := newTestService(t, recorder)

	_, err := svc.HandleMessage(context.Background(), uuid.New(), "Gas for $60 yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}

func TestService_HandleMessage_RequiresUser(t *testing.T) {
	svc, _ := newTestService(t, &recorderStub{})

	_, err := svc.HandleMessage(context.Background(), uuid.Nil, "lunch $10")
	assert.Error(t, err)
}
