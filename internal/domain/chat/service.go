package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartspend/backend/internal/domain/expense"
	"github.com/smartspend/backend/pkg/metrics"
)

// ExpenseRecorder is the downstream collaborator that persists expenses
// derived from actionable parses. The chat service is the only caller; the
// parser itself never touches it.
type ExpenseRecorder interface {
	Record(ctx context.Context, params expense.CreateExpenseParams) (*expense.Expense, error)
}

// Result is the outcome of handling one user message.
type Result struct {
	UserMessage Message               `json:"user_message"`
	Reply       Message               `json:"reply"`
	Parsed      expense.ParsedExpense `json:"parsed"`
	Recorded    *expense.Expense      `json:"recorded,omitempty"`
}

// Service runs the conversational expense flow.
type Service struct {
	parser    *expense.Parser
	responder *expense.Responder
	recorder  ExpenseRecorder
	history   *History
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

// NewService wires the chat service. The metrics argument may be nil when
// observability is disabled.
func NewService(
	parser *expense.Parser,
	responder *expense.Responder,
	recorder ExpenseRecorder,
	history *History,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		parser:    parser,
		responder: responder,
		recorder:  recorder,
		history:   history,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("smartspend/chat"),
		now:       time.Now,
	}
}

// HandleMessage parses one utterance, records the expense when the parse is
// actionable (confidence at or above the threshold with both amount and
// category present), and generates the bot reply. The date default to today
// happens here, on the derived payload — the parsed record keeps its absent
// date.
func (s *Service) HandleMessage(ctx context.Context, userID uuid.UUID, content string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "chat.HandleMessage")
	defer span.End()

	if userID == uuid.Nil {
		return nil, fmt.Errorf("chat message requires a user id")
	}

	parsed := s.parser.Parse(content)
	span.SetAttributes(
		attribute.Float64("parse.confidence", parsed.Confidence),
		attribute.Bool("parse.has_amount", parsed.Amount != nil),
		attribute.Bool("parse.has_category", parsed.Category != nil),
	)

	result := &Result{
		UserMessage: Message{
			ID:        uuid.New(),
			UserID:    userID,
			Content:   content,
			IsUser:    true,
			Timestamp: s.now(),
		},
		Parsed: parsed,
	}

	actionable := parsed.Confidence >= expense.ActionableConfidence &&
		parsed.Amount != nil && parsed.Category != nil

	if actionable {
		date := s.now()
		if parsed.Date != nil {
			date = *parsed.Date
		}

		recorded, err := s.recorder.Record(ctx, expense.CreateExpenseParams{
			UserID:      userID,
			Amount:      *parsed.Amount,
			Category:    *parsed.Category,
			Description: parsed.Description,
			Date:        date,
			AddedVia:    expense.AddedViaChatbot,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record expense: %w", err)
		}
		result.Recorded = recorded

		s.logger.Info("expense recorded from chat",
			slog.String("user_id", userID.String()),
			slog.String("expense_id", recorded.ID.String()),
			slog.String("category", string(recorded.Category)),
			slog.Float64("confidence", parsed.Confidence),
		)
	}

	reply := s.responder.Generate(parsed, parsed.Confidence >= expense.ActionableConfidence)
	result.Reply = Message{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   reply,
		IsUser:    false,
		Timestamp: s.now(),
		Expense:   result.Recorded,
	}

	s.history.Append(result.UserMessage)
	s.history.Append(result.Reply)

	s.observe(parsed, result.Recorded != nil)
	return result, nil
}

// History returns the user's transcript.
func (s *Service) History(userID uuid.UUID) []Message {
	return s.history.List(userID)
}

func (s *Service) observe(parsed expense.ParsedExpense, recorded bool) {
	if s.metrics == nil {
		return
	}

	s.metrics.ChatMessages.Inc()
	s.metrics.ParseConfidence.Observe(parsed.Confidence)

	outcome := metrics.OutcomeNotUnderstood
	switch {
	case recorded:
		outcome = metrics.OutcomeRecorded
		s.metrics.ExpensesRecorded.Inc()
	case parsed.Confidence >= expense.ActionableConfidence && parsed.Amount == nil:
		outcome = metrics.OutcomeMissingAmount
	case parsed.Confidence >= expense.ActionableConfidence && parsed.Category == nil:
		outcome = metrics.OutcomeMissingCategory
	}
	s.metrics.ParseOutcomes.WithLabelValues(outcome).Inc()
}
