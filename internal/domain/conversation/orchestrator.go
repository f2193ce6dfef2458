package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/support-api/internal/domain/llm"
	"github.com/janhq/support-api/internal/domain/retrieval"
	"github.com/janhq/support-api/internal/utils/platformerrors"
	"github.com/janhq/support-api/pkg/telemetry"
)

const (
	tracerName = "support-api/conversation"
	// botWriteTimeout bounds the bot turn write, which runs detached from the caller's cancellation.
	botWriteTimeout = 5 * time.Second
)

// OrchestratorConfig tunes one exchange.
type OrchestratorConfig struct {
	MaxResults        int
	RetrievalTimeout  time.Duration
	CompletionTimeout time.Duration
	EnforceOwnership  bool
}

// AskParams is one inbound question.
type AskParams struct {
	UserID         string
	Question       string
	UseRetrieval   bool
	ConversationID *string
}

// AskResult is the answer to one question.
type AskResult struct {
	Answer         string
	ConversationID string
	// Started is true when a new conversation id was generated.
	Started bool
	// Retrieved is the number of context snippets used in the prompt.
	Retrieved int
	// Degraded is true when a dependency failed and a fixed reply was used.
	Degraded bool
	// NoContext is true when retrieval produced nothing and the model was not called.
	NoContext bool
}

// Orchestrator runs a question through retrieval and completion and records both turns.
type Orchestrator struct {
	repo      Repository
	retriever retrieval.Retriever
	provider  llm.Provider
	locker    Locker
	cfg       OrchestratorConfig
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

func NewOrchestrator(
	repo Repository,
	retriever retrieval.Retriever,
	provider llm.Provider,
	locker Locker,
	cfg OrchestratorConfig,
	sanitizer *telemetry.Sanitizer,
	log zerolog.Logger,
) *Orchestrator {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxSnippets
	}
	if sanitizer == nil {
		sanitizer = telemetry.NewSanitizer(telemetry.PIILevelHashed, "")
	}
	return &Orchestrator{
		repo:      repo,
		retriever: retriever,
		provider:  provider,
		locker:    locker,
		cfg:       cfg,
		sanitizer: sanitizer,
		log:       log.With().Str("component", "conversation-orchestrator").Logger(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Ask answers a question within a conversation.
//
// The user turn is stored before any outbound call. If it cannot be stored the
// call fails with a DATABASE_ERROR wrapping ErrPersistence. Retrieval and
// completion failures never fail the call; they produce fixed replies instead.
// When only the bot turn fails to store, the result is returned together with
// an error wrapping ErrBotTurnNotPersisted.
func (o *Orchestrator) Ask(ctx context.Context, p AskParams) (*AskResult, error) {
	ctx, span := o.tracer.Start(ctx, "conversation.ask",
		trace.WithAttributes(attribute.Bool("conversation.use_rag", p.UseRetrieval)))
	defer span.End()

	if strings.TrimSpace(p.Question) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidInput,
			"Question must not be empty", nil, "")
	}

	result := &AskResult{}
	if p.ConversationID != nil && *p.ConversationID != "" {
		result.ConversationID = *p.ConversationID
		if err := o.checkOwnership(ctx, p.UserID, result.ConversationID); err != nil {
			return nil, err
		}
	} else {
		result.ConversationID = o.newID()
		result.Started = true
	}
	span.SetAttributes(attribute.String("conversation.id", result.ConversationID))
	log := o.log.With().
		Str("conversation_id", result.ConversationID).
		Str("user", o.sanitizer.UserID(p.UserID)).
		Logger()

	unlock, err := o.locker.Lock(ctx, "conversation:"+result.ConversationID)
	if err != nil {
		span.SetStatus(codes.Error, "lock")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"could not acquire conversation lock", err, "")
	}
	defer unlock()

	userTurn := &Turn{
		UserID:         p.UserID,
		ConversationID: result.ConversationID,
		Sender:         SenderUser,
		Message:        p.Question,
		CreatedAt:      o.now().UTC(),
	}
	if err := o.repo.Append(ctx, userTurn); err != nil {
		span.SetStatus(codes.Error, "persist user turn")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
			"failed to store question", fmt.Errorf("%w: %w", ErrPersistence, err), "")
	}

	log.Debug().Str("question", o.sanitizer.Text(p.Question)).Msg("question stored")

	prompt := p.Question
	skipCompletion := false
	if p.UseRetrieval {
		snippets, err := o.retrieve(ctx, p.Question)
		if err != nil {
			platformerrors.LogError(log, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal, "context retrieval failed", err, ""))
			result.Degraded = true
		}
		if len(snippets) == 0 {
			result.Answer = NoContextAnswer
			result.NoContext = true
			skipCompletion = true
		} else {
			result.Retrieved = len(snippets)
			prompt = BuildPrompt(snippets, p.Question)
		}
	}

	if !skipCompletion {
		answer, err := o.complete(ctx, prompt)
		if err != nil {
			platformerrors.LogError(log, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal, "completion failed", err, ""))
			answer = FallbackAnswer
			result.Degraded = true
		}
		result.Answer = answer
	}

	botAt := o.now().UTC()
	if botAt.Before(userTurn.CreatedAt) {
		botAt = userTurn.CreatedAt
	}
	botTurn := &Turn{
		UserID:         p.UserID,
		ConversationID: result.ConversationID,
		Sender:         SenderBot,
		Message:        result.Answer,
		CreatedAt:      botAt,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), botWriteTimeout)
	defer cancel()
	if err := o.repo.Append(writeCtx, botTurn); err != nil {
		span.SetStatus(codes.Error, "persist bot turn")
		perr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
			"failed to store answer", fmt.Errorf("%w: %w: %w", ErrBotTurnNotPersisted, ErrPersistence, err), "")
		platformerrors.LogError(log, perr)
		return result, perr
	}

	span.SetAttributes(
		attribute.Int("conversation.retrieved", result.Retrieved),
		attribute.Bool("conversation.degraded", result.Degraded),
	)
	log.Info().
		Bool("use_rag", p.UseRetrieval).
		Int("retrieved", result.Retrieved).
		Bool("degraded", result.Degraded).
		Str("answer", o.sanitizer.Text(result.Answer)).
		Msg("question answered")
	return result, nil
}

// BuildPrompt joins snippets into the context block placed before the question.
func BuildPrompt(snippets []string, question string) string {
	return "Context: " + strings.Join(snippets, "\n") + "\nQuestion: " + question
}

func (o *Orchestrator) checkOwnership(ctx context.Context, userID, conversationID string) error {
	if !o.cfg.EnforceOwnership {
		return nil
	}
	owner, found, err := o.repo.ConversationOwner(ctx, conversationID)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
			"failed to look up conversation", fmt.Errorf("%w: %w", ErrPersistence, err), "")
	}
	if found && owner != userID {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"Conversation belongs to another user", ErrConversationNotOwned, "")
	}
	return nil
}

func (o *Orchestrator) retrieve(ctx context.Context, question string) ([]string, error) {
	ctx, span := o.tracer.Start(ctx, "conversation.retrieve")
	defer span.End()

	if o.cfg.RetrievalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RetrievalTimeout)
		defer cancel()
	}

	snippets, err := o.retriever.Retrieve(ctx, question, o.cfg.MaxResults)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(snippets) > o.cfg.MaxResults {
		snippets = snippets[:o.cfg.MaxResults]
	}
	span.SetAttributes(attribute.Int("retrieval.results", len(snippets)))
	return snippets, nil
}

func (o *Orchestrator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "conversation.complete",
		trace.WithAttributes(attribute.String("llm.provider", o.provider.Name())))
	defer span.End()

	if o.cfg.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.CompletionTimeout)
		defer cancel()
	}

	answer, err := o.provider.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = llm.ErrEmptyCompletion
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// IsBotTurnNotPersisted reports whether err only signals a lost bot turn.
func IsBotTurnNotPersisted(err error) bool {
	return errors.Is(err, ErrBotTurnNotPersisted)
}
