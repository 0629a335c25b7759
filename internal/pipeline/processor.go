package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/feedback"
	"github.com/phrazzld/triage-api/internal/mail"
	"github.com/phrazzld/triage-api/internal/state"
	"github.com/phrazzld/triage-api/internal/store"
	"github.com/phrazzld/triage-api/internal/ws"
)

// Config holds the per-run knobs of a Processor.
type Config struct {
	// ThreadCount is the target number of distinct threads per run.
	ThreadCount int

	// MessageCap bounds how many messages of one thread are retained.
	MessageCap int

	// FeedbackTimeout bounds how long each checkpoint waits for the
	// operator before the affirmative default applies.
	FeedbackTimeout time.Duration
}

// Processor runs the decision pipeline for one operator at a time. It is
// stateless across runs; all per-user state lives in the state store and
// the feedback broker it is handed.
type Processor struct {
	cfg       Config
	source    Source
	retriever mail.Retriever
	engine    Engine
	labeler   mail.Labeler
	drafter   mail.Drafter
	broker    Broker
	states    *state.Store
	sender    Sender
	decisions store.DecisionLogStore
	logger    *slog.Logger
}

// NewProcessor wires a Processor from its collaborators.
func NewProcessor(
	cfg Config,
	source Source,
	retriever mail.Retriever,
	engine Engine,
	labeler mail.Labeler,
	drafter mail.Drafter,
	broker Broker,
	states *state.Store,
	sender Sender,
	decisions store.DecisionLogStore,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:       cfg,
		source:    source,
		retriever: retriever,
		engine:    engine,
		labeler:   labeler,
		drafter:   drafter,
		broker:    broker,
		states:    states,
		sender:    sender,
		decisions: decisions,
		logger:    logger.With("component", "pipeline_processor"),
	}
}

// Run executes one full processing run for the operator. The caller must
// have claimed the operator's worker slot via state.Store.TryStart; Run
// releases it on every exit path and pushes a final status update so
// connected clients always learn how the run ended.
func (p *Processor) Run(ctx context.Context, operatorID uuid.UUID) error {
	userID := operatorID.String()
	log := p.logger.With("user_id", userID)

	defer p.states.Finish(userID)
	defer p.notify(ctx, userID)

	summary := &domain.RunSummary{Outcomes: make(map[string]string)}

	threads, err := p.source.Fetch(ctx, p.cfg.ThreadCount, p.cfg.MessageCap)
	if err != nil {
		p.fail(ctx, userID, summary, fmt.Errorf("fetching threads: %w", err))
		return fmt.Errorf("fetching threads: %w", err)
	}

	log.Info("processing run started", "thread_count", len(threads))
	p.apply(userID, state.Update{
		Status:  state.Status(domain.TaskStatusRunning),
		Results: summary,
	})
	p.notify(ctx, userID)

	for _, thread := range threads {
		outcome, err := p.processThread(ctx, operatorID, thread)
		if err != nil {
			p.fail(ctx, userID, summary, fmt.Errorf("thread %s: %w", thread.ID, err))
			return fmt.Errorf("thread %s: %w", thread.ID, err)
		}
		if outcome != "" {
			summary.Processed++
			summary.Outcomes[thread.ID] = outcome
		}
		p.apply(userID, state.Update{Results: summary})
		p.notify(ctx, userID)
	}

	if summary.Processed == 0 {
		summary.Message = "no threads required processing"
	}
	p.apply(userID, state.Update{
		Status:  state.Status(domain.TaskStatusCompleted),
		Results: summary,
	})
	log.Info("processing run completed", "processed", summary.Processed)
	return nil
}

// processThread walks one thread through the decision stages. It returns
// the terminal outcome, or "" when the thread was skipped without action.
// Collaborator failures abort the whole run; the operator's time is too
// expensive to spend on a run that is half broken.
func (p *Processor) processThread(ctx context.Context, operatorID uuid.UUID, thread mail.Thread) (string, error) {
	userID := operatorID.String()
	log := p.logger.With("user_id", userID, "thread_id", thread.ID)

	if len(thread.Messages) == 0 {
		return "", nil
	}
	// Position 1 is the newest message; it is the one acted on.
	item := thread.Messages[0]

	content, err := p.retriever.Content(ctx, item.MessageID)
	if err != nil {
		if errors.Is(err, mail.ErrNoContent) {
			log.Info("skipping thread with no readable content")
			return "", nil
		}
		return "", fmt.Errorf("retrieving content: %w", err)
	}
	emailText := renderEmail(content)

	summaryText, err := p.engine.Summarize(ctx, emailText)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	decision, err := p.engine.DecideResponse(ctx, summaryText)
	if err != nil {
		return "", fmt.Errorf("needs-response decision: %w", err)
	}

	approved, answer, err := p.broker.Request(ctx, userID, "", string(decision), summaryText, p.cfg.FeedbackTimeout)
	if err != nil {
		return "", fmt.Errorf("needs-response checkpoint: %w", err)
	}
	p.record(ctx, operatorID, thread.ID, item.MessageID, domain.StageNeedsResponse, string(decision), approved, answer, "")

	// Confirmed no-response and rejected respond both end in the archive;
	// rejected no-response means the operator wants a reply after all.
	needsReply := decision == domain.ResponseDecisionRespond
	if !approved {
		needsReply = !needsReply
	}
	if !needsReply {
		return p.archive(ctx, operatorID, thread.ID, item.MessageID)
	}

	category, err := p.engine.Categorize(ctx, emailText)
	if err != nil {
		return "", fmt.Errorf("categorize: %w", err)
	}

	approved, answer, err = p.broker.Request(ctx, userID, "", string(category), summaryText, p.cfg.FeedbackTimeout)
	if err != nil {
		return "", fmt.Errorf("category checkpoint: %w", err)
	}
	p.record(ctx, operatorID, thread.ID, item.MessageID, domain.StageCategory, string(category), approved, answer, "")
	if !approved {
		category = category.Invert()
	}

	if category == domain.CategoryDecline {
		return p.decline(ctx, operatorID, thread.ID, content, emailText)
	}

	meeting, err := p.engine.DecideMeeting(ctx, emailText)
	if err != nil {
		return "", fmt.Errorf("meeting decision: %w", err)
	}

	verdict := "no"
	if meeting {
		verdict = "yes"
	}
	approved, answer, err = p.broker.Request(ctx, userID, "", verdict, summaryText, p.cfg.FeedbackTimeout)
	if err != nil {
		return "", fmt.Errorf("meeting checkpoint: %w", err)
	}
	p.record(ctx, operatorID, thread.ID, item.MessageID, domain.StageMeeting, verdict, approved, answer, "")
	if !approved {
		meeting = !meeting
	}

	if meeting {
		return p.respond(ctx, operatorID, thread.ID, content, emailText, true)
	}
	return p.respond(ctx, operatorID, thread.ID, content, emailText, false)
}

// archive removes the thread from the triage surface without a reply.
func (p *Processor) archive(ctx context.Context, operatorID uuid.UUID, threadID, messageID string) (string, error) {
	err := p.labeler.Apply(ctx, messageID,
		[]string{mail.LabelArchive, mail.LabelNoResponseNeeded},
		[]string{mail.LabelInbox, mail.LabelUnread})
	if err != nil {
		return "", fmt.Errorf("archiving: %w", err)
	}
	p.record(ctx, operatorID, threadID, messageID, domain.StageDraft, "archive", true, "", domain.OutcomeArchived)
	return domain.OutcomeArchived, nil
}

// decline drafts a polite decline on the thread.
func (p *Processor) decline(ctx context.Context, operatorID uuid.UUID, threadID string, content mail.Content, emailText string) (string, error) {
	body, err := p.engine.WriteDecline(ctx, emailText)
	if err != nil {
		return "", fmt.Errorf("writing decline: %w", err)
	}
	if err := p.createDraft(ctx, operatorID, threadID, content, body); err != nil {
		return "", err
	}
	err = p.labeler.Apply(ctx, content.MessageID,
		[]string{mail.LabelDecline},
		[]string{mail.LabelUnread})
	if err != nil {
		return "", fmt.Errorf("labeling decline: %w", err)
	}
	p.record(ctx, operatorID, threadID, content.MessageID, domain.StageDraft, "decline", true, "", domain.OutcomeDeclined)
	return domain.OutcomeDeclined, nil
}

// respond drafts either a scheduling response or a full reply.
func (p *Processor) respond(ctx context.Context, operatorID uuid.UUID, threadID string, content mail.Content, emailText string, meeting bool) (string, error) {
	var body string
	var err error
	if meeting {
		body, err = p.engine.WriteSchedule(ctx, emailText)
	} else {
		body, err = p.engine.WriteReply(ctx, emailText)
	}
	if err != nil {
		return "", fmt.Errorf("writing response: %w", err)
	}

	if err := p.createDraft(ctx, operatorID, threadID, content, body); err != nil {
		return "", err
	}

	add := []string{mail.LabelResponseNeeded, mail.LabelDraft}
	outcome := domain.OutcomeReplied
	if meeting {
		add = []string{mail.LabelScheduleMeeting, mail.LabelDraft}
		outcome = domain.OutcomeScheduled
	}
	if err := p.labeler.Apply(ctx, content.MessageID, add, []string{mail.LabelUnread}); err != nil {
		return "", fmt.Errorf("labeling response: %w", err)
	}
	p.record(ctx, operatorID, threadID, content.MessageID, domain.StageDraft, outcome, true, "", outcome)
	return outcome, nil
}

// createDraft stores the draft on the thread, records it in the user's
// task state, and pushes the update so clients render the draft at once.
func (p *Processor) createDraft(ctx context.Context, operatorID uuid.UUID, threadID string, content mail.Content, body string) error {
	userID := operatorID.String()
	subject := replySubject(content.Subject)

	draftID, err := p.drafter.CreateDraft(ctx, body, content.From, subject, threadID)
	if err != nil {
		return fmt.Errorf("creating draft: %w", err)
	}
	p.logger.Info("draft created",
		"user_id", userID,
		"thread_id", threadID,
		"draft_id", draftID)

	p.apply(userID, state.Update{
		Status:         state.Status(domain.TaskStatusDraftCreated),
		DraftEmail:     state.String(body),
		DraftSubject:   state.String(subject),
		DraftRecipient: state.String(content.From),
	})
	p.notify(ctx, userID)
	return nil
}

// fail marks the run failed and leaves the error on the results payload.
func (p *Processor) fail(ctx context.Context, userID string, summary *domain.RunSummary, err error) {
	p.logger.Error("processing run failed", "user_id", userID, "error", err)
	summary.Error = err.Error()
	p.apply(userID, state.Update{
		Status:  state.Status(domain.TaskStatusFailed),
		Results: summary,
	})
}

// record appends one audit row. Audit failures are logged and tolerated:
// losing a log line must not abort a run the operator is sitting in.
func (p *Processor) record(ctx context.Context, operatorID uuid.UUID, threadID, messageID, stage, decision string, approved bool, answer, outcome string) {
	rec, err := domain.NewDecisionRecord(operatorID, threadID, messageID, stage, decision, approved, answer)
	if err != nil {
		p.logger.Warn("building decision record failed", "error", err, "thread_id", threadID)
		return
	}
	rec.Outcome = outcome
	if err := p.decisions.Insert(ctx, rec); err != nil {
		p.logger.Warn("writing decision record failed", "error", err, "thread_id", threadID)
	}
}

func (p *Processor) apply(userID string, upd state.Update) {
	if err := p.states.Apply(userID, upd); err != nil {
		p.logger.Warn("applying state update failed", "user_id", userID, "error", err)
	}
}

// notify pushes the user's current task state to their connections. A user
// with no live connection simply misses the update; the run continues.
func (p *Processor) notify(ctx context.Context, userID string) {
	st, err := p.states.GetOrCreate(userID)
	if err != nil {
		return
	}
	p.sender.Send(ctx, userID, ws.NewStatusUpdate(st))
}

// renderEmail flattens message content into the text the decision engine
// prompts are built from.
func renderEmail(c mail.Content) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", c.From)
	fmt.Fprintf(&b, "To: %s\n", c.To)
	if c.Cc != "" {
		fmt.Fprintf(&b, "Cc: %s\n", c.Cc)
	}
	fmt.Fprintf(&b, "Date: %s\n", c.Date)
	fmt.Fprintf(&b, "Subject: %s\n\n", c.Subject)
	b.WriteString(c.Body)
	return b.String()
}

// replySubject prefixes the subject for the reply draft, avoiding stacked
// "Re: Re:" chains.
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

var _ Broker = (*feedback.Broker)(nil)
