// Package copilot implements the query resolver: the strict first-match
// pipeline that turns a student's question into an answer. Stages run in a
// fixed order — blank-input guard, attendance short-circuit, rule matcher,
// knowledge lookup, generative fallback — and the resolver never returns an
// error to the caller; every failure mode has a fixed reply.
package copilot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/campuscopilot/copilot-go/internal/budget"
	"github.com/campuscopilot/copilot-go/internal/campus"
	"github.com/campuscopilot/copilot-go/internal/faq"
	"github.com/campuscopilot/copilot-go/internal/knowledge"
	"github.com/campuscopilot/copilot-go/internal/logging"
	"github.com/campuscopilot/copilot-go/internal/store"
)

// Stage identifies which pipeline tier produced an answer. Used as a
// metrics label, so values are stable.
type Stage string

const (
	// StageClarify is the blank-input guard.
	StageClarify Stage = "clarify"
	// StageAttendance is the student-data short-circuit.
	StageAttendance Stage = "attendance"
	// StageFAQ is a rule-matcher hit.
	StageFAQ Stage = "faq"
	// StageKnowledge is a knowledge-store lookup hit.
	StageKnowledge Stage = "knowledge"
	// StageGenerative is a successful chat-model answer.
	StageGenerative Stage = "generative"
	// StageFallback is the apology after a generative failure.
	StageFallback Stage = "fallback"
)

const (
	clarifyReply      = "I'm sorry, I didn't catch that. Could you please rephrase your question?"
	noAttendanceReply = "I couldn't find your attendance records. Please try again later."
	apologyReply      = "I'm sorry, I encountered an error while processing your request. Please try again later."
)

const (
	// DefaultGenerationTimeout bounds one chat-model call. The upstream
	// assistant had no deadline at all; a hung backend froze the session.
	DefaultGenerationTimeout = 30 * time.Second

	defaultHistoryDepth = 10
)

// Result is a resolved answer with the stage that produced it and, for
// knowledge answers, the contributing document sources.
type Result struct {
	Answer  string
	Stage   Stage
	Sources []string
}

// Options tune the resolver. The zero value is usable.
type Options struct {
	// History persists conversation turns and feeds the generative stage.
	// Nil disables history.
	History store.ConversationStore
	// HistoryDepth is how many recent messages are replayed to the model.
	HistoryDepth int
	// GenerationTimeout bounds one chat-model call.
	GenerationTimeout time.Duration
	// MaxContextTokens is the input budget for the generative stage.
	MaxContextTokens int
}

// Copilot resolves queries for one campus. A single instance serves
// concurrent sessions: the campus snapshot is read-only, and the matcher
// and knowledge store synchronize their own state.
type Copilot struct {
	campus    *campus.Context
	matcher   *faq.Matcher
	knowledge *knowledge.Store
	chatModel model.BaseChatModel

	history      store.ConversationStore
	historyDepth int
	genTimeout   time.Duration
	maxTokens    int

	system string
}

// New builds a resolver. The campus context, matcher, and knowledge store
// are required; chatModel may be nil, in which case the generative stage
// always falls back to the apology.
func New(c *campus.Context, matcher *faq.Matcher, ks *knowledge.Store, chatModel model.BaseChatModel, opts *Options) (*Copilot, error) {
	if c == nil {
		return nil, errors.New("copilot: campus context is required")
	}
	if matcher == nil {
		return nil, errors.New("copilot: rule matcher is required")
	}
	if ks == nil {
		return nil, errors.New("copilot: knowledge store is required")
	}
	if opts == nil {
		opts = &Options{}
	}

	cp := &Copilot{
		campus:       c,
		matcher:      matcher,
		knowledge:    ks,
		chatModel:    chatModel,
		history:      opts.History,
		historyDepth: opts.HistoryDepth,
		genTimeout:   opts.GenerationTimeout,
		maxTokens:    opts.MaxContextTokens,
		system:       systemPrompt(c),
	}
	if cp.historyDepth <= 0 {
		cp.historyDepth = defaultHistoryDepth
	}
	if cp.genTimeout <= 0 {
		cp.genTimeout = DefaultGenerationTimeout
	}
	if cp.maxTokens <= 0 {
		cp.maxTokens = budget.DefaultMaxContextTokens
	}
	return cp, nil
}

// HandleQuery resolves a query and returns only the answer text.
func (c *Copilot) HandleQuery(ctx context.Context, sessionID, query string) string {
	return c.Resolve(ctx, sessionID, query).Answer
}

// Resolve runs the pipeline. The first stage that produces an answer wins,
// and all answered turns are recorded to the history store best effort.
func (c *Copilot) Resolve(ctx context.Context, sessionID, query string) Result {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return Result{Answer: clarifyReply, Stage: StageClarify}
	}

	res := c.resolve(ctx, sessionID, query)
	log.Debug("query resolved", "stage", string(res.Stage), "sources", len(res.Sources))
	c.record(ctx, sessionID, query, res.Answer)
	return res
}

func (c *Copilot) resolve(ctx context.Context, sessionID, query string) Result {
	lowered := strings.ToLower(query)
	if strings.Contains(lowered, "attendance") || strings.Contains(lowered, "present") {
		return Result{Answer: c.attendanceSummary(), Stage: StageAttendance}
	}

	if answer, ok := c.matcher.FindAnswer(query); ok {
		return Result{Answer: answer, Stage: StageFAQ}
	}

	if res, ok := c.knowledge.Lookup(ctx, query); ok {
		return Result{Answer: res.Answer, Stage: StageKnowledge, Sources: res.Sources}
	}

	answer, err := c.generate(ctx, sessionID, query)
	if err != nil {
		logging.FromContext(ctx).Warn("generative stage failed", "error", err)
		return Result{Answer: apologyReply, Stage: StageFallback}
	}
	return Result{Answer: answer, Stage: StageGenerative}
}

// attendanceSummary formats the session student's attendance record.
func (c *Copilot) attendanceSummary() string {
	sd := c.campus.StudentData
	if sd == nil || sd.Attendance == nil {
		return noAttendanceReply
	}
	a := sd.Attendance

	lines := make([]string, len(a.BySubject))
	for i, sub := range a.BySubject {
		lines[i] = fmt.Sprintf("%s: %g%% (%d/%d classes)", sub.Name, sub.Percentage, sub.Attended, sub.Total)
	}
	return fmt.Sprintf("Here's your attendance summary:\n\nOverall: %g%%\n\nBy subject:\n%s",
		a.OverallPercentage, strings.Join(lines, "\n"))
}

// generate asks the chat model, with the campus context serialized into the
// prompt and recent history trimmed to the token budget. The call is bound
// by the configured timeout on top of the caller's context.
func (c *Copilot) generate(ctx context.Context, sessionID, query string) (string, error) {
	if c.chatModel == nil {
		return "", errors.New("copilot: no chat model configured")
	}

	genCtx, cancel := context.WithTimeout(ctx, c.genTimeout)
	defer cancel()

	fixed := []*schema.Message{
		schema.SystemMessage(c.system),
		schema.UserMessage(userPrompt(c.campus, query, time.Now())),
	}
	history := budget.TrimHistory(fixed, c.loadHistory(ctx, sessionID), c.maxTokens)

	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, fixed[0])
	msgs = append(msgs, history...)
	msgs = append(msgs, fixed[1])

	reply, err := c.chatModel.Generate(genCtx, msgs)
	if err != nil {
		return "", fmt.Errorf("copilot: generate: %w", err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", errors.New("copilot: empty model reply")
	}
	return reply.Content, nil
}

// loadHistory fetches recent turns for the session. History problems are
// logged and skipped; they must not block an answer.
func (c *Copilot) loadHistory(ctx context.Context, sessionID string) []*schema.Message {
	if c.history == nil || sessionID == "" {
		return nil
	}
	recent, err := c.history.Recent(ctx, sessionID, c.historyDepth)
	if err != nil {
		logging.FromContext(ctx).Warn("history load failed", "session", sessionID, "error", err)
		return nil
	}

	msgs := make([]*schema.Message, 0, len(recent))
	for _, m := range recent {
		switch m.Role {
		case store.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(m.Content))
		}
	}
	return msgs
}

// record persists one answered turn, best effort.
func (c *Copilot) record(ctx context.Context, sessionID, query, answer string) {
	if c.history == nil || sessionID == "" {
		return
	}
	log := logging.FromContext(ctx)
	if err := c.history.Append(ctx, sessionID, store.RoleUser, query); err != nil {
		log.Warn("history append failed", "session", sessionID, "error", err)
		return
	}
	if err := c.history.Append(ctx, sessionID, store.RoleAssistant, answer); err != nil {
		log.Warn("history append failed", "session", sessionID, "error", err)
	}
}
