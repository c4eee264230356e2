package copilot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/campuscopilot/copilot-go/internal/campus"
	"github.com/campuscopilot/copilot-go/internal/faq"
	"github.com/campuscopilot/copilot-go/internal/knowledge"
	"github.com/campuscopilot/copilot-go/internal/rag"
	"github.com/campuscopilot/copilot-go/internal/store"
)

// fakeChatModel returns a canned reply or error and records the last
// message slice it was given.
type fakeChatModel struct {
	reply string
	err   error
	// block makes Generate wait for context cancellation, to exercise the
	// generation timeout.
	block bool

	lastMessages []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.lastMessages = in
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// stubEmbedder returns a constant vector for every input.
type stubEmbedder struct{ dims int }

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, e.dims)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int { return e.dims }

func testCampus() *campus.Context {
	return &campus.Context{
		Name: "Roorkee Institute of Technology",
		Departments: []campus.Department{
			{ID: "cs", Name: "Computer Science", Head: "Dr. Anjali Sharma", Email: "cs@rit.edu"},
		},
		ContactInfo: campus.ContactInfo{
			General: campus.ContactChannel{Email: "info@rit.edu"},
		},
	}
}

func readyKnowledge(t *testing.T) *knowledge.Store {
	t.Helper()
	ks, err := knowledge.NewStore(&stubEmbedder{dims: 4}, rag.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := ks.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return ks
}

func newTestCopilot(t *testing.T, c *campus.Context, chatModel model.BaseChatModel, opts *Options) *Copilot {
	t.Helper()
	cp, err := New(c, faq.NewDefaultMatcher(c), readyKnowledge(t), chatModel, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cp
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	c := testCampus()
	m := faq.NewDefaultMatcher(c)
	ks := readyKnowledge(t)

	if _, err := New(nil, m, ks, nil, nil); err == nil {
		t.Fatal("New without campus context must fail")
	}
	if _, err := New(c, nil, ks, nil, nil); err == nil {
		t.Fatal("New without matcher must fail")
	}
	if _, err := New(c, m, nil, nil, nil); err == nil {
		t.Fatal("New without knowledge store must fail")
	}
	if _, err := New(c, m, ks, nil, nil); err != nil {
		t.Fatalf("New without chat model must succeed, got %v", err)
	}
}

func TestResolve_BlankQuery(t *testing.T) {
	t.Parallel()

	cp := newTestCopilot(t, testCampus(), nil, nil)
	for _, q := range []string{"", "   ", "\n\t"} {
		res := cp.Resolve(context.Background(), "s1", q)
		if res.Stage != StageClarify {
			t.Fatalf("Resolve(%q) stage = %s, want clarify", q, res.Stage)
		}
		if !strings.Contains(res.Answer, "rephrase") {
			t.Fatalf("Resolve(%q) = %q, want clarification request", q, res.Answer)
		}
	}
}

func TestResolve_AttendanceSummary(t *testing.T) {
	t.Parallel()

	c := testCampus()
	c.StudentData = &campus.StudentData{
		Attendance: &campus.Attendance{
			OverallPercentage: 85.5,
			BySubject: []campus.SubjectAttendance{
				{Name: "Mathematics", Percentage: 86, Attended: 43, Total: 50},
				{Name: "Physics", Percentage: 85, Attended: 34, Total: 40},
			},
		},
	}
	cp := newTestCopilot(t, c, nil, nil)

	res := cp.Resolve(context.Background(), "s1", "what is my attendance like?")
	if res.Stage != StageAttendance {
		t.Fatalf("stage = %s, want attendance", res.Stage)
	}
	for _, want := range []string{
		"Overall: 85.5%",
		"Mathematics: 86% (43/50 classes)",
		"Physics: 85% (34/40 classes)",
	} {
		if !strings.Contains(res.Answer, want) {
			t.Fatalf("answer missing %q:\n%s", want, res.Answer)
		}
	}
}

func TestResolve_AttendanceWithoutRecords(t *testing.T) {
	t.Parallel()

	cp := newTestCopilot(t, testCampus(), nil, nil)
	res := cp.Resolve(context.Background(), "s1", "was I present yesterday?")
	if res.Stage != StageAttendance {
		t.Fatalf("stage = %s, want attendance", res.Stage)
	}
	if !strings.Contains(res.Answer, "couldn't find your attendance records") {
		t.Fatalf("answer = %q", res.Answer)
	}
}

func TestResolve_FAQStage(t *testing.T) {
	t.Parallel()

	// The fake model would answer, but the rule matcher must win first.
	chat := &fakeChatModel{reply: "model answer"}
	cp := newTestCopilot(t, testCampus(), chat, nil)

	res := cp.Resolve(context.Background(), "s1", "hello there")
	if res.Stage != StageFAQ {
		t.Fatalf("stage = %s, want faq", res.Stage)
	}
	if !strings.Contains(res.Answer, "Campus Copilot") {
		t.Fatalf("answer = %q, want the greeting", res.Answer)
	}
	if chat.lastMessages != nil {
		t.Fatal("chat model must not be called for a rule-matcher hit")
	}
}

func TestResolve_KnowledgeStage(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "model answer"}
	cp := newTestCopilot(t, testCampus(), chat, nil)

	// "dining" hits a default knowledge entry and no rule.
	res := cp.Resolve(context.Background(), "s1", "tell me about campus dining")
	if res.Stage != StageKnowledge {
		t.Fatalf("stage = %s, want knowledge", res.Stage)
	}
	if !strings.Contains(res.Answer, "Campus Dining") {
		t.Fatalf("answer = %q", res.Answer)
	}
	if chat.lastMessages != nil {
		t.Fatal("chat model must not be called for a knowledge hit")
	}
}

func TestResolve_GenerativeStage(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "The seminar starts at 5 PM."}
	cp := newTestCopilot(t, testCampus(), chat, nil)

	res := cp.Resolve(context.Background(), "s1", "when does the robotics seminar start")
	if res.Stage != StageGenerative {
		t.Fatalf("stage = %s, want generative", res.Stage)
	}
	if res.Answer != "The seminar starts at 5 PM." {
		t.Fatalf("answer = %q", res.Answer)
	}

	// Prompt shape: system first, current question last, campus context
	// serialized into the user prompt.
	if len(chat.lastMessages) < 2 {
		t.Fatalf("model got %d messages, want at least 2", len(chat.lastMessages))
	}
	first, last := chat.lastMessages[0], chat.lastMessages[len(chat.lastMessages)-1]
	if first.Role != schema.System || !strings.Contains(first.Content, "Campus Copilot") {
		t.Fatalf("first message = %s %q, want the system persona", first.Role, first.Content)
	}
	if last.Role != schema.User || !strings.Contains(last.Content, "robotics seminar") {
		t.Fatalf("last message = %s %q, want the current question", last.Role, last.Content)
	}
	if !strings.Contains(last.Content, "Computer Science") {
		t.Fatal("user prompt must embed the serialized campus context")
	}
}

func TestResolve_ModelFailureFallsBackToApology(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		chat model.BaseChatModel
	}{
		{"model error", &fakeChatModel{err: errors.New("backend down")}},
		{"empty reply", &fakeChatModel{reply: "   "}},
		{"no model configured", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cp := newTestCopilot(t, testCampus(), tt.chat, nil)
			res := cp.Resolve(context.Background(), "s1", "when does the robotics seminar start")
			if res.Stage != StageFallback {
				t.Fatalf("stage = %s, want fallback", res.Stage)
			}
			if !strings.Contains(res.Answer, "I'm sorry, I encountered an error") {
				t.Fatalf("answer = %q, want the apology", res.Answer)
			}
		})
	}
}

func TestResolve_GenerationTimeout(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{block: true}
	cp := newTestCopilot(t, testCampus(), chat, &Options{GenerationTimeout: 20 * time.Millisecond})

	start := time.Now()
	res := cp.Resolve(context.Background(), "s1", "when does the robotics seminar start")
	if res.Stage != StageFallback {
		t.Fatalf("stage = %s, want fallback after timeout", res.Stage)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("resolver hung for %v, timeout not applied", elapsed)
	}
}

func TestResolve_RecordsHistory(t *testing.T) {
	t.Parallel()

	hist, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	cp := newTestCopilot(t, testCampus(), &fakeChatModel{reply: "ok"}, &Options{History: hist})
	ctx := context.Background()

	cp.Resolve(ctx, "sess-h", "hello there")

	msgs, err := hist.Recent(ctx, "sess-h", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("history has %d messages, want question and answer", len(msgs))
	}
	if msgs[0].Role != store.RoleUser || msgs[0].Content != "hello there" {
		t.Fatalf("msgs[0] = %s %q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != store.RoleAssistant {
		t.Fatalf("msgs[1].Role = %s", msgs[1].Role)
	}
}

func TestResolve_ReplaysHistoryToModel(t *testing.T) {
	t.Parallel()

	hist, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	ctx := context.Background()
	if err := hist.Append(ctx, "sess-r", store.RoleUser, "earlier question"); err != nil {
		t.Fatal(err)
	}
	if err := hist.Append(ctx, "sess-r", store.RoleAssistant, "earlier answer"); err != nil {
		t.Fatal(err)
	}

	chat := &fakeChatModel{reply: "ok"}
	cp := newTestCopilot(t, testCampus(), chat, &Options{History: hist})
	cp.Resolve(ctx, "sess-r", "and a follow-up question")

	var sawEarlier bool
	for _, m := range chat.lastMessages[1 : len(chat.lastMessages)-1] {
		if m.Content == "earlier answer" && m.Role == schema.Assistant {
			sawEarlier = true
		}
	}
	if !sawEarlier {
		t.Fatal("prior turns were not replayed between system prompt and current question")
	}
}

func TestHandleQuery_ReturnsAnswerOnly(t *testing.T) {
	t.Parallel()

	cp := newTestCopilot(t, testCampus(), nil, nil)
	if got := cp.HandleQuery(context.Background(), "s1", "hi"); !strings.Contains(got, "Campus Copilot") {
		t.Fatalf("HandleQuery = %q", got)
	}
}
