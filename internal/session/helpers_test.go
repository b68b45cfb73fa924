package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/camera"
	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/quiz"
)

// --- content ---

type fakeContent struct {
	inputs  []quiz.GenerateInput
	errs    []error
	explain []quiz.ExplainInput
}

func (f *fakeContent) GenerateQuestion(_ context.Context, in quiz.GenerateInput) (*quiz.Question, error) {
	f.inputs = append(f.inputs, in)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &quiz.Question{
		Prompt:       fmt.Sprintf("Q%d about %s", len(f.inputs), in.Topic),
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 1,
		Difficulty:   in.Difficulty,
		Topic:        in.Topic,
		Mode:         in.Mode,
	}, nil
}

func (f *fakeContent) GenerateExplanation(_ context.Context, in quiz.ExplainInput) (*quiz.Explanation, error) {
	f.explain = append(f.explain, in)
	return &quiz.Explanation{Summary: "because " + in.Question.Prompt}, nil
}

func (f *fakeContent) lastDifficulty() quiz.Difficulty {
	return f.inputs[len(f.inputs)-1].Difficulty
}

// --- attention ---

type fakeAnalyzer struct {
	score int
	mood  attention.Mood
	err   error
	calls []attention.FrameContext
}

func (f *fakeAnalyzer) AnalyzeFrame(_ context.Context, fr camera.Frame, fc attention.FrameContext) (*attention.Sample, error) {
	f.calls = append(f.calls, fc)
	if f.err != nil {
		return nil, f.err
	}
	return &attention.Sample{ConfusionScore: f.score, Mood: f.mood, Summary: "ok", CapturedAt: fr.CapturedAt}, nil
}

// --- persistence ---

type fakePersistence struct {
	frames  []EvidenceFrame
	reports []Report
}

func (f *fakePersistence) StoreEvidenceFrame(_ context.Context, _ string, fr EvidenceFrame) error {
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakePersistence) AppendSessionReport(_ context.Context, _ string, r Report) error {
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakePersistence) framesForStep(step int) int {
	n := 0
	for _, fr := range f.frames {
		if fr.StepIndex == step {
			n++
		}
	}
	return n
}

type fakeJournal struct {
	actions   []string
	answers   []AnswerRecord
	snapshots []Snapshot
}

func (f *fakeJournal) RecordLifecycle(_ context.Context, _ string, ev LifecycleEvent) error {
	f.actions = append(f.actions, ev.Action)
	return nil
}

func (f *fakeJournal) RecordAnswer(_ context.Context, _ string, rec AnswerRecord) error {
	f.answers = append(f.answers, rec)
	return nil
}

func (f *fakeJournal) SaveSnapshot(_ context.Context, _ string, s Snapshot) error {
	f.snapshots = append(f.snapshots, s)
	return nil
}

// --- mastery ---

type memScores map[string]int

func (m memScores) LoadMasteryScore(_ context.Context, _, key string) (int, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memScores) StoreMasteryScore(_ context.Context, _, key string, score int) error {
	m[key] = score
	return nil
}

// --- camera ---

type fakeStream struct{ closed bool }

func (s *fakeStream) Latest() (camera.Frame, bool) {
	if s.closed {
		return camera.Frame{}, false
	}
	return camera.Frame{Data: []byte{0xff, 0xd8, 0xff, 0xd9}, MIMEType: "image/jpeg", CapturedAt: time.Unix(1700000000, 0)}, true
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeDevice struct {
	err   error
	opens int
}

func (d *fakeDevice) Open(context.Context) (camera.Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.opens++
	return &fakeStream{}, nil
}

func (d *fakeDevice) Name() string { return "fake" }

// --- scheduler ---

type scheduledTick struct {
	ctx context.Context
	d   time.Duration
	msg tickMsg
}

type fakeScheduler struct {
	pending []scheduledTick
	history []scheduledTick
}

func (f *fakeScheduler) schedule(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	st := scheduledTick{ctx: ctx, d: d, msg: msg.(tickMsg)}
	f.pending = append(f.pending, st)
	f.history = append(f.history, st)
	return nil
}

// take removes and returns the newest live tick of kind.
func (f *fakeScheduler) take(kind cycleKind) (tickMsg, bool) {
	for i := len(f.pending) - 1; i >= 0; i-- {
		st := f.pending[i]
		if st.msg.kind == kind && st.ctx.Err() == nil {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return st.msg, true
		}
	}
	return tickMsg{}, false
}

func (f *fakeScheduler) lastInterval(kind cycleKind) time.Duration {
	for i := len(f.history) - 1; i >= 0; i-- {
		if f.history[i].msg.kind == kind {
			return f.history[i].d
		}
	}
	return 0
}

// --- harness ---

type harness struct {
	t        *testing.T
	e        *Engine
	sched    *fakeScheduler
	content  *fakeContent
	analyzer *fakeAnalyzer
	persist  *fakePersistence
	journal  *fakeJournal
	device   *fakeDevice
	cam      *camera.Resource
	scores   memScores
	now      time.Time
}

func newHarness(t *testing.T, opts ...func(*Config)) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		sched:    &fakeScheduler{},
		content:  &fakeContent{},
		analyzer: &fakeAnalyzer{score: 30, mood: attention.MoodFocused},
		persist:  &fakePersistence{},
		journal:  &fakeJournal{},
		device:   &fakeDevice{},
		scores:   memScores{},
		now:      time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	h.cam = camera.NewResource(h.device)
	cfg := Config{
		Content:     h.content,
		Analyzer:    h.analyzer,
		Persistence: h.persist,
		Journal:     h.journal,
		Ledger:      mastery.NewLedger(h.scores, "learner-1"),
		Camera:      h.cam,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Schedule:    h.sched.schedule,
		Now:         func() time.Time { return h.now },
	}
	for _, o := range opts {
		o(&cfg)
	}
	h.e = New(cfg)
	return h
}

// run executes cmd and feeds every resulting message back into the engine
// until nothing is left.
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.run(h.e.Update(msg))
	}
}

// collect executes cmd without delivering the resulting messages.
func (h *harness) collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, h.collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// try runs an operation's command and ignores a rejected transition.
func (h *harness) try(cmd tea.Cmd, _ error) { h.run(cmd) }

func (h *harness) do(cmd tea.Cmd, err error) {
	h.t.Helper()
	require.NoError(h.t, err)
	h.run(cmd)
}

// fire delivers the pending tick of kind, reporting whether there was one.
func (h *harness) fire(kind cycleKind) bool {
	msg, ok := h.sched.take(kind)
	if !ok {
		return false
	}
	h.run(h.e.Update(msg))
	return true
}

func (h *harness) begin(mode quiz.Mode, topic string, total int) {
	h.t.Helper()
	require.NoError(h.t, h.e.Configure(mode, topic, total))
	h.do(h.e.Start())
	require.Equal(h.t, PhaseAwaitingConsent, h.e.Snapshot().Phase)
	h.do(h.e.GrantConsent(true))
	require.Equal(h.t, PhaseActive, h.e.Snapshot().Phase)
}

func (h *harness) answer(correct bool) {
	h.t.Helper()
	s := h.e.Snapshot()
	require.NotNil(h.t, s.Question)
	pick := s.Question.CorrectIndex
	if !correct {
		pick = (pick + 1) % len(s.Question.Options)
	}
	h.do(h.e.SelectOption(pick))
	h.do(h.e.SubmitAnswer())
}

var errBoom = errors.New("boom")
