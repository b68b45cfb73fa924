// Package session runs one proctored practice session: the question loop,
// difficulty adaptation, mastery updates and the consent-gated camera
// monitoring that runs alongside it.
//
// The Engine is driven from a Bubble Tea event loop. Operations mutate
// state synchronously and return commands for the slow work; the results
// come back as messages through Update.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/camera"
	"github.com/abhisek/quizwatch/internal/llm"
	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/metrics"
	"github.com/abhisek/quizwatch/internal/quiz"
)

// DefaultFetchAttempts is how many times a question fetch is tried before
// the failure is surfaced.
const DefaultFetchAttempts = 3

// Config wires an Engine to its collaborators. Only Content is required.
type Config struct {
	Content     ContentService
	Analyzer    AttentionAnalyzer
	Persistence Persistence
	Journal     Journal
	Ledger      *mastery.Ledger
	Camera      *camera.Resource
	Logger      *slog.Logger
	Metrics     *metrics.Metrics

	Timing   Timing
	Schedule Scheduler
	Now      func() time.Time

	FetchAttempts int
}

// Engine is the session state machine. It is not safe for concurrent use.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	ledger *mastery.Ledger
	mon    *Monitor
	gate   ConsentGate

	ctx      context.Context
	cancel   context.CancelFunc
	epoch    uint64
	fetchSeq uint64

	configured bool
	sessionID  string
	phase      Phase
	answer     AnswerState
	mode       quiz.Mode
	topic      string
	total      int
	step       int
	score      int

	question *LiveQuestion
	loading  bool
	lastErr  error
	prior    []string

	explanation *quiz.Explanation
	explLoading bool
	explErr     error

	lastAttention    *attention.Sample
	confusion        *int
	evidenceFrames   int
	attentionSamples int
	lastCorrect      bool
	answers          []AnswerResult
	startedAt        time.Time
	finishedAt       time.Time
}

// New creates an idle engine.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Ledger == nil {
		cfg.Ledger = mastery.NewLedger(nil, "local")
	}
	if cfg.Timing == (Timing{}) {
		cfg.Timing = DefaultTiming()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FetchAttempts <= 0 {
		cfg.FetchAttempts = DefaultFetchAttempts
	}
	if cfg.Camera == nil {
		cfg.Camera = camera.NewResource(nil)
	}

	e := &Engine{
		cfg:    cfg,
		log:    cfg.Logger,
		ledger: cfg.Ledger,
		mon:    NewMonitor(cfg.Camera, cfg.Schedule),
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e
}

func (e *Engine) invalid(op, reason string) error {
	return &TransitionError{Op: op, Phase: e.phase, Answer: e.answer, Reason: reason}
}

func (e *Engine) userID() string { return e.ledger.UserID() }

// Configure sets the mode, topic and question count for the next session.
func (e *Engine) Configure(mode quiz.Mode, topic string, totalQuestions int) error {
	if e.phase != PhaseIdle {
		return e.invalid("configure", "")
	}
	m, err := quiz.ParseMode(string(mode))
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("configure: topic is required")
	}
	e.mode = m
	e.topic = topic
	e.total = ClampQuestions(totalQuestions)
	e.configured = true
	return nil
}

// Start begins the configured session, asking for consent first unless it
// was already given. While active with no live question and no fetch in
// flight it retries the fetch.
func (e *Engine) Start() (tea.Cmd, error) {
	switch e.phase {
	case PhaseIdle:
		if !e.configured {
			return nil, e.invalid("start", "not configured")
		}
		e.sessionID = uuid.NewString()
		if e.gate.Granted() {
			return e.begin()
		}
		e.phase = PhaseAwaitingConsent
		e.gate.Defer(e.begin)
		return nil, nil
	case PhaseActive:
		return e.retryFetch("start")
	}
	return nil, e.invalid("start", "")
}

// GrantConsent answers the consent prompt. A denial ends the session
// attempt and returns to idle; Start asks again.
func (e *Engine) GrantConsent(allow bool) (tea.Cmd, error) {
	if e.phase != PhaseAwaitingConsent {
		return nil, e.invalid("grant consent", "")
	}
	if !allow {
		e.gate.Resolve(false)
		e.phase = PhaseIdle
		e.sessionID = ""
		return nil, nil
	}
	return e.gate.Resolve(true)
}

func (e *Engine) begin() (tea.Cmd, error) {
	e.phase = PhaseActive
	e.answer = Unanswered
	e.step = 1
	e.startedAt = e.cfg.Now()
	return tea.Batch(
		e.journalLifecycle(e.ctx, ActionStart),
		e.fetchQuestion(),
	), nil
}

// llmContext tags the session context for LLM request logging.
func (e *Engine) llmContext(purpose string) context.Context {
	return llm.WithSession(llm.WithPurpose(e.ctx, purpose), e.sessionID)
}

func (e *Engine) retryFetch(op string) (tea.Cmd, error) {
	if e.answer != Unanswered || e.question != nil {
		return nil, e.invalid(op, "question already live")
	}
	if e.loading {
		return nil, nil
	}
	return e.fetchQuestion(), nil
}

// SelectOption records the learner's pick for the live question.
func (e *Engine) SelectOption(i int) (tea.Cmd, error) {
	if e.phase != PhaseActive || e.answer != Unanswered || e.question == nil {
		return nil, e.invalid("select option", "")
	}
	if i < 0 || i >= len(e.question.Options) {
		return nil, e.invalid("select option", fmt.Sprintf("option %d out of range", i))
	}
	e.question.Selected = i
	return nil, nil
}

// SubmitAnswer grades the selected option. The evidence cycle is stopped
// before anything else so no frame is tagged with an answered step.
func (e *Engine) SubmitAnswer() (tea.Cmd, error) {
	if e.phase != PhaseActive || e.answer != Unanswered || e.question == nil {
		return nil, e.invalid("submit answer", "")
	}
	q := e.question
	if q.Selected < 0 {
		return nil, ErrNoSelection
	}

	e.mon.stop(evidenceCycle)

	q.Submitted = true
	e.answer = Submitted
	correct := q.IsCorrect(q.Selected)
	if correct {
		e.score++
	}
	e.lastCorrect = correct

	key := quiz.SubjectKey(e.mode, e.topic)
	delta := MasteryDelta(e.mode, correct)
	after, err := e.ledger.ApplyDelta(e.ctx, key, delta)
	if err != nil {
		e.log.Warn("mastery update failed", "session", e.sessionID, "subject", key, "err", err)
	}

	res := AnswerResult{
		StepIndex:    e.step,
		Prompt:       q.Prompt,
		Difficulty:   q.Difficulty,
		ChosenIndex:  q.Selected,
		CorrectIndex: q.CorrectIndex,
		Correct:      correct,
		MasteryAfter: after,
		TimeTaken:    e.cfg.Now().Sub(q.ServedAt),
	}
	e.answers = append(e.answers, res)

	rec := AnswerRecord{SessionID: e.sessionID, SubjectKey: key, AnswerResult: res, MasteryDelta: delta}
	return tea.Batch(
		e.journal(context.WithoutCancel(e.ctx), "answer", func(ctx context.Context, j Journal, user string) error {
			return j.RecordAnswer(ctx, user, rec)
		}),
		e.journalSnapshot(e.ctx),
	), nil
}

// NextStep advances past an answered question, or finishes after the last
// one. While active with no live question it retries the fetch.
func (e *Engine) NextStep() (tea.Cmd, error) {
	if e.phase == PhaseActive && e.answer == Unanswered {
		return e.retryFetch("next step")
	}
	if e.phase != PhaseActive || e.answer != Submitted {
		return nil, e.invalid("next step", "")
	}
	if e.step >= e.total {
		return e.finish(), nil
	}

	// Tear the old step down before the fetch is issued.
	e.mon.stop(evidenceCycle)
	e.question = nil
	e.clearExplanation()
	e.lastErr = nil
	e.step++
	e.answer = Unanswered

	return tea.Batch(
		e.journalLifecycle(e.ctx, ActionStep),
		e.fetchQuestion(),
	), nil
}

func (e *Engine) finish() tea.Cmd {
	if err := e.mon.Shutdown(); err != nil {
		e.log.Warn("camera release failed", "session", e.sessionID, "err", err)
	}
	e.phase = PhaseFinished
	e.step = e.total + 1
	e.question = nil
	e.clearExplanation()
	e.finishedAt = e.cfg.Now()

	report := Report{
		SessionID: e.sessionID,
		Kind:      ReportComplete,
		Mode:      e.mode,
		Topic:     e.topic,
		StepIndex: e.total,
		Score:     e.score,
		Total:     e.total,
		Timestamp: e.finishedAt,
	}
	// The closing records must land even if the session is reset right
	// after it finishes.
	durable := context.WithoutCancel(e.ctx)
	return tea.Batch(
		e.journalLifecycle(durable, ActionFinish),
		e.report(durable, report),
		e.journalSnapshot(durable),
	)
}

// Reset abandons whatever is running: timers and in-flight calls are
// cancelled, the camera is released and the engine returns to idle with a
// zeroed session. Results of calls issued before the reset are dropped.
func (e *Engine) Reset() (tea.Cmd, error) {
	var cmd tea.Cmd
	if e.phase == PhaseActive {
		cmd = e.journalLifecycle(context.WithoutCancel(e.ctx), ActionAbandon)
	}

	e.cancel()
	if err := e.mon.Reset(); err != nil {
		e.log.Warn("camera release failed", "session", e.sessionID, "err", err)
	}
	e.epoch++
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.ledger.Forget()
	e.gate.Clear()

	e.configured = false
	e.sessionID = ""
	e.phase = PhaseIdle
	e.answer = Unanswered
	e.mode = ""
	e.topic = ""
	e.total = 0
	e.step = 0
	e.score = 0
	e.question = nil
	e.loading = false
	e.lastErr = nil
	e.prior = nil
	e.clearExplanation()
	e.lastAttention = nil
	e.confusion = nil
	e.evidenceFrames = 0
	e.attentionSamples = 0
	e.lastCorrect = false
	e.answers = nil
	e.startedAt = time.Time{}
	e.finishedAt = time.Time{}
	return cmd, nil
}

// Close resets the engine; use it on program exit. The abandon journal
// command Reset returns is run inline since no program is left to run it.
func (e *Engine) Close() {
	cmd, err := e.Reset()
	if err != nil {
		e.log.Warn("reset on close failed", "err", err)
	}
	if cmd != nil {
		if msg, ok := cmd().(persistedMsg); ok && msg.err != nil {
			e.log.Warn("journal on close failed", "op", msg.op, "err", msg.err)
		}
	}
	e.cancel()
}

// RequestExplanation fetches an explanation for the answered question.
func (e *Engine) RequestExplanation() (tea.Cmd, error) {
	if e.phase != PhaseActive || e.answer != Submitted || e.question == nil {
		return nil, e.invalid("request explanation", "")
	}
	if e.explLoading || e.explanation != nil {
		return nil, nil
	}
	e.explLoading = true
	e.explErr = nil

	content := e.cfg.Content
	ctx := e.llmContext(llm.PurposeExplanation)
	epoch, step := e.epoch, e.step
	input := quiz.ExplainInput{Question: e.question.Question, ChosenIndex: e.question.Selected}
	return func() tea.Msg {
		if content == nil {
			return explanationReadyMsg{epoch: epoch, step: step, err: errors.New("no content service")}
		}
		exp, err := content.GenerateExplanation(ctx, input)
		return explanationReadyMsg{epoch: epoch, step: step, explanation: exp, err: err}
	}, nil
}

func (e *Engine) clearExplanation() {
	e.explanation = nil
	e.explLoading = false
	e.explErr = nil
}

// MonitoringActive reports whether the camera is being watched right now:
// a handle is held, consent is given and an unanswered question is live.
func (e *Engine) MonitoringActive() bool {
	return e.mon.HasCamera() &&
		e.gate.Granted() &&
		e.phase == PhaseActive &&
		e.question != nil &&
		!e.question.Submitted &&
		e.step >= 1 && e.step <= e.total
}

// Snapshot returns a copy of the state for rendering.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:          e.sessionID,
		Phase:              e.phase,
		Answer:             e.answer,
		Mode:               e.mode,
		Topic:              e.topic,
		StepIndex:          e.step,
		TotalQuestions:     e.total,
		Score:              e.score,
		ConsentGranted:     e.gate.Granted(),
		MonitoringActive:   e.MonitoringActive(),
		CameraErr:          e.mon.CameraErr(),
		LastAttention:      e.lastAttention,
		Loading:            e.loading,
		Err:                e.lastErr,
		Explanation:        e.explanation,
		ExplanationLoading: e.explLoading,
		ExplanationErr:     e.explErr,
		EvidenceFrames:     e.evidenceFrames,
		AttentionSamples:   e.attentionSamples,
		LastCorrect:        e.lastCorrect,
		Answers:            append([]AnswerResult(nil), e.answers...),
		StartedAt:          e.startedAt,
		FinishedAt:         e.finishedAt,
	}
	if e.question != nil {
		q := *e.question
		s.Question = &q
	}
	if e.confusion != nil {
		v := *e.confusion
		s.ConfusionIndex = &v
	}
	return s
}

// Summary builds the end-of-session summary.
func (e *Engine) Summary() Summary {
	return BuildSummary(e.Snapshot(), e.ledger.Changes())
}

// Update applies a message produced by one of the engine's commands.
// Messages from other sources are ignored.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tickMsg:
		return e.handleTick(msg)
	case questionReadyMsg:
		return e.handleQuestionReady(msg)
	case explanationReadyMsg:
		e.handleExplanationReady(msg)
	case attentionReadyMsg:
		e.handleAttentionReady(msg)
	case evidenceStoredMsg:
		e.handleEvidenceStored(msg)
	case persistedMsg:
		if msg.err != nil {
			e.log.Warn("session journal write failed", "op", msg.op, "err", msg.err)
		}
	}
	return nil
}

func (e *Engine) fetchQuestion() tea.Cmd {
	key := quiz.SubjectKey(e.mode, e.topic)
	m, err := e.ledger.Score(e.ctx, key)
	if err != nil {
		e.log.Warn("mastery lookup failed", "subject", key, "err", err)
		m = mastery.MinScore
	}
	input := quiz.GenerateInput{
		Topic:          e.topic,
		Mode:           e.mode,
		Difficulty:     DifficultyFor(e.mode, m),
		PriorQuestions: append([]string(nil), e.prior...),
	}

	e.fetchSeq++
	e.loading = true
	e.lastErr = nil

	content := e.cfg.Content
	attempts := e.cfg.FetchAttempts
	ctx := e.llmContext(llm.PurposeQuestion)
	epoch, seq := e.epoch, e.fetchSeq
	return func() tea.Msg {
		if content == nil {
			return questionReadyMsg{epoch: epoch, seq: seq, err: errors.New("no content service")}
		}
		var q *quiz.Question
		var err error
		for attempt := 0; attempt < attempts; attempt++ {
			q, err = content.GenerateQuestion(ctx, input)
			if err == nil || !shouldRetryFetch(ctx, err) {
				break
			}
		}
		return questionReadyMsg{epoch: epoch, seq: seq, question: q, err: err}
	}
}

func shouldRetryFetch(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) || llm.Permanent(err) {
		return false
	}
	var valErr *quiz.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Retryable
	}
	return true
}

func (e *Engine) handleQuestionReady(msg questionReadyMsg) tea.Cmd {
	if msg.epoch != e.epoch || msg.seq != e.fetchSeq || e.phase != PhaseActive {
		return nil
	}
	e.loading = false
	if msg.err == nil && msg.question == nil {
		msg.err = errors.New("empty question")
	}
	if msg.err != nil {
		e.lastErr = classifyFetch("generate question", msg.err)
		e.log.Warn("question fetch failed", "session", e.sessionID, "step", e.step, "err", msg.err)
		return nil
	}

	e.question = &LiveQuestion{Question: msg.question, Selected: -1, ServedAt: e.cfg.Now()}
	e.prior = append(e.prior, msg.question.Prompt)
	return tea.Batch(e.activateMonitoring(), e.journalSnapshot(e.ctx))
}

// activateMonitoring acquires the camera on first use and starts the
// cycles for the question that just went live. The evidence cycle starts
// fresh for every question; the attention cycle starts only once.
func (e *Engine) activateMonitoring() tea.Cmd {
	if !e.gate.Granted() || e.question == nil || e.question.Submitted {
		return nil
	}
	hadErr := e.mon.CameraErr() != nil
	if !e.mon.ensureCamera(e.ctx) {
		if err := e.mon.CameraErr(); err != nil && !hadErr {
			e.cfg.Metrics.CameraFailure()
			e.log.Warn("camera unavailable, continuing unmonitored", "session", e.sessionID, "err", err)
		}
		return nil
	}

	cmds := []tea.Cmd{e.mon.start(e.ctx, evidenceCycle, e.cfg.Timing.Evidence)}
	if e.cfg.Analyzer != nil && !e.mon.attention.running() {
		cmds = append(cmds, e.mon.start(e.ctx, attentionCycle, e.cfg.Timing.AnalysisInterval(e.mode)))
	}
	return tea.Batch(cmds...)
}

func (e *Engine) handleTick(msg tickMsg) tea.Cmd {
	if !e.mon.valid(msg) {
		return nil
	}
	m := e.cfg.Metrics
	switch msg.kind {
	case evidenceCycle:
		if !e.MonitoringActive() {
			m.EvidenceTick(metrics.Inactive)
			e.mon.stop(evidenceCycle)
			return nil
		}
		next := e.mon.rearm(evidenceCycle)
		frame := e.mon.capture()
		if frame == nil {
			m.EvidenceTick(metrics.NoFrame)
			return next
		}
		m.EvidenceTick(metrics.Captured)
		return tea.Batch(next, e.storeEvidence(*frame))

	case attentionCycle:
		next := e.mon.rearm(attentionCycle)
		if !e.MonitoringActive() {
			m.AttentionTick(string(e.mode), metrics.Inactive)
			return next
		}
		frame := e.mon.capture()
		if frame == nil {
			m.AttentionTick(string(e.mode), metrics.NoFrame)
			return next
		}
		m.AttentionTick(string(e.mode), metrics.Captured)
		return tea.Batch(next, e.analyze(*frame))
	}
	return nil
}

func (e *Engine) storeEvidence(frame camera.Frame) tea.Cmd {
	p := e.cfg.Persistence
	if p == nil {
		return nil
	}
	ef := EvidenceFrame{
		SessionID:  e.sessionID,
		Mode:       e.mode,
		StepIndex:  e.step,
		MIMEType:   frame.MIMEType,
		Data:       frame.Data,
		CapturedAt: frame.CapturedAt,
	}
	ctx, user, epoch := e.ctx, e.userID(), e.epoch
	return func() tea.Msg {
		err := p.StoreEvidenceFrame(ctx, user, ef)
		return evidenceStoredMsg{epoch: epoch, step: ef.StepIndex, err: err}
	}
}

func (e *Engine) handleEvidenceStored(msg evidenceStoredMsg) {
	if msg.epoch != e.epoch {
		return
	}
	if msg.err != nil {
		e.log.Warn("evidence frame not stored", "session", e.sessionID, "step", msg.step, "err", msg.err)
		return
	}
	e.evidenceFrames++
}

func (e *Engine) analyze(frame camera.Frame) tea.Cmd {
	analyzer, p := e.cfg.Analyzer, e.cfg.Persistence
	fc := attention.FrameContext{Mode: string(e.mode), Topic: e.topic, StepIndex: e.step}
	base := Report{
		SessionID: e.sessionID,
		Kind:      ReportAttention,
		Mode:      e.mode,
		Topic:     e.topic,
		StepIndex: e.step,
		Score:     e.score,
		Total:     e.total,
	}
	ctx, user, epoch, step := e.ctx, e.userID(), e.epoch, e.step
	llmCtx := llm.WithSession(ctx, e.sessionID)
	return func() tea.Msg {
		sample, err := analyzer.AnalyzeFrame(llmCtx, frame, fc)
		if err != nil {
			return attentionReadyMsg{epoch: epoch, step: step, err: err}
		}
		msg := attentionReadyMsg{epoch: epoch, step: step, sample: sample}
		if p != nil && ctx.Err() == nil {
			base.Sample = sample
			base.Timestamp = sample.CapturedAt
			msg.reportErr = p.AppendSessionReport(ctx, user, base)
		}
		return msg
	}
}

func (e *Engine) handleAttentionReady(msg attentionReadyMsg) {
	if msg.epoch != e.epoch || e.phase != PhaseActive {
		return
	}
	if msg.err != nil {
		e.log.Warn("attention analysis failed", "session", e.sessionID, "step", msg.step,
			"err", classifyFetch("analyze frame", msg.err))
		return
	}
	if msg.reportErr != nil {
		e.log.Warn("attention report not stored", "session", e.sessionID, "err", msg.reportErr)
	}
	e.lastAttention = msg.sample
	e.attentionSamples++
	// Exam samples are for proctoring only and never shown to the learner.
	if e.mode != quiz.ModeExam {
		v := msg.sample.ConfusionScore
		e.confusion = &v
	}
}

func (e *Engine) handleExplanationReady(msg explanationReadyMsg) {
	if msg.epoch != e.epoch || msg.step != e.step || e.phase != PhaseActive || e.answer != Submitted {
		return
	}
	e.explLoading = false
	if msg.err == nil && msg.explanation == nil {
		msg.err = errors.New("empty explanation")
	}
	if msg.err != nil {
		e.explErr = classifyFetch("generate explanation", msg.err)
		return
	}
	e.explanation = msg.explanation
}

func (e *Engine) report(ctx context.Context, r Report) tea.Cmd {
	p := e.cfg.Persistence
	if p == nil {
		return nil
	}
	user := e.userID()
	return func() tea.Msg {
		return persistedMsg{op: "report " + string(r.Kind), err: p.AppendSessionReport(ctx, user, r)}
	}
}

func (e *Engine) journal(ctx context.Context, op string, fn func(ctx context.Context, j Journal, user string) error) tea.Cmd {
	j := e.cfg.Journal
	if j == nil {
		return nil
	}
	user := e.userID()
	return func() tea.Msg {
		return persistedMsg{op: op, err: fn(ctx, j, user)}
	}
}

func (e *Engine) journalLifecycle(ctx context.Context, action string) tea.Cmd {
	j := e.cfg.Journal
	if j == nil {
		return nil
	}
	ev := LifecycleEvent{
		SessionID:      e.sessionID,
		Action:         action,
		Mode:           e.mode,
		Topic:          e.topic,
		TotalQuestions: e.total,
		StepIndex:      e.step,
		Score:          e.score,
		ConsentGranted: e.gate.Granted(),
	}
	user := e.userID()
	return func() tea.Msg {
		return persistedMsg{op: "lifecycle " + action, err: j.RecordLifecycle(ctx, user, ev)}
	}
}

func (e *Engine) journalSnapshot(ctx context.Context) tea.Cmd {
	snap := e.Snapshot()
	return e.journal(ctx, "snapshot", func(ctx context.Context, j Journal, user string) error {
		return j.SaveSnapshot(ctx, user, snap)
	})
}
