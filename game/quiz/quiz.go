// Package quiz implements the multiple-choice quiz: one question at a time,
// each answer locked in and scored, then a short pause before the next
// question or the final result.
package quiz

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/gift-journey/game/engine"
)

// Unanswered marks a question with no locked selection
const Unanswered = -1

// Question is a single multiple-choice question
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// Tier classifies a final score
type Tier string

const (
	TierPerfect       Tier = "perfect"
	TierGood          Tier = "good"
	TierNeedsMoreTime Tier = "needs_more_time"
)

// Classify grades a final score. Three fifths or better is good.
func Classify(score, total int) Tier {
	if total <= 0 {
		return TierNeedsMoreTime
	}
	if score >= total {
		return TierPerfect
	}
	if score*5 >= total*3 {
		return TierGood
	}
	return TierNeedsMoreTime
}

// Phase is where the quiz is in its question cycle
type Phase string

const (
	PhaseAsking    Phase = "asking"
	PhaseRevealing Phase = "revealing"
	PhaseComplete  Phase = "complete"
)

// State is a read-only snapshot of a quiz instance
type State struct {
	InstanceID    string   `json:"instance_id"`
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	Score         int      `json:"score"`
	Phase         Phase    `json:"phase"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	Selected      int      `json:"selected"`
	CorrectOption *int     `json:"correct_option,omitempty"`
	Selections    []int    `json:"selections"`
	Tier          Tier     `json:"tier,omitempty"`
}

// Option configures an Engine
type Option func(*Engine)

// WithScheduler sets the clock used to advance after an answer
func WithScheduler(s engine.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithAnswerDelay sets how long the result of an answer is shown
func WithAnswerDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithOnComplete registers the completion callback
func WithOnComplete(fn func()) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// WithOnChange registers a callback fired after every delayed advance
func WithOnChange(fn func()) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine is a quiz instance. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	instanceID string
	questions  []Question
	index      int
	score      int
	selections []int
	timer      engine.Timer
	gen        uint64
	closed     bool
	done       engine.Once

	sched      engine.Scheduler
	delay      time.Duration
	onComplete func()
	onChange   func()
}

// Validate checks a question list
func Validate(questions []Question) error {
	if len(questions) == 0 {
		return engine.ConfigErrorf("quiz: at least one question is required")
	}
	if len(questions) > engine.MaxQuestions {
		return engine.ConfigErrorf("quiz: at most %d questions allowed, got %d", engine.MaxQuestions, len(questions))
	}
	for i, q := range questions {
		if q.Prompt == "" {
			return engine.ConfigErrorf("quiz: question %d has an empty prompt", i+1)
		}
		if len(q.Options) < engine.MinOptions {
			return engine.ConfigErrorf("quiz: question %d needs at least %d options, got %d", i+1, engine.MinOptions, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return engine.ConfigErrorf("quiz: question %d correct index %d out of range [0, %d)", i+1, q.Correct, len(q.Options))
		}
	}
	return nil
}

// New validates the questions and starts at the first one
func New(questions []Question, opts ...Option) (*Engine, error) {
	if err := Validate(questions); err != nil {
		return nil, err
	}

	e := &Engine{
		questions: cloneQuestions(questions),
		sched:     engine.RealScheduler{},
		delay:     engine.DefaultAnswerDelay,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
	return e, nil
}

func cloneQuestions(in []Question) []Question {
	out := make([]Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

func (e *Engine) reset() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.instanceID = uuid.NewString()
	e.index = 0
	e.score = 0
	e.selections = make([]int, len(e.questions))
	for i := range e.selections {
		e.selections[i] = Unanswered
	}
	e.done.Reset()
}

// Restart begins the quiz again from the first question
func (e *Engine) Restart() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	e.reset()
	return true
}

// Answer locks in an option for the current question. It reports false when
// the question is already answered, the quiz is complete, or the option is out
// of range.
func (e *Engine) Answer(option int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.done.Fired() || e.selections[e.index] != Unanswered {
		return false
	}
	q := e.questions[e.index]
	if option < 0 || option >= len(q.Options) {
		return false
	}

	e.selections[e.index] = option
	if option == q.Correct {
		e.score++
	}

	gen, idx := e.gen, e.index
	e.timer = e.sched.AfterFunc(e.delay, func() { e.advance(gen, idx) })
	return true
}

func (e *Engine) advance(gen uint64, idx int) {
	e.mu.Lock()
	if e.closed || gen != e.gen || idx != e.index {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	completed := false
	if idx == len(e.questions)-1 {
		completed = e.done.Arm()
	} else {
		e.index++
	}
	onComplete, onChange := e.onComplete, e.onChange
	e.mu.Unlock()

	if completed {
		engine.Notify(onComplete)
	}
	engine.Notify(onChange)
}

// Close tears the instance down. A pending advance is cancelled.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.questions[e.index]
	state := State{
		InstanceID: e.instanceID,
		Index:      e.index,
		Total:      len(e.questions),
		Score:      e.score,
		Phase:      PhaseAsking,
		Prompt:     q.Prompt,
		Options:    append([]string(nil), q.Options...),
		Selected:   e.selections[e.index],
		Selections: append([]int(nil), e.selections...),
	}
	if state.Selected != Unanswered {
		correct := q.Correct
		state.CorrectOption = &correct
		state.Phase = PhaseRevealing
	}
	if e.done.Fired() {
		state.Phase = PhaseComplete
		state.Tier = Classify(e.score, len(e.questions))
	}
	return state
}

// Result returns the final score and tier once the quiz is complete
func (e *Engine) Result() (score int, tier Tier, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.done.Fired() {
		return 0, "", false
	}
	return e.score, Classify(e.score, len(e.questions)), true
}

// Score returns the running score
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Selections returns the locked option per question, Unanswered where none
func (e *Engine) Selections() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.selections...)
}

// IsComplete reports whether the last question has been resolved
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done.Fired()
}
