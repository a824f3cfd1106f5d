package workflow

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/questionnaire"
	"github.com/sahasand/talia-colors-website/internal/recommend"
)

var (
	// ErrInvalidTransition is returned when an intent is not valid in the current stage.
	// State is left unchanged.
	ErrInvalidTransition = errors.New("workflow: invalid transition")
	// ErrSessionClosed is returned for intents on a torn-down session.
	ErrSessionClosed = errors.New("workflow: session closed")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("workflow: session not found")
)

// Stage is one of the four workflow phases.
type Stage string

const (
	StageUpload        Stage = "upload"
	StageQuestionnaire Stage = "questionnaire"
	StageProcessing    Stage = "processing"
	StageResults       Stage = "results"
)

// Stages lists the phases in order.
var Stages = []Stage{StageUpload, StageQuestionnaire, StageProcessing, StageResults}

// Index returns the zero-based position of the stage.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Releaser frees a photo reference. Release must tolerate unknown or already released ids.
type Releaser interface {
	Release(id string) bool
}

type noopReleaser struct{}

func (noopReleaser) Release(string) bool { return false }

// state is the per-stage payload; exactly one variant is active.
type state interface {
	stage() Stage
}

type uploadState struct {
	// retained is the photo kept when the visitor stepped back from the first question.
	retained *intake.Photo
}

type questionnaireState struct {
	photo    intake.Photo
	progress *questionnaire.Progress
}

type processingState struct {
	photo     intake.Photo
	answers   recommend.Answers
	startedAt time.Time
}

type resultsState struct {
	photo   intake.Photo
	answers recommend.Answers
	recs    []recommend.ColorRecommendation
}

func (uploadState) stage() Stage        { return StageUpload }
func (questionnaireState) stage() Stage { return StageQuestionnaire }
func (processingState) stage() Stage    { return StageProcessing }
func (resultsState) stage() Stage       { return StageResults }

// Session is one visitor's run through the color picker. All mutation goes through the
// stage-gated methods; each call holds the session lock for its whole transition.
type Session struct {
	mu       sync.Mutex
	id       string
	st       state
	releaser Releaser
	sim      Simulation
	now      func() time.Time
	lastSeen time.Time
	closed   bool
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithReleaser sets the photo releaser.
func WithReleaser(r Releaser) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.releaser = r
		}
	}
}

// WithSimulation sets the processing choreography.
func WithSimulation(sim Simulation) SessionOption {
	return func(s *Session) {
		s.sim = sim
	}
}

// WithSessionClock sets the time source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession starts a session in the upload stage.
func NewSession(id string, opts ...SessionOption) *Session {
	s := &Session{
		id:       id,
		st:       uploadState{},
		releaser: noopReleaser{},
		sim:      DefaultSimulation(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSeen = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Stage returns the active stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.stage()
}

// LastSeen returns the time of the latest intent.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) begin() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.lastSeen = s.now()
	return nil
}

func invalid(from Stage, intent string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, intent, from)
}

// SubmitPhoto stores photo and advances to the questionnaire. A photo retained from an
// earlier visit to the questionnaire is released when replaced.
func (s *Session) SubmitPhoto(photo intake.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	up, ok := s.st.(uploadState)
	if !ok {
		return invalid(s.st.stage(), "submit photo")
	}
	if up.retained != nil && up.retained.ID != photo.ID {
		s.releaser.Release(up.retained.ID)
	}
	s.st = questionnaireState{photo: photo, progress: questionnaire.New()}
	return nil
}

// Select records an answer for the current question.
func (s *Session) Select(index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	q, ok := s.st.(questionnaireState)
	if !ok {
		return invalid(s.st.stage(), "select option")
	}
	return q.progress.Select(index, value)
}

// SelectAndAdvance records an answer and moves on in one step.
func (s *Session) SelectAndAdvance(index int, value string) (questionnaire.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return questionnaire.Stayed, err
	}
	q, ok := s.st.(questionnaireState)
	if !ok {
		return questionnaire.Stayed, invalid(s.st.stage(), "select option")
	}
	if err := q.progress.Select(index, value); err != nil {
		return questionnaire.Stayed, err
	}
	return s.nextLocked(q)
}

// Next advances the questionnaire; on the last question it submits the answers.
func (s *Session) Next() (questionnaire.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return questionnaire.Stayed, err
	}
	q, ok := s.st.(questionnaireState)
	if !ok {
		return questionnaire.Stayed, invalid(s.st.stage(), "next")
	}
	return s.nextLocked(q)
}

func (s *Session) nextLocked(q questionnaireState) (questionnaire.Outcome, error) {
	out, err := q.progress.Next()
	if err != nil || out != questionnaire.Completed {
		return out, err
	}
	if err := s.submitAnswersLocked(q.progress.Answers()); err != nil {
		return questionnaire.Stayed, err
	}
	return out, nil
}

// Previous steps back in the questionnaire, or returns to upload from the first question
// keeping the photo reference alive.
func (s *Session) Previous() (questionnaire.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return questionnaire.Stayed, err
	}
	q, ok := s.st.(questionnaireState)
	if !ok {
		return questionnaire.Stayed, invalid(s.st.stage(), "previous")
	}
	out := q.progress.Previous()
	if out == questionnaire.BackToUpload {
		photo := q.photo
		s.st = uploadState{retained: &photo}
	}
	return out, nil
}

// SubmitAnswers moves a completed questionnaire into processing.
func (s *Session) SubmitAnswers(answers recommend.Answers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	return s.submitAnswersLocked(answers)
}

func (s *Session) submitAnswersLocked(answers recommend.Answers) error {
	q, ok := s.st.(questionnaireState)
	if !ok {
		return invalid(s.st.stage(), "submit answers")
	}
	if !answers.Complete() {
		return questionnaire.ErrIncomplete
	}
	s.st = processingState{photo: q.photo, answers: answers, startedAt: s.now()}
	return nil
}

// CompleteProcessing stores the ranked recommendations and shows the results. An empty
// list yields the no-match results view.
func (s *Session) CompleteProcessing(recs []recommend.ColorRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	return s.completeLocked(recs)
}

func (s *Session) completeLocked(recs []recommend.ColorRecommendation) error {
	p, ok := s.st.(processingState)
	if !ok {
		return invalid(s.st.stage(), "complete processing")
	}
	s.st = resultsState{
		photo:   p.photo,
		answers: p.answers,
		recs:    append([]recommend.ColorRecommendation(nil), recs...),
	}
	return nil
}

// FinishProcessing completes processing once the simulated analysis has run its course.
// compute runs at most once per session, under the session lock. It reports whether the
// session moved to results.
func (s *Session) FinishProcessing(compute func(recommend.Answers) []recommend.ColorRecommendation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return false, err
	}
	p, ok := s.st.(processingState)
	if !ok {
		return false, invalid(s.st.stage(), "finish processing")
	}
	if !s.sim.At(s.now().Sub(p.startedAt)).Done {
		return false, nil
	}
	return true, s.completeLocked(compute(p.answers))
}

// Reset releases the photo, discards answers and results, and returns to upload.
// Any in-flight processing is abandoned.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastSeen = s.now()
	s.releaseLocked()
	s.st = uploadState{}
}

// Close tears the session down, releasing its photo. Further intents fail.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.releaseLocked()
	s.st = uploadState{}
	s.closed = true
}

func (s *Session) releaseLocked() {
	if photo := photoOf(s.st); photo != nil {
		s.releaser.Release(photo.ID)
	}
}

func photoOf(st state) *intake.Photo {
	switch v := st.(type) {
	case uploadState:
		return v.retained
	case questionnaireState:
		return &v.photo
	case processingState:
		return &v.photo
	case resultsState:
		return &v.photo
	}
	return nil
}
