package workflow

import (
	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/questionnaire"
	"github.com/sahasand/talia-colors-website/internal/recommend"
)

// View is a read-only snapshot of a session for rendering.
type View struct {
	SessionID string
	Stage     Stage
	// Photo is set in every stage after upload, and in upload when a photo was retained.
	Photo *intake.Photo

	Question      questionnaire.Question
	QuestionIndex int
	QuestionCount int
	Selected      string
	IsLast        bool
	Percent       int
	Answers       recommend.Answers

	Processing Status

	Recommendations []recommend.ColorRecommendation
	NoMatch         bool
}

// Best returns the top recommendation in the results stage.
func (v View) Best() (recommend.ColorRecommendation, bool) {
	return recommend.Best(v.Recommendations)
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		SessionID:     s.id,
		Stage:         s.st.stage(),
		QuestionCount: questionnaire.Count(),
	}
	if p := photoOf(s.st); p != nil {
		photo := *p
		v.Photo = &photo
	}
	switch st := s.st.(type) {
	case questionnaireState:
		v.Question = st.progress.Current()
		v.QuestionIndex = st.progress.Index()
		v.Selected = st.progress.Selected()
		v.IsLast = st.progress.IsLast()
		v.Percent = st.progress.Percent()
		v.Answers = st.progress.Answers()
	case processingState:
		v.Answers = st.answers
		v.Processing = s.sim.At(s.now().Sub(st.startedAt))
	case resultsState:
		v.Answers = st.answers
		v.Recommendations = append([]recommend.ColorRecommendation(nil), st.recs...)
		v.NoMatch = len(st.recs) == 0
		v.Processing = Status{Percent: 100, Done: true}
	}
	return v
}
