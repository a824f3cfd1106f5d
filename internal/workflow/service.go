package workflow

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/observability"
	"github.com/sahasand/talia-colors-website/internal/questionnaire"
	"github.com/sahasand/talia-colors-website/internal/recommend"
)

// PhotoStore allocates and frees photo references.
type PhotoStore interface {
	Acquire(f intake.File) (intake.Photo, error)
	Release(id string) bool
}

// Recommender ranks presets against answers.
type Recommender interface {
	Recommend(answers recommend.Answers, presets []recommend.ColorPreset) []recommend.ColorRecommendation
}

// ServiceDeps bundles the collaborators of Service.
type ServiceDeps struct {
	Sessions   *Store
	Photos     PhotoStore
	Engine     Recommender
	Catalog    recommend.Catalog
	Translator recommend.Translator
	Logger     *zap.Logger
}

// Service runs visitor intents against their sessions.
type Service struct {
	sessions   *Store
	photos     PhotoStore
	engine     Recommender
	catalog    recommend.Catalog
	translator recommend.Translator
	logger     *zap.Logger
}

// NewService validates deps and returns a Service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Sessions == nil {
		return nil, errors.New("workflow service: session store is required")
	}
	if deps.Photos == nil {
		return nil, errors.New("workflow service: photo store is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("workflow service: recommender is required")
	}
	if deps.Translator == nil {
		return nil, errors.New("workflow service: translator is required")
	}
	catalog := deps.Catalog
	if catalog.Len() == 0 {
		catalog = recommend.DefaultCatalog()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions:   deps.Sessions,
		photos:     deps.Photos,
		engine:     deps.Engine,
		catalog:    catalog,
		translator: deps.Translator,
		logger:     logger,
	}, nil
}

// Session returns the session for id, starting a new one when it is unknown.
func (s *Service) Session(ctx context.Context, id string) (*Session, bool) {
	sess, created := s.sessions.GetOrCreate(id)
	if created {
		s.log(ctx).Debug("session started", zap.String("session_id", sess.ID()))
	}
	return sess, created
}

// View snapshots the session for id, or returns ErrSessionNotFound.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	return sess.View(), nil
}

// UploadPhoto validates the file, allocates a reference and moves the session into the
// questionnaire. The session stays in upload when validation fails.
func (s *Service) UploadPhoto(ctx context.Context, id string, f intake.File) (View, error) {
	ctx, span := s.start(ctx, "workflow.UploadPhoto", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, s.fail(span, err)
	}
	if sess.Stage() != StageUpload {
		return sess.View(), s.fail(span, invalid(sess.Stage(), "submit photo"))
	}

	photo, err := s.photos.Acquire(f)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			observability.PhotoUploads.WithLabelValues(string(verr.Code)).Inc()
			s.log(ctx).Info("photo rejected", zap.String("session_id", id), zap.String("code", string(verr.Code)), zap.Int64("size", verr.Size))
		}
		return sess.View(), s.fail(span, err)
	}
	if err := sess.SubmitPhoto(photo); err != nil {
		s.photos.Release(photo.ID)
		return sess.View(), s.fail(span, err)
	}
	observability.PhotoUploads.WithLabelValues("accepted").Inc()
	s.transitioned(ctx, id, StageQuestionnaire)
	return sess.View(), nil
}

// Answer records value for the question at index. With advance set the questionnaire moves
// on immediately, the way touch clients behave.
func (s *Service) Answer(ctx context.Context, id string, index int, value string, advance bool) (View, error) {
	ctx, span := s.start(ctx, "workflow.Answer", id)
	defer span.End()
	span.SetAttributes(attribute.Int("question.index", index), attribute.Bool("question.advance", advance))

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, s.fail(span, err)
	}
	if !advance {
		if err := sess.Select(index, value); err != nil {
			return sess.View(), s.fail(span, err)
		}
		return sess.View(), nil
	}
	out, err := sess.SelectAndAdvance(index, value)
	if err != nil {
		return sess.View(), s.fail(span, err)
	}
	s.afterNavigation(ctx, id, out)
	return sess.View(), nil
}

// Next advances the questionnaire; the last question submits the answers.
func (s *Service) Next(ctx context.Context, id string) (View, error) {
	ctx, span := s.start(ctx, "workflow.Next", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, s.fail(span, err)
	}
	out, err := sess.Next()
	if err != nil {
		return sess.View(), s.fail(span, err)
	}
	s.afterNavigation(ctx, id, out)
	return sess.View(), nil
}

// Previous steps back, returning to upload from the first question.
func (s *Service) Previous(ctx context.Context, id string) (View, error) {
	ctx, span := s.start(ctx, "workflow.Previous", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, s.fail(span, err)
	}
	out, err := sess.Previous()
	if err != nil {
		return sess.View(), s.fail(span, err)
	}
	s.afterNavigation(ctx, id, out)
	return sess.View(), nil
}

// Poll reports processing status and, once the analysis has run its course, ranks the
// localized presets and shows the results. Outside processing it just returns the view.
func (s *Service) Poll(ctx context.Context, id, lang string) (View, error) {
	ctx, span := s.start(ctx, "workflow.Poll", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, s.fail(span, err)
	}
	if sess.Stage() != StageProcessing {
		return sess.View(), nil
	}

	var count int
	done, err := sess.FinishProcessing(func(answers recommend.Answers) []recommend.ColorRecommendation {
		recs := s.engine.Recommend(answers, s.catalog.Localize(s.translator, lang))
		count = len(recs)
		return recs
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// a concurrent poll or reset won the race
			return sess.View(), nil
		}
		return sess.View(), s.fail(span, err)
	}
	if done {
		outcome := "matched"
		if count == 0 {
			outcome = "no_match"
		}
		observability.Recommendations.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.Int("recommendations.count", count))
		s.log(ctx).Info("recommendations ready", zap.String("session_id", id), zap.String("lang", lang), zap.Int("count", count))
		s.transitioned(ctx, id, StageResults)
	}
	return sess.View(), nil
}

// Reset discards photo, answers and results and returns to upload.
func (s *Service) Reset(ctx context.Context, id string) (View, error) {
	ctx, span := s.start(ctx, "workflow.Reset", id)
	defer span.End()

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, s.fail(span, err)
	}
	from := sess.Stage()
	sess.Reset()
	if from != StageUpload {
		s.transitioned(ctx, id, StageUpload)
	}
	return sess.View(), nil
}

func (s *Service) lookup(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) afterNavigation(ctx context.Context, id string, out questionnaire.Outcome) {
	switch out {
	case questionnaire.Completed:
		s.transitioned(ctx, id, StageProcessing)
	case questionnaire.BackToUpload:
		s.transitioned(ctx, id, StageUpload)
	}
}

func (s *Service) transitioned(ctx context.Context, id string, to Stage) {
	observability.StageTransitions.WithLabelValues(string(to)).Inc()
	s.log(ctx).Debug("stage changed", zap.String("session_id", id), zap.String("stage", string(to)))
}

func (s *Service) start(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return observability.Tracer.Start(ctx, name, trace.WithAttributes(attribute.String("session.id", id)))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return observability.FromContextOr(ctx, s.logger)
}
