package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/intake"
	mw "github.com/sahasand/talia-colors-website/internal/middleware"
	"github.com/sahasand/talia-colors-website/internal/observability"
	"github.com/sahasand/talia-colors-website/internal/questionnaire"
	"github.com/sahasand/talia-colors-website/internal/recommend"
	"github.com/sahasand/talia-colors-website/internal/seo"
	"github.com/sahasand/talia-colors-website/internal/workflow"
)

const (
	// uploadSlack leaves room for multipart framing around a maximum size image.
	uploadSlack  = 1 << 20
	multipartMem = 8 << 20
	pickerAnchor = "#ai-color-picker"
	pickerFrag   = "frag_picker"
	photoField   = "photo"
)

// pickerSession returns the color picker session id for the visitor, starting one when the
// cookie points nowhere. created reports a fresh session.
func (s *server) pickerSession(r *http.Request) (string, bool) {
	sd := mw.GetSession(r)
	sess, created := s.picker.Session(r.Context(), sd.PickerID)
	sd.SetPickerID(sess.ID())
	return sess.ID(), created
}

// expired answers an intent that arrived for a session the server no longer knows.
func (s *server) expired(w http.ResponseWriter, r *http.Request, id string) {
	v, err := s.picker.View(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.renderPicker(w, r, v, "errors.sessionExpired", http.StatusOK)
}

// ColorPickerFrag renders the current stage.
func (s *server) ColorPickerFrag(w http.ResponseWriter, r *http.Request) {
	id, _ := s.pickerSession(r)
	v, err := s.picker.View(r.Context(), id)
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	s.renderPicker(w, r, v, "", http.StatusOK)
}

// PhotoUploadHandler accepts the multipart photo and moves on to the questionnaire.
func (s *server) PhotoUploadHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := s.pickerSession(r)
	ctx := r.Context()

	limit := intake.MaxSize + uploadSlack
	tooLarge := (&intake.ValidationError{Code: intake.CodeTooLarge}).MessageKey()
	if r.ContentLength > limit {
		observability.PhotoUploads.WithLabelValues(string(intake.CodeTooLarge)).Inc()
		s.rejectPhoto(w, r, id, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMem); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			observability.PhotoUploads.WithLabelValues(string(intake.CodeTooLarge)).Inc()
			s.rejectPhoto(w, r, id, tooLarge)
			return
		}
		s.rejectPhoto(w, r, id, "photoUpload.errors.missing")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, hdr, err := r.FormFile(photoField)
	if err != nil {
		s.rejectPhoto(w, r, id, "photoUpload.errors.missing")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, intake.MaxSize+1))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	v, err := s.picker.UploadPhoto(ctx, id, intake.File{
		Name:     hdr.Filename,
		MIMEType: hdr.Header.Get("Content-Type"),
		Size:     hdr.Size,
		Data:     data,
	})
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	s.afterIntent(w, r, v)
}

func (s *server) rejectPhoto(w http.ResponseWriter, r *http.Request, id, key string) {
	v, err := s.picker.View(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.renderPicker(w, r, v, key, http.StatusUnprocessableEntity)
}

// AnswerHandler records a choice. auto=1 advances right away, which touch devices request.
func (s *server) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	id, created := s.pickerSession(r)
	if created {
		s.expired(w, r, id)
		return
	}
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "bad_request", s.bundle.T(mw.Lang(r), "errors.generic"))
		return
	}
	index, err := strconv.Atoi(r.PostForm.Get("index"))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "bad_request", s.bundle.T(mw.Lang(r), "errors.generic"))
		return
	}
	advance := r.PostForm.Get("auto") == "1"
	v, err := s.picker.Answer(r.Context(), id, index, r.PostForm.Get("value"), advance)
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	s.afterIntent(w, r, v)
}

// NextHandler moves to the next question or submits the answers.
func (s *server) NextHandler(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.picker.Next)
}

// PreviousHandler steps back, returning to the photo from the first question.
func (s *server) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.picker.Previous)
}

func (s *server) navigate(w http.ResponseWriter, r *http.Request, intent func(context.Context, string) (workflow.View, error)) {
	id, created := s.pickerSession(r)
	if created {
		s.expired(w, r, id)
		return
	}
	v, err := intent(r.Context(), id)
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	s.afterIntent(w, r, v)
}

// ProcessingPollFrag is polled while the analysis runs and swaps in the results when done.
func (s *server) ProcessingPollFrag(w http.ResponseWriter, r *http.Request) {
	id, _ := s.pickerSession(r)
	v, err := s.picker.Poll(r.Context(), id, mw.Lang(r))
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	if v.Stage == workflow.StageResults {
		mw.HXTrigger(w, "picker:results")
	}
	s.renderPicker(w, r, v, "", http.StatusOK)
}

// ResetHandler discards the run and returns to the photo step.
func (s *server) ResetHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := s.pickerSession(r)
	v, err := s.picker.Reset(r.Context(), id)
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	s.afterIntent(w, r, v)
}

// BookHandler sends the visitor to WhatsApp with the best match, or with a plain
// appointment request when there is none.
func (s *server) BookHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	target := s.booking.GeneralURL(s.bundle, lang)
	if id := mw.GetSession(r).PickerID; id != "" {
		if v, err := s.picker.View(r.Context(), id); err == nil {
			if best, ok := v.Best(); ok {
				target = s.booking.URL(s.bundle, lang, best.Name)
			}
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// PhotoHandler serves the preview of a live photo reference.
func (s *server) PhotoHandler(w http.ResponseWriter, r *http.Request) {
	preview, ok := s.photos.Open(chi.URLParam(r, "photoID"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", preview.ContentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(preview.Data)
}

// afterIntent renders the fragment for htmx and redirects plain form posts back to the picker.
func (s *server) afterIntent(w http.ResponseWriter, r *http.Request, v workflow.View) {
	if mw.IsHTMX(r.Context()) {
		s.renderPicker(w, r, v, "", http.StatusOK)
		return
	}
	http.Redirect(w, r, seo.LocalePath(mw.Lang(r), s.cfg.Site.DefaultLocale, "/")+pickerAnchor, http.StatusSeeOther)
}

// renderPicker writes the picker fragment, or the whole home page for non-htmx requests.
func (s *server) renderPicker(w http.ResponseWriter, r *http.Request, v workflow.View, errKey string, status int) {
	pv := s.buildPickerView(v, mw.Lang(r), mw.CSRFToken(r), errKey)
	if mw.IsHTMX(r.Context()) {
		s.views.renderTemplate(w, r, pickerFrag, pv, status)
		return
	}
	s.renderHome(w, r, &pv, status)
}

// pickerError maps workflow failures onto responses.
func (s *server) pickerError(w http.ResponseWriter, r *http.Request, id string, v workflow.View, err error) {
	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		s.renderPicker(w, r, v, verr.MessageKey(), http.StatusUnprocessableEntity)
	case errors.Is(err, questionnaire.ErrNoSelection), errors.Is(err, questionnaire.ErrIncomplete):
		s.renderPicker(w, r, v, "questionnaire.errors.noSelection", http.StatusUnprocessableEntity)
	case errors.Is(err, questionnaire.ErrWrongQuestion):
		s.renderPicker(w, r, v, "errors.invalidTransition", http.StatusConflict)
	case errors.Is(err, recommend.ErrInvalidValue):
		s.renderPicker(w, r, v, "errors.generic", http.StatusBadRequest)
	case errors.Is(err, workflow.ErrInvalidTransition):
		// stale tabs and double submits land here; show where the session really is
		status := http.StatusOK
		if s.cfg.Server.Dev {
			status = http.StatusConflict
		}
		s.renderPicker(w, r, v, "errors.invalidTransition", status)
	case errors.Is(err, workflow.ErrSessionClosed), errors.Is(err, workflow.ErrSessionNotFound):
		mw.GetSession(r).SetPickerID("")
		fresh, _ := s.pickerSession(r)
		s.expired(w, r, fresh)
	default:
		s.serverError(w, r, err)
	}
	observability.FromContext(r.Context()).Debug("picker intent rejected", zap.String("session_id", id), zap.Error(err))
}

func (s *server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("request failed", zap.Error(err))
	mw.WriteError(w, r, http.StatusInternalServerError, "internal", s.bundle.T(mw.Lang(r), "errors.generic"))
}
