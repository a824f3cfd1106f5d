package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/recommend"
)

type midpointSource struct{}

func (midpointSource) Float64() float64 { return 0.5 }

type keyTranslator struct{}

func (keyTranslator) T(_ string, key string) string { return key }

type serviceFixture struct {
	svc    *Service
	photos *intake.Store
	clock  *fakeClock
	id     string
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	clock := newFakeClock()
	photos := intake.NewStore()
	sessions := NewStore(
		WithStoreClock(clock.Now),
		WithSessionOptions(WithReleaser(photos)),
	)
	svc, err := NewService(ServiceDeps{
		Sessions:   sessions,
		Photos:     photos,
		Engine:     recommend.NewEngine(recommend.WithSource(midpointSource{})),
		Translator: keyTranslator{},
	})
	require.NoError(t, err)
	sess, _ := svc.Session(context.Background(), "")
	return serviceFixture{svc: svc, photos: photos, clock: clock, id: sess.ID()}
}

func webpFile() intake.File {
	data := []byte("RIFF0000WEBPVP8 ")
	return intake.File{Name: "me.webp", MIMEType: "image/webp", Data: data, Size: int64(len(data))}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceDeps{})
	assert.Error(t, err)
}

func TestServiceFullFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	v, err := f.svc.UploadPhoto(ctx, f.id, webpFile())
	require.NoError(t, err)
	assert.Equal(t, StageQuestionnaire, v.Stage)
	assert.Equal(t, 1, f.photos.Live())

	for i, val := range fullPass {
		v, err = f.svc.Answer(ctx, f.id, i, val, true)
		require.NoError(t, err)
	}
	assert.Equal(t, StageProcessing, v.Stage)

	v, err = f.svc.Poll(ctx, f.id, "en")
	require.NoError(t, err)
	assert.Equal(t, StageProcessing, v.Stage)

	f.clock.Advance(10 * time.Second)
	v, err = f.svc.Poll(ctx, f.id, "en")
	require.NoError(t, err)
	require.Equal(t, StageResults, v.Stage)
	require.Len(t, v.Recommendations, 4)

	var got []string
	for _, r := range v.Recommendations {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"caramel-highlights", "chocolate-brown", "strawberry-blonde", "ash-blonde"}, got)
	assert.Equal(t, "presets.caramelHighlights.name", v.Recommendations[0].Name)
	assert.InDelta(t, 92, v.Recommendations[0].Confidence, 0.0001)

	// polling results is a no-op
	again, err := f.svc.Poll(ctx, f.id, "en")
	require.NoError(t, err)
	assert.Equal(t, v.Recommendations, again.Recommendations)
}

func TestServiceRejectsGIFAndStaysOnUpload(t *testing.T) {
	f := newServiceFixture(t)
	v, err := f.svc.UploadPhoto(context.Background(), f.id, intake.File{Name: "a.gif", MIMEType: "image/gif", Size: 10})
	assert.ErrorIs(t, err, intake.ErrInvalidType)
	assert.Equal(t, StageUpload, v.Stage)
	assert.Equal(t, 0, f.photos.Live())
}

func TestServiceUploadOutsideUploadStageKeepsNoReference(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	_, err := f.svc.UploadPhoto(ctx, f.id, webpFile())
	require.NoError(t, err)

	_, err = f.svc.UploadPhoto(ctx, f.id, webpFile())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, f.photos.Live())
}

func TestServiceResetDuringProcessingReleasesPhoto(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	_, err := f.svc.UploadPhoto(ctx, f.id, webpFile())
	require.NoError(t, err)
	for i, val := range fullPass {
		_, err = f.svc.Answer(ctx, f.id, i, val, true)
		require.NoError(t, err)
	}

	v, err := f.svc.Reset(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, StageUpload, v.Stage)
	assert.Equal(t, 0, f.photos.Live())
	assert.False(t, v.Answers.Complete())

	f.clock.Advance(time.Minute)
	v, err = f.svc.Poll(ctx, f.id, "en")
	require.NoError(t, err)
	assert.Equal(t, StageUpload, v.Stage)
	assert.Empty(t, v.Recommendations)
}

func TestServicePreviousReturnsToUpload(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	_, err := f.svc.UploadPhoto(ctx, f.id, webpFile())
	require.NoError(t, err)

	v, err := f.svc.Previous(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, StageUpload, v.Stage)
	require.NotNil(t, v.Photo)
	assert.Equal(t, 1, f.photos.Live())
}

func TestServiceNextWithoutSelection(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	_, err := f.svc.UploadPhoto(ctx, f.id, webpFile())
	require.NoError(t, err)

	v, err := f.svc.Next(ctx, f.id)
	assert.Error(t, err)
	assert.Equal(t, 0, v.QuestionIndex)
}

func TestServiceUnknownSession(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Next(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.View(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
