package intake

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"github.com/nfnt/resize"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const (
	defaultURLPrefix = "/photos/"
	previewMaxSide   = 600
	previewQuality   = 85
)

// Photo is a live displayable reference to an accepted upload.
type Photo struct {
	ID        string
	URL       string
	FileName  string
	MIMEType  string
	Size      int64
	CreatedAt time.Time
}

// Preview is the renderable payload behind a reference.
type Preview struct {
	Data        []byte
	ContentType string
}

type entry struct {
	photo   Photo
	preview Preview
}

// Store owns the displayable references. Every acquired reference must be released;
// releasing twice is a no-op.
type Store struct {
	mu     sync.Mutex
	refs   map[string]*entry
	prefix string
	newID  func() string
	now    func() time.Time
	logger *zap.Logger
	onLive func(int)
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithURLPrefix sets the path under which previews are served.
func WithURLPrefix(prefix string) StoreOption {
	return func(s *Store) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			if !strings.HasSuffix(prefix, "/") {
				prefix += "/"
			}
			s.prefix = prefix
		}
	}
}

// WithIDGenerator overrides reference id generation.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLiveObserver registers a callback receiving the live reference count after each change.
func WithLiveObserver(fn func(int)) StoreOption {
	return func(s *Store) {
		s.onLive = fn
	}
}

// NewStore returns an empty reference store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		refs:   make(map[string]*entry),
		prefix: defaultURLPrefix,
		newID:  func() string { return ulid.Make().String() },
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire validates f and allocates a displayable reference for it.
func (s *Store) Acquire(f File) (Photo, error) {
	valid, err := Validate(f)
	if err != nil {
		return Photo{}, err
	}
	preview := s.buildPreview(valid)

	id := s.newID()
	photo := Photo{
		ID:        id,
		URL:       s.prefix + id,
		FileName:  valid.Name,
		MIMEType:  valid.MIMEType,
		Size:      valid.Size,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.refs[id] = &entry{photo: photo, preview: preview}
	live := len(s.refs)
	s.mu.Unlock()

	s.notify(live)
	s.logger.Debug("photo reference acquired", zap.String("photo_id", id), zap.String("mime", photo.MIMEType), zap.Int64("size", photo.Size))
	return photo, nil
}

// Open returns the preview for a live reference.
func (s *Store) Open(id string) (Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.refs[id]
	if !ok {
		return Preview{}, false
	}
	return e.preview, true
}

// Release frees the reference. It reports whether a live reference was released.
func (s *Store) Release(id string) bool {
	s.mu.Lock()
	_, ok := s.refs[id]
	if ok {
		delete(s.refs, id)
	}
	live := len(s.refs)
	s.mu.Unlock()

	if ok {
		s.notify(live)
		s.logger.Debug("photo reference released", zap.String("photo_id", id))
	}
	return ok
}

// Live reports the number of unreleased references.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refs)
}

func (s *Store) notify(live int) {
	if s.onLive != nil {
		s.onLive(live)
	}
}

// buildPreview downsizes the image to a JPEG thumbnail, keeping the original bytes when the
// payload cannot be decoded.
func (s *Store) buildPreview(f File) Preview {
	original := Preview{Data: f.Data, ContentType: f.MIMEType}
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		s.logger.Debug("photo preview decode failed; serving original", zap.Error(err))
		return original
	}
	b := img.Bounds()
	if b.Dx() <= previewMaxSide && b.Dy() <= previewMaxSide && f.MIMEType == "image/jpeg" {
		return original
	}
	thumb := resize.Thumbnail(previewMaxSide, previewMaxSide, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: previewQuality}); err != nil {
		s.logger.Warn("photo preview encode failed; serving original", zap.Error(err))
		return original
	}
	return Preview{Data: buf.Bytes(), ContentType: "image/jpeg"}
}
