// Package editor implements the interactive annotation session: the tool
// state machine driving a surface, its undo history and the save and cancel
// contract with the host.
package editor

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/history"
	"github.com/example/photomark/internal/ids"
	"github.com/example/photomark/internal/ingest"
	"github.com/example/photomark/internal/render"
	"github.com/example/photomark/internal/surface"
)

// Session is one editing session over one photo. It is safe for concurrent
// use; every operation is serialised.
type Session struct {
	mu       sync.Mutex
	id       string
	width    int
	height   int
	style    Style
	color    surface.Color
	limit    int
	pixels   int64
	renderer surface.Renderer
	log      *logrus.Entry

	surface *surface.Surface
	machine *Machine
	history *history.History

	loading bool
	closed  bool

	onSave   func([]byte)
	onCancel func()
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithID sets the session identifier.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// WithSize sets the canvas size in logical pixels.
func WithSize(w, h int) Option { return func(s *Session) { s.width, s.height = w, h } }

// WithStyle sets stroke widths and font for new objects.
func WithStyle(st Style) Option { return func(s *Session) { s.style = st } }

// WithColor sets the initial drawing colour.
func WithColor(c surface.Color) Option { return func(s *Session) { s.color = c } }

// WithHistoryLimit caps the number of retained snapshots. Zero keeps all.
func WithHistoryLimit(n int) Option { return func(s *Session) { s.limit = n } }

// WithMaxPixels caps the decoded size of loaded photos. Zero disables the
// check.
func WithMaxPixels(n int64) Option { return func(s *Session) { s.pixels = n } }

// WithRenderer selects the backend used for export and previews.
func WithRenderer(r surface.Renderer) Option { return func(s *Session) { s.renderer = r } }

// WithLogger sets the log entry the session writes to.
func WithLogger(l *logrus.Entry) Option { return func(s *Session) { s.log = l } }

// WithOnSave registers the callback receiving the exported PNG.
func WithOnSave(fn func([]byte)) Option { return func(s *Session) { s.onSave = fn } }

// WithOnCancel registers the callback invoked when the user cancels.
func WithOnCancel(fn func()) Option { return func(s *Session) { s.onCancel = fn } }

// New creates a session with an empty surface.
func New(opts ...Option) *Session {
	s := &Session{
		width:  surface.DefaultWidth,
		height: surface.DefaultHeight,
		style:  DefaultStyle(),
		color:  surface.DefaultColor,
		limit:  history.DefaultLimit,
		pixels: surface.DefaultMaxPixels,
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = ids.NewSessionID()
	}
	if s.renderer == nil {
		s.renderer = render.NewRaster()
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithField("session", s.id)
	s.surface = surface.New(surface.WithSize(s.width, s.height), surface.WithMaxPixels(s.pixels))
	s.width, s.height = s.surface.Size()
	s.machine = NewMachine(s.surface, s.style)
	s.machine.SetColor(s.color)
	s.history = history.New(s.limit)
	return s
}

// Open creates a session and loads its photo from src.
func Open(ctx context.Context, src ingest.Source, opts ...Option) (*Session, error) {
	s := New(opts...)
	if err := s.Load(ctx, src); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// OnSave replaces the save callback.
func (s *Session) OnSave(fn func([]byte)) {
	s.mu.Lock()
	s.onSave = fn
	s.mu.Unlock()
}

// OnCancel replaces the cancel callback.
func (s *Session) OnCancel(fn func()) {
	s.mu.Lock()
	s.onCancel = fn
	s.mu.Unlock()
}

// Load reads src and makes it the background, replacing all annotations.
// Pointer input is refused while the read is in flight. A decode failure
// leaves the surface as it was.
func (s *Session) Load(ctx context.Context, src ingest.Source) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.loading {
		s.mu.Unlock()
		return ErrLoading
	}
	s.loading = true
	s.machine.Abandon()
	s.mu.Unlock()

	data, err := src.Read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	log := s.log.WithField("origin", src.Origin())
	if err != nil {
		log.WithError(err).Warn("image read failed")
		return fmt.Errorf("load %s image: %w", src.Origin(), err)
	}
	if s.closed {
		return ErrClosed
	}
	if err := s.surface.LoadBackground(data); err != nil {
		log.WithError(err).Warn("image rejected")
		return err
	}
	bg, _ := s.surface.Background()
	fields := logrus.Fields{
		"width":  bg.SourceWidth,
		"height": bg.SourceHeight,
		"scale":  bg.Scale,
	}
	if info, err := ingest.Describe(data); err == nil {
		fields["format"] = info.Format
	}
	log.WithFields(fields).Info("image loaded")
	return s.record()
}

func (s *Session) record() error {
	snap, err := s.surface.Serialize()
	if err != nil {
		s.log.WithError(err).Error("snapshot failed")
		return err
	}
	s.history.Push(snap)
	if s.surface.Assets() > 1 {
		s.pruneAssets()
	}
	return nil
}

// pruneAssets releases photos that no retained snapshot refers to.
func (s *Session) pruneAssets() {
	used := make(map[string]bool)
	s.history.Each(func(snap surface.Snapshot) {
		if key, ok := snap.BackgroundKey(); ok {
			used[key] = true
		}
	})
	s.surface.PruneAssets(func(key string) bool { return used[key] })
}

// guard must be called with mu held.
func (s *Session) guard() error {
	if s.closed {
		return ErrClosed
	}
	if s.loading {
		return ErrLoading
	}
	return nil
}

// SetMode switches the active tool, abandoning any shape being drawn.
func (s *Session) SetMode(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.machine.SetMode(m) {
		return s.record()
	}
	return nil
}

// SetColor sets the colour for subsequently created objects.
func (s *Session) SetColor(c surface.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.machine.SetColor(c)
	return nil
}

// SetText sets the pending text placed by the next click in text mode.
func (s *Session) SetText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.machine.SetText(text)
	return nil
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Mode()
}

func (s *Session) Color() surface.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Color()
}

// PointerDown forwards a press at p in canvas coordinates.
func (s *Session) PointerDown(p surface.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	commit, err := s.machine.PointerDown(p)
	if commit {
		if rerr := s.record(); rerr != nil {
			return rerr
		}
	}
	return err
}

// PointerMove forwards pointer motion.
func (s *Session) PointerMove(p surface.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.machine.PointerMove(p)
	return nil
}

// PointerUp forwards a release and records the finished gesture.
func (s *Session) PointerUp(p surface.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	commit, err := s.machine.PointerUp(p)
	if err != nil {
		return err
	}
	if commit {
		return s.record()
	}
	return nil
}

// finishGesture must be called with mu held.
func (s *Session) finishGesture() error {
	if s.machine.Abandon() {
		return s.record()
	}
	return nil
}

// Undo restores the previous snapshot. It reports false at the oldest one.
func (s *Session) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return false, err
	}
	if err := s.finishGesture(); err != nil {
		return false, err
	}
	snap, ok := s.history.Undo()
	if !ok {
		return false, nil
	}
	if err := s.surface.Restore(snap); err != nil {
		s.history.Redo()
		return false, err
	}
	return true, nil
}

// Redo re-applies the next snapshot. It reports false at the newest one.
func (s *Session) Redo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return false, err
	}
	if err := s.finishGesture(); err != nil {
		return false, err
	}
	snap, ok := s.history.Redo()
	if !ok {
		return false, nil
	}
	if err := s.surface.Restore(snap); err != nil {
		s.history.Undo()
		return false, err
	}
	return true, nil
}

// Delete removes the selected object. It reports false when nothing is
// selected.
func (s *Session) Delete() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return false, err
	}
	if err := s.finishGesture(); err != nil {
		return false, err
	}
	removed := s.surface.RemoveSelection()
	if removed == nil {
		return false, nil
	}
	s.log.WithField("object", removed.ObjectID()).Debug("object deleted")
	return true, s.record()
}

// Save flattens the surface to PNG, closes the session and hands the bytes
// to the save callback. On failure the session stays open and the callback
// is not invoked.
func (s *Session) Save() ([]byte, error) {
	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.finishGesture(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	data, err := s.surface.FlattenPNG(s.renderer)
	if err != nil {
		s.mu.Unlock()
		s.log.WithError(err).Warn("save failed")
		return nil, err
	}
	s.closed = true
	s.surface.Close()
	cb := s.onSave
	s.mu.Unlock()

	s.log.WithField("bytes", len(data)).Info("session saved")
	if cb != nil {
		cb(data)
	}
	return data, nil
}

// Cancel discards the session without producing output.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.machine.Abandon()
	s.closed = true
	s.surface.Close()
	cb := s.onCancel
	s.mu.Unlock()

	s.log.Info("session cancelled")
	if cb != nil {
		cb()
	}
	return nil
}

// Snapshot serialises the current surface.
func (s *Session) Snapshot() (surface.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.surface.Serialize()
}

// Preview renders the surface with selection chrome for display.
func (s *Session) Preview() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.surface.Preview(s.renderer)
}

// CanUndo reports whether Undo would change the surface.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.CanUndo()
}

// CanRedo reports whether Redo would change the surface.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.CanRedo()
}

// HasSelection reports whether an object is selected.
func (s *Session) HasSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Selection() != nil
}

// Loading reports whether an image read is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Objects returns copies of the objects in paint order.
func (s *Session) Objects() []surface.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	objs := s.surface.Objects()
	for i, o := range objs {
		objs[i] = o.Clone()
	}
	return objs
}

// State is a point in time view of the session for toolbars and clients.
type State struct {
	ID           string        `json:"id"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Mode         Mode          `json:"mode"`
	Color        surface.Color `json:"color"`
	Text         string        `json:"text"`
	Loading      bool          `json:"loading"`
	Closed       bool          `json:"closed"`
	HasImage     bool          `json:"hasImage"`
	CanUndo      bool          `json:"canUndo"`
	CanRedo      bool          `json:"canRedo"`
	HasSelection bool          `json:"hasSelection"`
	Selection    string        `json:"selection,omitempty"`
	Objects      int           `json:"objects"`
	HistoryIndex int           `json:"historyIndex"`
	HistoryLen   int           `json:"historyLen"`
}

// State returns the current toolbar state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hasImage := s.surface.Background()
	st := State{
		ID:           s.id,
		Width:        s.width,
		Height:       s.height,
		Mode:         s.machine.Mode(),
		Color:        s.machine.Color(),
		Text:         s.machine.Text(),
		Loading:      s.loading,
		Closed:       s.closed,
		HasImage:     hasImage,
		CanUndo:      s.history.CanUndo(),
		CanRedo:      s.history.CanRedo(),
		Objects:      s.surface.Len(),
		HistoryIndex: s.history.Index(),
		HistoryLen:   s.history.Len(),
	}
	if sel := s.surface.Selection(); sel != nil {
		st.HasSelection = true
		st.Selection = sel.ObjectID()
	}
	return st
}
