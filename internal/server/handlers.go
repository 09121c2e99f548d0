package server

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/example/photomark/assets"
	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/export"
	"github.com/example/photomark/internal/ingest"
	"github.com/example/photomark/internal/surface"
)

type ctxKey struct{}

type (
	// SessionResponse describes a created session.
	SessionResponse struct {
		ID    string       `json:"id"`
		State editor.State `json:"state"`
	}

	// ToolRequest changes the active tool. Unset fields are left alone.
	ToolRequest struct {
		Mode  *string `json:"mode,omitempty"`
		Color *string `json:"color,omitempty"`
		Text  *string `json:"text,omitempty"`
	}

	// PointerRequest forwards one pointer event in canvas coordinates.
	PointerRequest struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}

	// ChangeResponse answers undo, redo and delete.
	ChangeResponse struct {
		Changed bool         `json:"changed"`
		State   editor.State `json:"state"`
	}

	// SaveResponse points at the stored export.
	SaveResponse struct {
		ExportID string `json:"export_id"`
		URL      string `json:"url"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Size     int    `json:"size"`
	}

	// ObjectView is an annotation with its kind and painted bounds.
	ObjectView struct {
		ID     string         `json:"id"`
		Kind   surface.Kind   `json:"kind"`
		Bounds surface.Bounds `json:"bounds"`
		Object surface.Object `json:"object"`
	}
)

func (t *ToolRequest) Bind(r *http.Request) error {
	if t.Mode == nil && t.Color == nil && t.Text == nil {
		return errors.New("tool request must set mode, color or text")
	}
	return nil
}

func (p *PointerRequest) Bind(r *http.Request) error {
	switch editor.Op(p.Type) {
	case editor.OpDown, editor.OpMove, editor.OpUp:
		return nil
	}
	return fmt.Errorf("pointer type %q must be down, move or up", p.Type)
}

func (s *Server) store() export.Store { return s.opts.Store }

func (s *Server) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, ok := s.sessions.get(id)
		if !ok {
			s.fail(w, r, fmt.Errorf("%s: %w", id, errSessionNotFound))
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *editor.Session {
	return r.Context().Value(ctxKey{}).(*editor.Session)
}

// uploadSource reads the photo from a multipart "file" field or, for any
// other content type, from the raw body.
func uploadSource(r *http.Request) (ingest.Source, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return ingest.Reader(r.Body, "body"), func() {}, nil
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, badRequest(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, badRequest(fmt.Errorf("missing file field: %w", err))
	}
	return ingest.Reader(file, header.Filename), func() { file.Close() }, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	src, done, err := uploadSource(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer done()
	opts := append([]editor.Option{editor.WithLogger(s.log)}, s.opts.Session...)
	sess, err := editor.Open(r.Context(), src, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.sessions.add(sess)
	s.log.WithField("session", sess.ID()).Info("session created")
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SessionResponse{ID: sess.ID(), State: sess.State()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.sessions.list()
	states := make([]editor.State, 0, len(sessions))
	for _, sess := range sessions {
		states = append(states, sess.State())
	}
	render.JSON(w, r, states)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, sessionFrom(r).State())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := sessionFrom(r).Snapshot()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(snap)
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	objs := sessionFrom(r).Objects()
	views := make([]ObjectView, 0, len(objs))
	for _, o := range objs {
		views = append(views, ObjectView{ID: o.ObjectID(), Kind: o.Kind(), Bounds: o.Bounds(), Object: o})
	}
	render.JSON(w, r, views)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	img, err := sessionFrom(r).Preview()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		s.log.WithError(err).Warn("write preview")
	}
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req ToolRequest
	if err := render.Bind(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	sess := sessionFrom(r)
	if req.Text != nil {
		if err := sess.SetText(*req.Text); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if req.Color != nil {
		col, err := surface.ParseColor(*req.Color)
		if err != nil {
			s.fail(w, r, badRequest(err))
			return
		}
		if err := sess.SetColor(col); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if req.Mode != nil {
		m, err := editor.ParseMode(*req.Mode)
		if err != nil {
			s.fail(w, r, badRequest(err))
			return
		}
		if err := sess.SetMode(m); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	render.JSON(w, r, sess.State())
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := render.Bind(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	sess := sessionFrom(r)
	if err := sess.Apply(editor.Command{Op: editor.Op(req.Type), X: req.X, Y: req.Y}); err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, sess.State())
}

// handleCommands applies a JSON array of commands in order, stopping at the
// first failure.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	var cmds []editor.Command
	if err := render.DecodeJSON(r.Body, &cmds); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	sess := sessionFrom(r)
	for i, c := range cmds {
		if err := applyCommand(sess, c); err != nil {
			s.fail(w, r, fmt.Errorf("command %d (%s): %w", i, c.Op, err))
			return
		}
	}
	render.JSON(w, r, sess.State())
}

// applyCommand runs c, marking parse failures as client errors.
func applyCommand(sess *editor.Session, c editor.Command) error {
	switch c.Op {
	case editor.OpMode:
		if _, err := editor.ParseMode(c.Mode); err != nil {
			return badRequest(err)
		}
	case editor.OpColor:
		if _, err := surface.ParseColor(c.Color); err != nil {
			return badRequest(err)
		}
	}
	err := sess.Apply(c)
	if errors.Is(err, editor.ErrUnknownOp) {
		return badRequest(err)
	}
	return err
}

func (s *Server) change(w http.ResponseWriter, r *http.Request, fn func(*editor.Session) (bool, error)) {
	sess := sessionFrom(r)
	changed, err := fn(sess)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, ChangeResponse{Changed: changed, State: sess.State()})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.change(w, r, (*editor.Session).Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.change(w, r, (*editor.Session).Redo)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.change(w, r, (*editor.Session).Delete)
}

// save flattens sess, stores the export and returns its link.
func (s *Server) save(ctx context.Context, sess *editor.Session) (*SaveResponse, error) {
	data, err := sess.Save()
	if err != nil {
		return nil, err
	}
	e, err := export.New(sess.ID(), data)
	if err != nil {
		return nil, err
	}
	if err := s.store().Put(ctx, e); err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	link := s.opts.PublicURL + "/api/exports/" + e.ID
	s.opts.Notifier.Export(link)
	return &SaveResponse{ExportID: e.ID, URL: link, Width: e.Width, Height: e.Height, Size: e.Size}, nil
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	resp, err := s.save(r.Context(), sessionFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// handleCancel cancels the session and forgets it. Forgetting an already
// saved session is not an error.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Cancel(); err != nil && !errors.Is(err, editor.ErrClosed) {
		s.fail(w, r, err)
		return
	}
	s.sessions.remove(sess.ID())
	render.NoContent(w, r)
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	list, err := s.store().List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []*export.Export{}
	}
	render.JSON(w, r, list)
}

func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := s.store().Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", e.ID+".png"))
	w.Write(e.Data)
}

func (s *Server) handleDeleteExport(w http.ResponseWriter, r *http.Request) {
	if err := s.store().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func handleFavicon(w http.ResponseWriter, r *http.Request) {
	data, err := assets.IconPNG(32)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func handleIconSVG(w http.ResponseWriter, r *http.Request) {
	data, err := assets.IconSVG()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}
