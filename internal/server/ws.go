package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/example/photomark/internal/editor"
)

const (
	wsWriteWait  = 10 * time.Second
	wsMaxMsgSize = 64 * 1024
)

// OpSave and OpCancel end a session over the websocket. They are not
// editor commands.
const (
	OpSave   editor.Op = "save"
	OpCancel editor.Op = "cancel"
)

// WSReply answers every websocket command.
type WSReply struct {
	State  editor.State  `json:"state"`
	Error  string        `json:"error,omitempty"`
	Status int           `json:"status,omitempty"`
	Export *SaveResponse `json:"export,omitempty"`
}

// handleWebsocket streams commands to the session, one reply per command.
// The connection closes once the session is saved or cancelled.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.wsOrigins(),
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(wsMaxMsgSize)
	log := s.log.WithField("session", sess.ID())
	log.Debug("websocket connected")

	ctx := r.Context()
	for {
		var cmd editor.Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.WithError(err).Debug("websocket read")
			}
			return
		}
		s.sessions.touch(sess.ID())

		reply := s.dispatch(ctx, sess, cmd)
		writeCtx, cancel := context.WithTimeout(ctx, wsWriteWait)
		err := wsjson.Write(writeCtx, conn, reply)
		cancel()
		if err != nil {
			log.WithError(err).Debug("websocket write")
			return
		}
		if reply.State.Closed {
			if cmd.Op == OpCancel {
				s.sessions.remove(sess.ID())
			}
			conn.Close(websocket.StatusNormalClosure, "session closed")
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, sess *editor.Session, cmd editor.Command) WSReply {
	var (
		reply WSReply
		err   error
	)
	switch cmd.Op {
	case OpSave:
		reply.Export, err = s.save(ctx, sess)
	case OpCancel:
		err = sess.Cancel()
	default:
		err = applyCommand(sess, cmd)
	}
	if err != nil {
		reply.Error = err.Error()
		reply.Status = statusFor(err)
	}
	reply.State = sess.State()
	return reply
}

// wsOrigins converts the allowed origins into host patterns.
func (s *Server) wsOrigins() []string {
	out := make([]string, 0, len(s.origins()))
	for _, o := range s.origins() {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		out = append(out, o)
	}
	return out
}
