package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/seatmap/pkg/detail"
	"github.com/matzehuels/seatmap/pkg/interaction"
	"github.com/matzehuels/seatmap/pkg/session"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

// Op is a message from the server to a live client.
//
//	reset    the chart was (re)loaded; drop all client state
//	bind     start sending pointer events for a section
//	unbind   stop sending pointer events for a section
//	style    apply a section style
//	tooltip  show or move the tooltip
//	hide     hide the tooltip
//	detail   show the detail panel
type Op struct {
	Op       string               `json:"op"`
	Session  string               `json:"session,omitempty"`
	Section  string               `json:"section,omitempty"`
	Style    *style.Style         `json:"style,omitempty"`
	Tooltip  *interaction.Tooltip `json:"tooltip,omitempty"`
	Detail   *detail.Content      `json:"detail,omitempty"`
	HTML     string               `json:"html,omitempty"`
	Sections int                  `json:"sections,omitempty"`
}

// clientMsg is a message from a live client: a pointer event, or a
// viewport size report.
type clientMsg struct {
	interaction.Event
	Viewport *tooltip.Size `json:"viewport,omitempty"`
}

// hub tracks live connections.
type hub struct {
	srv      *Server
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*liveConn]struct{}
	wg    sync.WaitGroup
}

func newHub(s *Server) *hub {
	h := &hub{
		srv:   s,
		conns: make(map[*liveConn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	if s.cfg.AllowAllOrigins {
		h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return h
}

// serveWS upgrades the request and runs a live session until the client
// goes away. Every connection starts with a fresh controller.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.srv.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	lc := h.newConn(conn, r.RemoteAddr)
	lc.mu.Lock()
	lc.touch()
	lc.mu.Unlock()

	h.mu.Lock()
	h.conns[lc] = struct{}{}
	h.mu.Unlock()

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		lc.writeLoop()
	}()
	go func() {
		defer h.wg.Done()
		lc.readLoop()
		h.remove(lc)
	}()

	if c := h.srv.current(); c != nil {
		lc.reload(c)
	}
}

func (h *hub) newConn(conn *websocket.Conn, remote string) *liveConn {
	sess := session.New(session.DefaultTTL)
	sess.Remote = remote

	lc := &liveConn{
		hub:     h,
		conn:    conn,
		send:    make(chan Op, sendBuffer),
		done:    make(chan struct{}),
		store:   h.srv.cfg.Sessions,
		session: sess,
	}
	lc.ctrl = interaction.New(lc, interaction.Options{
		Binder:      lc,
		TooltipSize: h.srv.cfg.TooltipSize,
		Offset:      h.srv.cfg.Options.TooltipOffset,
	})
	return lc
}

func (h *hub) remove(lc *liveConn) {
	h.mu.Lock()
	delete(h.conns, lc)
	h.mu.Unlock()
	lc.close()

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if err := lc.store.Delete(context.Background(), lc.session.ID); err != nil {
		h.srv.logger.Warn("removing live session failed", "session", lc.session.ID, "err", err)
	}
}

func (h *hub) snapshot() []*liveConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*liveConn, 0, len(h.conns))
	for lc := range h.conns {
		out = append(out, lc)
	}
	return out
}

// reload resets every live controller onto c.
func (h *hub) reload(c *chart) {
	for _, lc := range h.snapshot() {
		lc.reload(c)
	}
}

// closeAll disconnects every client and waits for their goroutines.
func (h *hub) closeAll() {
	for _, lc := range h.snapshot() {
		_ = lc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = lc.conn.Close()
	}
	h.wg.Wait()
}

// count returns the number of live connections.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// liveConn is one websocket client. It is the controller's Surface and
// Binder; mu serialises controller access between the read loop and reloads.
type liveConn struct {
	hub  *hub
	conn *websocket.Conn
	send chan Op

	closeOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	ctrl    *interaction.Controller
	store   session.Store
	session *session.Session
	gen     uint64 // generation of the chart the controller is on
}

// reload moves the controller onto c. A chart older than the one already
// applied is ignored, so a connect racing a reload cannot roll back.
func (lc *liveConn) reload(c *chart) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if c.gen <= lc.gen {
		return
	}
	lc.gen = c.gen

	// Detach the previous chart before swapping the resolver.
	lc.ctrl.Reload(nil, nil)
	lc.ctrl.SetResolver(c.resolver)
	lc.emit(Op{Op: "reset", Session: lc.session.ID, Sections: len(c.diagram.IDs())})
	lc.ctrl.Reload(c.diagram, c.records)
	lc.session.Diagram = c.diagram.Hash
	lc.touch()
}

func (lc *liveConn) readLoop() {
	lc.conn.SetReadLimit(4096)
	_ = lc.conn.SetReadDeadline(time.Now().Add(pongWait))
	lc.conn.SetPongHandler(func(string) error {
		lc.mu.Lock()
		lc.touch()
		lc.mu.Unlock()
		return lc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	logger := lc.hub.srv.logger
	for {
		_, data, err := lc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("live session closed", "session", lc.session.ID, "err", err)
			}
			return
		}
		var msg clientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("ignoring malformed live message", "session", lc.session.ID, "err", err)
			continue
		}
		lc.handle(msg)
	}
}

func (lc *liveConn) handle(msg clientMsg) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.touch()
	if msg.Viewport != nil {
		lc.ctrl.SetViewport(*msg.Viewport)
	}
	if msg.Kind == "" {
		return
	}
	if err := lc.ctrl.Dispatch(msg.Event); err != nil {
		lc.hub.srv.logger.Debug("ignoring live event", "session", lc.session.ID, "err", err)
	}
}

// touch records activity on the session. The caller holds lc.mu. A closed
// connection is never re-registered.
func (lc *liveConn) touch() {
	select {
	case <-lc.done:
		return
	default:
	}
	lc.session.Touch(session.DefaultTTL)
	if err := lc.store.Set(context.Background(), lc.session); err != nil {
		lc.hub.srv.logger.Warn("saving live session failed", "session", lc.session.ID, "err", err)
	}
}

func (lc *liveConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case op := <-lc.send:
			_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := lc.conn.WriteJSON(op); err != nil {
				lc.close()
				return
			}
		case <-ticker.C:
			_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := lc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				lc.close()
				return
			}
		case <-lc.done:
			return
		}
	}
}

func (lc *liveConn) close() {
	lc.closeOnce.Do(func() {
		close(lc.done)
		_ = lc.conn.Close()
	})
}

// emit queues op. A client that cannot keep up is disconnected.
func (lc *liveConn) emit(op Op) {
	select {
	case <-lc.done:
	case lc.send <- op:
	default:
		lc.hub.srv.logger.Warn("live client too slow, disconnecting", "session", lc.session.ID)
		lc.close()
	}
}

// ApplyStyle implements interaction.Surface.
func (lc *liveConn) ApplyStyle(id string, s style.Style) {
	lc.emit(Op{Op: "style", Section: id, Style: &s})
}

// ShowTooltip implements interaction.Surface.
func (lc *liveConn) ShowTooltip(t interaction.Tooltip) {
	lc.emit(Op{Op: "tooltip", Section: t.SectionID, Tooltip: &t})
}

// HideTooltip implements interaction.Surface.
func (lc *liveConn) HideTooltip() {
	lc.emit(Op{Op: "hide"})
}

// RenderDetail implements interaction.Surface.
func (lc *liveConn) RenderDetail(c detail.Content) {
	html, err := detail.HTMLRenderer{}.Render(c)
	if err != nil {
		lc.hub.srv.logger.Warn("rendering detail failed", "section", c.SectionID, "err", err)
	}
	lc.emit(Op{Op: "detail", Section: c.SectionID, Detail: &c, HTML: html})
}

// Attach implements interaction.Binder.
func (lc *liveConn) Attach(id string) func() {
	lc.emit(Op{Op: "bind", Section: id})
	return func() { lc.emit(Op{Op: "unbind", Section: id}) }
}
