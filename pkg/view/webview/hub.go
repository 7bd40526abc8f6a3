package webview

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/qrcode"
	"github.com/dmitrymomot/subsync/pkg/view"
)

type eventKind int

const (
	eventAlert eventKind = iota
	eventNavigate
)

type event struct {
	kind eventKind
	text string
}

// subscriber coalesces frames: only the newest pending frame is sent, while
// alerts and navigation are queued in order.
type subscriber struct {
	mu     sync.Mutex
	frame  *view.Frame
	events []event
	notify chan struct{}
}

func (s *subscriber) push(f *view.Frame, ev *event) {
	s.mu.Lock()
	if f != nil {
		s.frame = f
	}
	if ev != nil {
		s.events = append(s.events, *ev)
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) take() (*view.Frame, []event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, evs := s.frame, s.events
	s.frame, s.events = nil, nil
	return f, evs
}

// Hub broadcasts frames to connected browsers.
type Hub struct {
	mu      sync.Mutex
	last    view.Frame
	subs    map[*subscriber]struct{}
	pending []event
	routes  Routes
	logger  *slog.Logger

	// kick is closed and replaced by Disconnect.
	kick      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRoutes overrides the endpoints rendered into the page.
func WithRoutes(r Routes) Option {
	return func(h *Hub) { h.routes = r }
}

// NewHub returns a hub whose page shows initial until the first Render.
func NewHub(initial view.Frame, opts ...Option) *Hub {
	h := &Hub{
		last:   initial,
		subs:   make(map[*subscriber]struct{}),
		routes: DefaultRoutes,
		logger: logger.Discard(),
		kick:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("webview"))
	return h
}

// Render stores f and queues it for every connected browser.
func (h *Hub) Render(_ context.Context, f view.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = f
	for s := range h.subs {
		s.push(&f, nil)
	}
	return nil
}

// Alert shows msg in a dialog on every connected browser. With no browser
// connected the message is held for the next stream.
func (h *Hub) Alert(_ context.Context, msg string) {
	h.broadcast(event{kind: eventAlert, text: msg})
}

// Navigate redirects every connected browser to url.
func (h *Hub) Navigate(_ context.Context, url string) error {
	h.broadcast(event{kind: eventNavigate, text: url})
	return nil
}

// Close ends every open stream and makes new ones return at once. The
// server can then shut down without waiting for browsers to disconnect.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Disconnect ends the streams open right now. Later streams are not
// affected, so it is used when the page changes hands.
func (h *Hub) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.kick)
	h.kick = make(chan struct{})
}

// Connected returns the number of open streams.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Last returns the most recent frame.
func (h *Hub) Last() view.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (h *Hub) broadcast(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 && ev.kind == eventAlert {
		h.pending = append(h.pending, ev)
		return
	}
	for s := range h.subs {
		s.push(nil, &ev)
	}
}

func (h *Hub) subscribe() (*subscriber, <-chan struct{}, func()) {
	s := &subscriber{notify: make(chan struct{}, 1)}

	h.mu.Lock()
	kick := h.kick
	last := h.last
	pending := h.pending
	h.pending = nil
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	s.push(&last, nil)
	for i := range pending {
		s.push(nil, &pending[i])
	}
	return s, kick, func() {
		h.mu.Lock()
		delete(h.subs, s)
		h.mu.Unlock()
	}
}

// Page serves the document with the latest frame.
func (h *Hub) Page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(h.Last(), h.routes).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "render page", logger.Error(err))
	}
}

// Stream holds a Datastar event stream open and patches the page on every
// change until the client disconnects.
func (h *Hub) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sse := datastar.NewSSE(w, r)

	s, kick, unsubscribe := h.subscribe()
	defer unsubscribe()

	h.logger.DebugContext(ctx, "stream opened")
	defer h.logger.DebugContext(ctx, "stream closed")

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-kick:
			return
		case <-s.notify:
		}

		f, evs := s.take()
		if f != nil {
			if err := sse.PatchElementTempl(App(*f, h.routes),
				datastar.WithSelector("#"+AppID),
				datastar.WithMode(datastar.ElementPatchModeOuter),
			); err != nil {
				h.logger.WarnContext(ctx, "patch frame", logger.Error(err))
				return
			}
		}
		for _, ev := range evs {
			if err := h.send(sse, ev); err != nil {
				h.logger.WarnContext(ctx, "send event", logger.Error(err))
				return
			}
		}
	}
}

func (h *Hub) send(sse *datastar.ServerSentEventGenerator, ev event) error {
	alerts := []datastar.PatchElementOption{
		datastar.WithSelector("#" + AlertsID),
		datastar.WithMode(datastar.ElementPatchModeOuter),
	}
	switch ev.kind {
	case eventNavigate:
		qr, _ := qrcode.DataURI(ev.text, 0)
		if err := sse.PatchElementTempl(Handoff(h.Last().Labels.Redirecting, ev.text, qr), alerts...); err != nil {
			return err
		}
		return sse.Redirect(ev.text)
	default:
		return sse.PatchElementTempl(Dialog(ev.text), alerts...)
	}
}
