package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/constants/prompts"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/io/realtime"
	"golang.org/x/sync/errgroup"
)

// ComplimentSource is what the bridge needs from the session store.
type ComplimentSource interface {
	Pending(ctx context.Context, sessionID string) (string, bool, error)
	Clear(ctx context.Context, sessionID string) error
	Subscribe(sessionID string) (<-chan struct{}, func())
}

type Options struct {
	UpstreamURL        string
	APIKey             string
	Instructions       string
	Voice              string
	TranscriptionModel string
	InjectionMode      string
	InjectionInterval  time.Duration
	HandshakeTimeout   time.Duration
	KeepaliveInterval  time.Duration
	WriteTimeout       time.Duration
}

func OptionsFromConfig(cfg *config.Settings) Options {
	return Options{
		UpstreamURL:        cfg.Providers.OpenAI.RealtimeURL,
		APIKey:             cfg.Providers.OpenAI.APIKey,
		Instructions:       prompts.GREETER_PROMPT.GetCurrentPrompt().Text(),
		Voice:              cfg.Bridge.Voice,
		TranscriptionModel: cfg.Bridge.TranscriptionModel,
		InjectionMode:      cfg.Bridge.InjectionMode,
		InjectionInterval:  cfg.Bridge.InjectionInterval,
		HandshakeTimeout:   cfg.Bridge.HandshakeTimeout,
		KeepaliveInterval:  cfg.Bridge.KeepaliveInterval,
		WriteTimeout:       cfg.Bridge.WriteTimeout,
	}
}

// Bridge relays one browser socket to one private upstream realtime socket
// and injects pending compliments for its session id.
type Bridge struct {
	ID          uuid.UUID
	SessionID   string
	ConnectedAt time.Time

	client      *socket
	upstream    *socket
	compliments ComplimentSource
	opts        Options
	logger      *Logger.Logger
	lifecycle   *fsm.FSM

	clientFrames   atomic.Int64
	upstreamFrames atomic.Int64
	dropped        atomic.Int64
	injected       atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	injectMu  sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewBridge takes ownership of an upgraded client connection. compliments
// may be nil, in which case nothing is injected.
func NewBridge(
	sessionID string,
	client *websocket.Conn,
	compliments ComplimentSource,
	opts Options,
	logger *Logger.Logger,
) *Bridge {
	id := uuid.New()
	l := logger.With("conn", id.String(), "session", sessionID)
	ctx, cancel := context.WithCancel(context.Background())

	return &Bridge{
		ID:          id,
		SessionID:   sessionID,
		ConnectedAt: time.Now(),
		client:      newSocket("client", client, opts.WriteTimeout),
		upstream:    newSocket("upstream", nil, opts.WriteTimeout),
		compliments: compliments,
		opts:        opts,
		logger:      l,
		lifecycle:   newLifecycle(l),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Run blocks until either side goes away, Close is called or parent is
// cancelled. Both sockets are closed when it returns.
func (b *Bridge) Run(parent context.Context) {
	defer close(b.done)
	stop := context.AfterFunc(parent, func() { b.Close(ReasonServerShutdown) })
	defer stop()

	g, gctx := errgroup.WithContext(b.ctx)
	g.Go(func() error {
		b.pumpClient()
		return nil
	})
	g.Go(func() error {
		b.connect(gctx, g)
		return nil
	})
	_ = g.Wait()

	b.shutdown(ReasonClientDisconnected, ReasonClientDisconnected)
}

// Close tears the pair down, sending reason to both sides.
func (b *Bridge) Close(reason string) {
	b.shutdown(reason, reason)
}

func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

func (b *Bridge) State() string {
	return b.lifecycle.Current()
}

func (b *Bridge) Stats() BridgeStats {
	return BridgeStats{
		ID:              b.ID,
		SessionID:       b.SessionID,
		State:           b.State(),
		ConnectedAt:     b.ConnectedAt,
		ClientFrames:    b.clientFrames.Load(),
		UpstreamFrames:  b.upstreamFrames.Load(),
		DroppedFrames:   b.dropped.Load(),
		InjectedContext: b.injected.Load(),
	}
}

func (b *Bridge) connect(ctx context.Context, g *errgroup.Group) {
	conn, err := realtime.Dial(ctx, realtime.DialConfig{
		URL:              b.opts.UpstreamURL,
		APIKey:           b.opts.APIKey,
		HandshakeTimeout: b.opts.HandshakeTimeout,
	})
	if err != nil {
		if b.closing() {
			return
		}
		b.logger.Errorf("upstream connect failed: %v", err)
		_ = b.client.sendJSON(newErrorMessage("Failed to connect to realtime service"))
		b.shutdown(ReasonUpstreamUnavailable, ReasonUpstreamUnavailable)
		return
	}
	b.fire(eventUpstreamOpen)

	update, err := json.Marshal(realtime.NewSessionUpdate(b.opts.Instructions, b.opts.Voice, b.opts.TranscriptionModel))
	if err != nil {
		_ = conn.Close()
		b.shutdown(ReasonUpstreamError, ReasonUpstreamError)
		return
	}
	if err := b.upstream.attach(conn, update); err != nil {
		if errors.Is(err, errSocketClosed) {
			_ = conn.Close()
			return
		}
		b.logger.Errorf("sending session.update failed: %v", err)
		_ = b.client.sendJSON(newErrorMessage("Failed to configure realtime session"))
		b.shutdown(ReasonUpstreamError, ReasonUpstreamError)
		return
	}
	b.fire(eventConfigured)
	b.logger.Infof("bridge relaying to %s", b.opts.UpstreamURL)

	g.Go(func() error {
		b.pumpUpstream(conn)
		return nil
	})
	if b.compliments != nil {
		g.Go(func() error {
			b.injectLoop(ctx)
			return nil
		})
	}
	if b.opts.KeepaliveInterval > 0 {
		g.Go(func() error {
			b.keepalive(ctx)
			return nil
		})
	}
}

func (b *Bridge) pumpClient() {
	conn := b.client.Conn()
	b.armReadDeadline(conn)
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			b.readFailed(b.client, err)
			return
		}
		b.extendReadDeadline(conn)
		b.clientFrames.Add(1)

		switch messageType {
		case websocket.TextMessage:
			b.forward(b.upstream, websocket.TextMessage, data)
		case websocket.BinaryMessage:
			payload, err := json.Marshal(realtime.AppendAudio(data))
			if err != nil {
				b.logger.Warnf("encoding audio append: %v", err)
				continue
			}
			b.forward(b.upstream, websocket.TextMessage, payload)
		}
	}
}

func (b *Bridge) pumpUpstream(conn *websocket.Conn) {
	b.armReadDeadline(conn)
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			b.readFailed(b.upstream, err)
			return
		}
		b.extendReadDeadline(conn)
		b.upstreamFrames.Add(1)

		if messageType != websocket.TextMessage {
			b.forward(b.client, messageType, data)
			continue
		}

		switch ev := realtime.Parse(data).(type) {
		case realtime.AudioDelta:
			pcm, err := ev.Decode()
			if err != nil {
				b.logger.Warnf("undecodable audio delta, forwarding as text: %v", err)
				b.forward(b.client, websocket.TextMessage, data)
				continue
			}
			b.forward(b.client, websocket.BinaryMessage, pcm)
		case realtime.ErrorEvent:
			b.logger.Warnf("upstream error event %s: %s", ev.Code, ev.Message)
			b.forward(b.client, websocket.TextMessage, data)
		default:
			b.forward(b.client, websocket.TextMessage, ev.Payload())
		}
	}
}

// forward drops the frame when dst is not open.
func (b *Bridge) forward(dst *socket, messageType int, data []byte) {
	if err := dst.send(messageType, data); err != nil {
		if errors.Is(err, errSocketClosed) {
			b.dropped.Add(1)
			return
		}
		b.logger.Warnf("relay to %s failed: %v", dst.name, err)
	}
}

func (b *Bridge) readFailed(side *socket, err error) {
	if b.closing() {
		return
	}

	normal := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
	if normal {
		b.logger.Infof("%s closed the connection", side.name)
	} else {
		b.logger.Errorf("%s read error: %v", side.name, err)
	}

	if side == b.client {
		reason := ReasonClientDisconnected
		if !normal {
			reason = ReasonClientError
		}
		b.shutdown(reason, reason)
		return
	}
	reason := ReasonUpstreamDisconnected
	if !normal {
		reason = ReasonUpstreamError
		_ = b.client.sendJSON(newErrorMessage("Realtime service error"))
	}
	b.shutdown(reason, reason)
}

func (b *Bridge) injectLoop(ctx context.Context) {
	if b.opts.InjectionMode == config.InjectionOnce {
		b.injectPending(ctx)
		return
	}

	notify, unsubscribe := b.compliments.Subscribe(b.SessionID)
	defer unsubscribe()

	ticker := time.NewTicker(b.opts.InjectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.injectPending(ctx)
		case <-notify:
			b.injectPending(ctx)
		}
	}
}

// injectPending sends a stored compliment upstream and consumes it. The key
// is kept when the send fails.
func (b *Bridge) injectPending(ctx context.Context) {
	b.injectMu.Lock()
	defer b.injectMu.Unlock()

	if ctx.Err() != nil || !b.upstream.IsOpen() {
		return
	}

	text, ok, err := b.compliments.Pending(ctx, b.SessionID)
	if err != nil {
		b.logger.Warnf("reading compliment: %v", err)
		return
	}
	if !ok || text == "" {
		return
	}

	if err := b.upstream.sendJSON(realtime.SystemMessage(prompts.VisionContextPrefix + text)); err != nil {
		b.logger.Warnf("injecting compliment: %v", err)
		return
	}
	b.injected.Add(1)
	b.logger.Infof("injected vision context")

	if err := b.compliments.Clear(ctx, b.SessionID); err != nil {
		b.logger.Warnf("clearing compliment: %v", err)
	}
}

func (b *Bridge) keepalive(ctx context.Context) {
	ticker := time.NewTicker(b.opts.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range []*socket{b.client, b.upstream} {
				if err := s.ping(); err != nil && !errors.Is(err, errSocketClosed) {
					b.logger.Debugf("ping %s: %v", s.name, err)
				}
			}
		}
	}
}

func (b *Bridge) armReadDeadline(conn *websocket.Conn) {
	if b.opts.KeepaliveInterval <= 0 {
		return
	}
	b.extendReadDeadline(conn)
	conn.SetPongHandler(func(string) error {
		b.extendReadDeadline(conn)
		return nil
	})
}

func (b *Bridge) extendReadDeadline(conn *websocket.Conn) {
	if b.opts.KeepaliveInterval <= 0 {
		return
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * b.opts.KeepaliveInterval))
}

// shutdown cancels the injector, waits out any in-flight injection and
// closes both sockets with a normal closure.
func (b *Bridge) shutdown(clientReason, upstreamReason string) {
	b.closeOnce.Do(func() {
		b.cancel()
		b.injectMu.Lock()
		b.injectMu.Unlock()

		b.upstream.close(websocket.CloseNormalClosure, upstreamReason)
		b.client.close(websocket.CloseNormalClosure, clientReason)
		b.fire(eventClose)
		b.logger.Infof("bridge closed: client=%q upstream=%q", clientReason, upstreamReason)
	})
}

func (b *Bridge) closing() bool {
	return b.ctx.Err() != nil
}

func (b *Bridge) fire(event string) {
	if err := b.lifecycle.Event(context.Background(), event); err != nil {
		b.logger.Debugf("lifecycle %s: %v", event, err)
	}
}
