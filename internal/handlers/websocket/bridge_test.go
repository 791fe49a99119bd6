package websocket

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

// fakeUpstream stands in for the realtime voice service.
type fakeUpstream struct {
	server  *httptest.Server
	dials   atomic.Int32
	headers chan http.Header
	conns   chan *websocket.Conn
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{
		headers: make(chan http.Header, 4),
		conns:   make(chan *websocket.Conn, 4),
	}
	upgrader := websocket.Upgrader{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.dials.Add(1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.headers <- r.Header.Clone()
		f.conns <- conn
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *fakeUpstream) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-f.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(3 * time.Second):
		t.Fatal("upstream was never dialed")
		return nil
	}
}

// fakeCompliments counts store reads so tests can assert the injector
// stopped.
type fakeCompliments struct {
	mu      sync.Mutex
	values  map[string]string
	reads   atomic.Int64
	deletes atomic.Int64
}

func newFakeCompliments() *fakeCompliments {
	return &fakeCompliments{values: make(map[string]string)}
}

func (f *fakeCompliments) put(sessionID, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[sessionID] = text
}

func (f *fakeCompliments) has(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[sessionID]
	return ok
}

func (f *fakeCompliments) Pending(_ context.Context, sessionID string) (string, bool, error) {
	f.reads.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[sessionID]
	return v, ok, nil
}

func (f *fakeCompliments) Clear(_ context.Context, sessionID string) error {
	f.deletes.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, sessionID)
	return nil
}

func (f *fakeCompliments) Subscribe(string) (<-chan struct{}, func()) {
	return nil, func() {}
}

func testConfig(upstreamURL string) *config.Settings {
	return &config.Settings{
		Providers: config.ProvidersConfig{
			OpenAI: config.OpenAIConfig{APIKey: "sk-test", RealtimeURL: upstreamURL},
		},
		Bridge: config.BridgeConfig{
			Voice:              "alloy",
			TranscriptionModel: "whisper-1",
			InjectionMode:      config.InjectionInterval,
			InjectionInterval:  20 * time.Millisecond,
			HandshakeTimeout:   2 * time.Second,
			WriteTimeout:       time.Second,
		},
	}
}

func newGreeter(t *testing.T, cfg *config.Settings, store ComplimentSource) (*httptest.Server, *WebSocketHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWebSocketHandler(cfg, store, Logger.NewNop())
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		h.Close(time.Second)
		srv.Close()
	})
	return srv, h
}

func mustDialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s failed: %v (status %d)", path, err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func mustRead(t *testing.T, conn *websocket.Conn) (int, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return messageType, data
}

func mustReadJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	messageType, data := mustRead(t, conn)
	if messageType != websocket.TextMessage {
		t.Fatalf("Expected text frame, got type %d", messageType)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid json %q: %v", data, err)
	}
	return out
}

func expectClose(t *testing.T, conn *websocket.Conn, reason string) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		if !errors.As(err, &closeErr) {
			t.Fatalf("Expected close frame, got %v", err)
		}
		if closeErr.Code != websocket.CloseNormalClosure {
			t.Errorf("Expected close code 1000, got %d", closeErr.Code)
		}
		if closeErr.Text != reason {
			t.Errorf("Expected close reason %q, got %q", reason, closeErr.Text)
		}
		return
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// connectPair dials the greeter and returns the client side plus the
// upstream side after session.update has been consumed.
func connectPair(t *testing.T, srv *httptest.Server, up *fakeUpstream, sessionID string) (*websocket.Conn, *websocket.Conn, map[string]any) {
	t.Helper()
	client := mustDialWS(t, srv, "/ws?sessionId="+sessionID)
	upstream := up.accept(t)
	update := mustReadJSON(t, upstream)
	return client, upstream, update
}

func TestBridgeRejectsMissingSessionID(t *testing.T) {
	up := newFakeUpstream(t)
	srv, _ := newGreeter(t, testConfig(up.url()), newFakeCompliments())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected handshake to fail without sessionId")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %+v", resp)
	}
	if up.dials.Load() != 0 {
		t.Errorf("Upstream must not be dialed, got %d dials", up.dials.Load())
	}
}

func TestBridgeRejectsPlainHTTP(t *testing.T) {
	up := newFakeUpstream(t)
	srv, _ := newGreeter(t, testConfig(up.url()), nil)

	resp, err := http.Get(srv.URL + "/ws?sessionId=abc")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("Expected 426, got %d", resp.StatusCode)
	}
}

func TestBridgeRequiresAPIKey(t *testing.T) {
	up := newFakeUpstream(t)
	cfg := testConfig(up.url())
	cfg.Providers.OpenAI.APIKey = ""
	srv, _ := newGreeter(t, cfg, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?sessionId=abc"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected handshake to fail without api key")
	}
	if resp == nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %+v", resp)
	}
	if up.dials.Load() != 0 {
		t.Errorf("Upstream must not be dialed, got %d dials", up.dials.Load())
	}
}

func TestBridgeConfiguresUpstream(t *testing.T) {
	up := newFakeUpstream(t)
	srv, _ := newGreeter(t, testConfig(up.url()), nil)

	_, _, update := connectPair(t, srv, up, "abc123")

	headers := <-up.headers
	if headers.Get("Authorization") != "Bearer sk-test" {
		t.Errorf("Expected bearer auth, got %q", headers.Get("Authorization"))
	}
	if headers.Get("OpenAI-Beta") != "realtime=v1" {
		t.Errorf("Expected OpenAI-Beta header, got %q", headers.Get("OpenAI-Beta"))
	}

	if update["type"] != "session.update" {
		t.Fatalf("Expected session.update first, got %v", update["type"])
	}
	session := update["session"].(map[string]any)
	if session["voice"] != "alloy" || session["input_audio_format"] != "pcm16" || session["output_audio_format"] != "pcm16" {
		t.Errorf("Unexpected session config: %v", session)
	}
	if !strings.Contains(session["instructions"].(string), "English") {
		t.Errorf("Expected greeter instructions, got %q", session["instructions"])
	}
}

func TestBridgeRelaysFrames(t *testing.T) {
	up := newFakeUpstream(t)
	srv, _ := newGreeter(t, testConfig(up.url()), nil)
	client, upstream, _ := connectPair(t, srv, up, "abc123")

	// client audio -> input_audio_buffer.append
	pcm := []byte{0x10, 0x00, 0xf0, 0xff}
	if err := client.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		t.Fatalf("client write failed: %v", err)
	}
	appended := mustReadJSON(t, upstream)
	if appended["type"] != "input_audio_buffer.append" {
		t.Fatalf("Expected input_audio_buffer.append, got %v", appended["type"])
	}
	if appended["audio"] != base64.StdEncoding.EncodeToString(pcm) {
		t.Errorf("Expected base64 audio, got %v", appended["audio"])
	}

	// client text -> verbatim
	text := []byte(`{"type":"response.create"}`)
	_ = client.WriteMessage(websocket.TextMessage, text)
	if _, got := mustRead(t, upstream); !bytes.Equal(got, text) {
		t.Errorf("Expected verbatim text, got %s", got)
	}

	// upstream audio delta -> binary frame
	audio := []byte{1, 2, 3, 4}
	delta := `{"type":"response.audio.delta","delta":"` + base64.StdEncoding.EncodeToString(audio) + `"}`
	_ = upstream.WriteMessage(websocket.TextMessage, []byte(delta))
	messageType, got := mustRead(t, client)
	if messageType != websocket.BinaryMessage || !bytes.Equal(got, audio) {
		t.Errorf("Expected binary %v, got type %d %v", audio, messageType, got)
	}

	// any other upstream event -> verbatim
	other := []byte(`{"type":"response.audio_transcript.delta","delta":"Hi"}`)
	_ = upstream.WriteMessage(websocket.TextMessage, other)
	messageType, got = mustRead(t, client)
	if messageType != websocket.TextMessage || !bytes.Equal(got, other) {
		t.Errorf("Expected verbatim event, got type %d %s", messageType, got)
	}
}

func TestBridgeInjectsCompliment(t *testing.T) {
	up := newFakeUpstream(t)
	store := newFakeCompliments()
	srv, _ := newGreeter(t, testConfig(up.url()), store)
	_, upstream, _ := connectPair(t, srv, up, "abc123")

	// several ticks against an empty store
	waitFor(t, "injector ticks", func() bool { return store.reads.Load() >= 3 })
	if store.deletes.Load() != 0 {
		t.Errorf("Nothing should be deleted while the store is empty")
	}

	store.put("abc123", "You have a great smile!")

	_, data := mustRead(t, upstream)
	want := `{"type":"conversation.item.create","item":{"type":"message","role":"system","content":[{"type":"text","text":"Vision context: You have a great smile!"}]}}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
	waitFor(t, "key deletion", func() bool { return !store.has("abc123") })

	// later ticks find nothing and must not repeat the injection
	reads := store.reads.Load()
	waitFor(t, "ticks after deletion", func() bool { return store.reads.Load() >= reads+3 })
	_ = upstream.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, extra, err := upstream.ReadMessage(); err == nil {
		t.Errorf("Expected no second injection, got %s", extra)
	}
}

func TestBridgeInjectOnceMode(t *testing.T) {
	up := newFakeUpstream(t)
	store := newFakeCompliments()
	store.put("s1", "Nice scarf!")
	cfg := testConfig(up.url())
	cfg.Bridge.InjectionMode = config.InjectionOnce
	srv, _ := newGreeter(t, cfg, store)
	_, upstream, _ := connectPair(t, srv, up, "s1")

	msg := mustReadJSON(t, upstream)
	if msg["type"] != "conversation.item.create" {
		t.Fatalf("Expected injected compliment, got %v", msg["type"])
	}
	time.Sleep(100 * time.Millisecond)
	if reads := store.reads.Load(); reads != 1 {
		t.Errorf("Expected a single store read in once mode, got %d", reads)
	}
}

func TestBridgeClientCloseTearsDown(t *testing.T) {
	up := newFakeUpstream(t)
	store := newFakeCompliments()
	srv, h := newGreeter(t, testConfig(up.url()), store)
	client, upstream, _ := connectPair(t, srv, up, "abc123")
	waitFor(t, "injector ticks", func() bool { return store.reads.Load() >= 1 })

	_ = client.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	expectClose(t, upstream, ReasonClientDisconnected)

	waitFor(t, "bridge unregistered", func() bool { return h.Stats().ActiveBridges == 0 })
	reads := store.reads.Load()
	time.Sleep(100 * time.Millisecond)
	if after := store.reads.Load(); after != reads {
		t.Errorf("Store read after teardown: %d -> %d", reads, after)
	}
}

func TestBridgeUpstreamCloseClosesClient(t *testing.T) {
	up := newFakeUpstream(t)
	srv, _ := newGreeter(t, testConfig(up.url()), nil)
	client, upstream, _ := connectPair(t, srv, up, "abc123")

	_ = upstream.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	expectClose(t, client, ReasonUpstreamDisconnected)
}

func TestBridgeUpstreamDropSendsErrorEvent(t *testing.T) {
	up := newFakeUpstream(t)
	srv, _ := newGreeter(t, testConfig(up.url()), nil)
	client, upstream, _ := connectPair(t, srv, up, "abc123")

	_ = upstream.UnderlyingConn().Close()

	msg := mustReadJSON(t, client)
	if msg["type"] != "error" {
		t.Fatalf("Expected error event before close, got %v", msg)
	}
	expectClose(t, client, ReasonUpstreamError)
}

func TestBridgeUpstreamUnavailable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := "ws" + strings.TrimPrefix(dead.URL, "http")
	dead.Close()

	srv, _ := newGreeter(t, testConfig(deadURL), nil)
	client := mustDialWS(t, srv, "/ws?sessionId=abc123")

	msg := mustReadJSON(t, client)
	if msg["type"] != "error" {
		t.Fatalf("Expected error event, got %v", msg)
	}
	expectClose(t, client, ReasonUpstreamUnavailable)
}

func TestBridgeStats(t *testing.T) {
	up := newFakeUpstream(t)
	srv, h := newGreeter(t, testConfig(up.url()), nil)
	connectPair(t, srv, up, "abc123")

	waitFor(t, "relaying state", func() bool {
		stats := h.Stats()
		return stats.ActiveBridges == 1 && stats.Bridges[0].State == StateRelaying
	})

	resp, err := http.Get(srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("GET stats failed: %v", err)
	}
	defer resp.Body.Close()
	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.ActiveBridges != 1 || stats.Bridges[0].SessionID != "abc123" {
		t.Fatalf("Unexpected stats: %+v", stats)
	}
	if h.ActiveBridges() != 1 {
		t.Errorf("Expected 1 active bridge, got %d", h.ActiveBridges())
	}

	one, err := http.Get(srv.URL + "/ws/stats/" + stats.Bridges[0].ID.String())
	if err != nil {
		t.Fatalf("GET bridge stats failed: %v", err)
	}
	defer one.Body.Close()
	var single BridgeStats
	if err := json.NewDecoder(one.Body).Decode(&single); err != nil {
		t.Fatalf("decode bridge stats: %v", err)
	}
	if single.ID != stats.Bridges[0].ID || single.SessionID != "abc123" {
		t.Errorf("Unexpected bridge stats: %+v", single)
	}

	for path, want := range map[string]int{
		"/ws/stats/not-a-uuid":                           http.StatusBadRequest,
		"/ws/stats/00000000-0000-0000-0000-000000000000": http.StatusNotFound,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}

func TestEchoOnlyInDebug(t *testing.T) {
	cfg := testConfig("ws://unused")
	cfg.Debug = true
	srv, _ := newGreeter(t, cfg, nil)

	conn := mustDialWS(t, srv, "/ws-echo")
	_ = conn.WriteMessage(websocket.TextMessage, []byte("hello"))
	if _, got := mustRead(t, conn); string(got) != "Echo: hello" {
		t.Errorf("Expected echo, got %q", got)
	}

	srv2, _ := newGreeter(t, testConfig("ws://unused"), nil)
	resp, err := http.Get(srv2.URL + "/ws-echo")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected echo route to be absent outside debug, got %d", resp.StatusCode)
	}
}
