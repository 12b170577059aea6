package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"prospec-live/internal/config"
	"prospec-live/internal/dto"
	"prospec-live/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// State of the recognizer transport.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateStreaming    State = "STREAMING"
	StateRestFallback State = "REST_FALLBACK"
)

// TranscriptTopic is the in-process pipeline topic recognizer results are
// published on.
const TranscriptTopic = "transcript_segments"

// Session is the finalized summary returned by Stop.
type Session struct {
	Id         uuid.UUID `json:"sessionId"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Transcript string    `json:"transcript"`
	Duration   float64   `json:"duration"`
}

// Dialer matches gorilla's websocket.Dialer.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// TransportManager owns the connection to the speech recognizer. It prefers
// the persistent streaming socket and degrades to chunked REST submission when
// the socket cannot be established or dies mid-session. Recognition results
// are published on the in-process pipeline; consumers assemble them into
// paragraphs.
type TransportManager struct {
	cfg        config.RecognizerConfig
	open       OpenCapture
	pubSub     *gochannel.GoChannel
	dialer     Dialer
	httpClient *http.Client
	logger     logger.ILogger

	mu         sync.Mutex
	state      State
	lastErr    error
	session    *Session
	sessionId  uuid.UUID
	startTime  time.Time
	transcript string
	capture    CaptureSource
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewTransportManager(cfg config.RecognizerConfig, open OpenCapture, pubSub *gochannel.GoChannel, log logger.ILogger) *TransportManager {
	return &TransportManager{
		cfg:        cfg,
		open:       open,
		pubSub:     pubSub,
		dialer:     &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		httpClient: &http.Client{Timeout: 20 * time.Second},
		state:      StateDisconnected,
		logger:     log,
	}
}

// State reports the current transport state for the session indicator.
func (m *TransportManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the most recent pipeline error, if any. Non-fatal errors (quota,
// auth during fallback) are recorded here without tearing the session down.
func (m *TransportManager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Start acquires the capture device and connects to the recognizer. A session
// already in progress is fully stopped first; the capture handle is exclusive.
// Streaming handshake failures degrade to REST fallback silently; credential
// and quota rejections during the handshake are surfaced instead, since the
// fallback endpoint shares the same credentials.
func (m *TransportManager) Start(ctx context.Context) error {
	m.Stop()

	m.mu.Lock()
	m.state = StateConnecting
	m.lastErr = nil
	m.session = nil
	m.transcript = ""
	m.sessionId = uuid.New()
	m.startTime = time.Now()
	m.mu.Unlock()

	capture, err := m.open(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = StateDisconnected
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}

	sessionCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.capture = capture
	m.cancel = cancel
	m.mu.Unlock()

	conn, resp, err := m.dialer.DialContext(ctx, m.cfg.StreamURL, http.Header{
		"Authorization": []string{"Token " + m.cfg.APIKey},
	})
	if err != nil {
		if rejection := classifyHandshake(resp); rejection != nil {
			m.releaseForStartError()
			return rejection
		}
		// Handshake timed out or the endpoint is unreachable: degrade without
		// user intervention.
		m.setState(StateRestFallback)
		m.logger.Warn("AudioTransport", "Streaming handshake failed, falling back to REST", map[string]interface{}{
			"session_id": m.sessionId,
			"error":      err.Error(),
		})
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runFallback(sessionCtx, capture)
		}()
		return nil
	}

	m.setState(StateStreaming)
	m.logger.Info("AudioTransport", "Streaming session started", map[string]interface{}{
		"session_id": m.sessionId,
	})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		streamErr := m.runStreaming(sessionCtx, conn, capture)
		if sessionCtx.Err() != nil || streamErr == nil {
			return
		}
		m.mu.Lock()
		m.lastErr = streamErr
		m.state = StateRestFallback
		m.mu.Unlock()
		m.logger.Warn("AudioTransport", "Streaming transport lost, falling back to REST", map[string]interface{}{
			"session_id": m.sessionId,
			"error":      streamErr.Error(),
		})
		m.runFallback(sessionCtx, capture)
	}()
	return nil
}

// Stop tears down the capture device, the streaming socket and any pending
// fallback submission. Idempotent: repeated calls return the same finalized
// summary, and a manager that never started returns nil.
func (m *TransportManager) Stop() *Session {
	m.mu.Lock()
	if m.cancel == nil {
		s := m.session
		m.mu.Unlock()
		return s
	}
	cancel := m.cancel
	capture := m.capture
	m.cancel = nil
	m.capture = nil
	m.mu.Unlock()

	cancel()
	if capture != nil {
		capture.Close()
	}
	m.wg.Wait()

	m.mu.Lock()
	end := time.Now()
	m.session = &Session{
		Id:         m.sessionId,
		StartTime:  m.startTime,
		EndTime:    end,
		Transcript: m.transcript,
		Duration:   end.Sub(m.startTime).Seconds(),
	}
	m.state = StateDisconnected
	s := m.session
	m.mu.Unlock()

	m.logger.Info("AudioTransport", "Session stopped", map[string]interface{}{
		"session_id": s.Id,
		"duration":   s.Duration,
	})
	return s
}

func (m *TransportManager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *TransportManager) releaseForStartError() {
	m.mu.Lock()
	cancel := m.cancel
	capture := m.capture
	m.cancel = nil
	m.capture = nil
	m.state = StateDisconnected
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if capture != nil {
		capture.Close()
	}
}

func classifyHandshake(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthenticationFailed
	case http.StatusTooManyRequests:
		return ErrQuotaExceeded
	}
	return nil
}

// streamResult is the recognizer's streaming message shape.
type streamResult struct {
	IsFinal bool `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// runStreaming pumps capture chunks over the socket and relays recognition
// results to the pipeline. Returns nil on clean shutdown, the transport error
// otherwise.
func (m *TransportManager) runStreaming(ctx context.Context, conn *websocket.Conn, capture CaptureSource) error {
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			var res streamResult
			if err := json.Unmarshal(data, &res); err != nil {
				continue
			}
			if len(res.Channel.Alternatives) == 0 {
				continue
			}
			text := strings.TrimSpace(res.Channel.Alternatives[0].Transcript)
			if text == "" {
				continue
			}
			if res.IsFinal {
				m.appendTranscript(text)
			}
			m.publishSegment(text, res.IsFinal)
		}
	}()

	finish := func(err error) error {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
		<-readErr // join the reader
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return finish(nil)
		case err := <-readErr:
			conn.Close()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrTransportClosedAbnormally, err)
		case chunk, ok := <-capture.Chunks():
			if !ok {
				return finish(nil)
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				conn.Close()
				<-readErr
				return fmt.Errorf("%w: %v", ErrTransportClosedAbnormally, err)
			}
		}
	}
}

// runFallback buffers capture audio into larger chunks and submits them one at
// a time to the request/response endpoint. A pending buffer is dropped on
// shutdown rather than submitted.
func (m *TransportManager) runFallback(ctx context.Context, capture CaptureSource) {
	ticker := time.NewTicker(m.cfg.FallbackChunk)
	defer ticker.Stop()

	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-capture.Chunks():
			if !ok {
				return
			}
			buf.Write(chunk)
		case <-ticker.C:
			if buf.Len() == 0 {
				continue
			}
			audio := make([]byte, buf.Len())
			copy(audio, buf.Bytes())
			buf.Reset()
			if err := m.submitChunk(ctx, audio); err != nil {
				m.mu.Lock()
				m.lastErr = err
				m.mu.Unlock()
				m.logger.Warn("AudioTransport", "Fallback submission failed", map[string]interface{}{
					"session_id": m.sessionId,
					"error":      err.Error(),
				})
			}
		}
	}
}

// restResult is the recognizer's request/response body shape.
type restResult struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (m *TransportManager) submitChunk(ctx context.Context, audio []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.RestURL, bytes.NewReader(audio))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthenticationFailed
	case http.StatusTooManyRequests:
		return ErrQuotaExceeded
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fallback endpoint returned %d: %s", resp.StatusCode, body)
	}

	var res restResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return err
	}
	if len(res.Results.Channels) == 0 || len(res.Results.Channels[0].Alternatives) == 0 {
		return nil
	}
	text := strings.TrimSpace(res.Results.Channels[0].Alternatives[0].Transcript)
	if text == "" {
		return nil
	}
	if !m.appendTranscript(text) {
		return nil // duplicate of what we already have
	}
	m.publishSegment(text, true)
	return nil
}

// appendTranscript adds text to the accumulated session transcript with naive
// duplicate suppression: text that is already a suffix of the accumulated
// transcript is skipped. Reports whether the text was appended.
func (m *TransportManager) appendTranscript(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transcript != "" && strings.HasSuffix(m.transcript, text) {
		return false
	}
	if m.transcript == "" {
		m.transcript = text
	} else {
		m.transcript += " " + text
	}
	return true
}

func (m *TransportManager) publishSegment(text string, isFinal bool) {
	payload, err := json.Marshal(dto.PublishTranscriptSegmentMessage{
		SessionId: m.sessionId,
		Text:      text,
		IsFinal:   isFinal,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}
	if err := m.pubSub.Publish(TranscriptTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		m.logger.Warn("AudioTransport", "Failed to publish segment", map[string]interface{}{
			"session_id": m.sessionId,
			"error":      err.Error(),
		})
	}
}
