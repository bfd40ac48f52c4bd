package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yegors/stdatmo/internal/observability"
	"github.com/yegors/stdatmo/internal/profile"
	"github.com/yegors/stdatmo/pkg/logger"
)

// Message types sent to profile stream clients
const (
	MessageTypeProfileStart    = "profile_start"
	MessageTypeProfileSample   = "profile_sample"
	MessageTypeProfileComplete = "profile_complete"
	MessageTypeError           = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StreamRequest describes the sweep a client asked for
type StreamRequest struct {
	FromM float64 `json:"from_m"`
	ToM   float64 `json:"to_m"`
	StepM float64 `json:"step_m"`
	Count int     `json:"count"`
}

// Streamer upgrades HTTP requests and streams profile samples over them
type Streamer struct {
	upgrader     websocket.Upgrader
	limits       profile.Limits
	interval     time.Duration
	writeTimeout time.Duration
	metrics      *observability.Metrics
	logger       *logger.Logger
}

// NewStreamer creates a profile streamer. metrics may be nil.
func NewStreamer(limits profile.Limits, interval, writeTimeout time.Duration, metrics *observability.Metrics, logger *logger.Logger) *Streamer {
	return &Streamer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		limits:       limits,
		interval:     interval,
		writeTimeout: writeTimeout,
		metrics:      metrics,
		logger:       logger.Named("web-socket"),
	}
}

// Upgrade switches the request to the websocket protocol. On failure the
// upgrader has already written an HTTP error response.
func (s *Streamer) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Failed to upgrade connection",
			logger.Error(err),
			logger.String("remote_addr", r.RemoteAddr))
		return nil, err
	}
	return conn, nil
}

// Serve streams the sweep described by req over an upgraded connection and
// closes it. The range must already have been validated by the caller.
func (s *Streamer) Serve(ctx context.Context, conn *websocket.Conn, req StreamRequest) {
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.StreamsActive.Inc()
		defer s.metrics.StreamsActive.Dec()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readPump(conn, cancel)

	log := s.logger.With(logger.String("remote_addr", conn.RemoteAddr().String()))

	start := time.Now()
	log.Debug("Profile stream started",
		logger.Time("started_at", start),
		logger.Float64("from_m", req.FromM),
		logger.Float64("to_m", req.ToM),
		logger.Float64("step_m", req.StepM))

	summary, err := s.stream(ctx, conn, req)
	if err != nil {
		log.Warn("Profile stream ended with error",
			logger.Error(err),
			logger.Bool("client_gone", ctx.Err() != nil))
		if ctx.Err() == nil {
			s.write(conn, &Message{Type: MessageTypeError, Data: map[string]string{"error": err.Error()}})
		}
		return
	}

	log.Debug("Profile stream complete",
		logger.Int("samples", summary.Count),
		logger.Bool("extrapolated", summary.ExtrapolatedSamples > 0),
		logger.Duration("duration", time.Since(start)))

	deadline := time.Now().Add(s.writeTimeout)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "profile complete"), deadline)
}

func (s *Streamer) stream(ctx context.Context, conn *websocket.Conn, req StreamRequest) (profile.Summary, error) {
	if err := s.write(conn, &Message{Type: MessageTypeProfileStart, Data: req}); err != nil {
		return profile.Summary{}, err
	}

	samples := make([]profile.Sample, 0, req.Count)
	err := profile.Each(ctx, req.FromM, req.ToM, req.StepM, s.limits, func(sample profile.Sample) error {
		samples = append(samples, sample)
		if err := s.write(conn, &Message{Type: MessageTypeProfileSample, Data: sample}); err != nil {
			return err
		}
		return s.wait(ctx)
	})
	if err != nil {
		return profile.Summary{}, err
	}

	summary, err := profile.Summarize(samples)
	if err != nil {
		return profile.Summary{}, err
	}
	if s.metrics != nil {
		s.metrics.ProfileSamples.Observe(float64(len(samples)))
		if summary.ExtrapolatedSamples > 0 {
			s.metrics.Extrapolated.Add(float64(summary.ExtrapolatedSamples))
		}
	}
	return summary, s.write(conn, &Message{Type: MessageTypeProfileComplete, Data: summary})
}

func (s *Streamer) wait(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Streamer) write(conn *websocket.Conn, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readPump drains client frames so control messages are processed, and
// cancels the stream once the client goes away
func (s *Streamer) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", logger.Error(err))
			}
			return
		}
	}
}
