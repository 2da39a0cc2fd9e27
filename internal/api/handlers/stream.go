package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	progressBuffer = 64
)

// newUpgrader accepts the listed origins. Empty keeps gorilla's same-origin
// check; "*" accepts everything.
func newUpgrader(allowed []string) websocket.Upgrader {
	u := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	if len(allowed) == 0 {
		return u
	}

	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	u.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
	return u
}

// StreamMessage is one frame on /ws/scan. Type is "progress", "report"
// or "error".
type StreamMessage struct {
	Type   string        `json:"type"`
	Done   int           `json:"done,omitempty"`
	Total  int           `json:"total,omitempty"`
	Symbol string        `json:"symbol,omitempty"`
	Report *ScanResponse `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// StreamHandler runs a scan and pushes progress over a websocket
type StreamHandler struct {
	runner   Runner
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a new websocket scan handler
func NewStreamHandler(runner Runner, allowedOrigins []string, log *logger.Logger) *StreamHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &StreamHandler{
		runner:   runner,
		upgrader: newUpgrader(allowedOrigins),
		logger:   log.WithField("module", "scan_stream"),
	}
}

// Handle upgrades the connection and runs one scan.
// GET /ws/scan?symbols=2330.TW,2317.TW&top_n=10
// Closing the socket cancels the scan.
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if s := r.URL.Query().Get("symbols"); s != "" {
		for _, sym := range strings.Split(s, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				req.Symbols = append(req.Symbols, sym)
			}
		}
	}
	if err := applyQueryTopN(r, &req); err != nil {
		respondRequestError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()
	// the hijacked conn keeps the server's request read deadline
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// reader: any read error means the client is gone
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	events := make(chan StreamMessage, progressBuffer)
	written := make(chan struct{})
	go func() {
		defer close(written)
		for msg := range events {
			if err := h.write(conn, msg); err != nil {
				cancel()
			}
		}
	}()

	var progress contracts.ProgressFunc = func(done, total int, symbol string) {
		select {
		case events <- StreamMessage{Type: "progress", Done: done, Total: total, Symbol: symbol}:
		case <-ctx.Done():
		}
	}

	report, runErr := h.runner.Run(ctx, req.Symbols, progress)
	close(events)
	<-written

	final := StreamMessage{Type: "report"}
	switch {
	case runErr != nil && report == nil:
		final = StreamMessage{Type: "error", Error: runErr.Error()}
	case runErr != nil:
		resp := newScanResponse(report, req.TopN)
		final.Report = &resp
		final.Error = runErr.Error()
	default:
		resp := newScanResponse(report, req.TopN)
		final.Report = &resp
	}

	if err := h.write(conn, final); err != nil {
		h.logger.WithError(err).Debug("Failed to write final frame")
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *StreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// applyQueryTopN reads top_n from the query string, then applies defaults
// and validation the same way a JSON body would.
func applyQueryTopN(r *http.Request, req *ScanRequest) error {
	if s := r.URL.Query().Get("top_n"); s != "" {
		n, err := parsePositive(s)
		if err != nil {
			return &RequestError{Message: "top_n must be a positive integer"}
		}
		req.TopN = n
	}
	return validateRequest(r.Context(), req)
}
