package api

import (
	"net/http"
	"time"

	models "AutoTrade/internal/domain/models"
	xhttp "AutoTrade/pkg/http"
	applogger "AutoTrade/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	minStreamInterval = 500 * time.Millisecond
	streamWriteWait   = 10 * time.Second
	streamPongWait    = 90 * time.Second
	streamPingEvery   = 45 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Stream pushes a fresh prediction for the symbol every interval seconds until
// the client goes away.
func (h *PredictEchoHandler) Stream(c echo.Context) error {
	const endpoint = "stream"
	if !h.allow(c, endpoint) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.fail(endpoint)
		return xhttp.BadRequestResponse(c, verr)
	}
	interval := time.Duration(req.Interval * float64(time.Second))
	if interval < minStreamInterval {
		interval = minStreamInterval
	}
	shape := models.NormalizeChartShape(req.Chart)

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.fail(endpoint)
		h.l.Warn("stream upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
		defer h.metrics.StreamClients.Dec()
	}
	l := h.l.With(applogger.String("symbol", req.Symbol), applogger.String("remote", c.RealIP()))
	l.Info("stream opened", applogger.Duration("interval", interval))

	// reader: only control frames are expected; any read error ends the stream
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request().Context()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	for {
		res := h.svc.Predict(ctx, req.Symbol, shape)
		if res.DataSource == models.SourceError {
			h.fail(endpoint)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(res); err != nil {
			l.Debug("stream write failed", applogger.Error(err))
			return nil
		}

	next:
		for {
			select {
			case <-closed:
				l.Info("stream closed by client")
				return nil
			case <-ctx.Done():
				return nil
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return nil
				}
			case <-tick.C:
				break next
			}
		}
	}
}
