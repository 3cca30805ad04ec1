package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/peter-kozarec/ringstat/pkg/sensor"
)

const (
	DefaultStreamInterval = time.Second
	streamWriteTimeout    = 5 * time.Second
)

// StreamHandler pushes every sensor snapshot over a websocket at a fixed
// interval. Each binary frame is a protobuf ListValue of Structs.
type StreamHandler struct {
	logger   *zap.Logger
	registry *sensor.Registry
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewStreamHandler(logger *zap.Logger, registry *sensor.Registry, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &StreamHandler{
		logger:   logger,
		registry: registry,
		interval: interval,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("remote", req.RemoteAddr))
	logger.Debug("stream opened")

	// Incoming frames are ignored, reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.send(conn); err != nil {
			logger.Warn("stream write failed", zap.Error(err))
			return
		}
		select {
		case <-closed:
			logger.Debug("stream closed")
			return
		case <-req.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandler) send(conn *websocket.Conn) error {
	snapshots := h.registry.Snapshots()
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(snapshots))}
	for _, snap := range snapshots {
		st, err := snap.Proto()
		if err != nil {
			return err
		}
		list.Values = append(list.Values, structpb.NewStructValue(st))
	}

	data, err := proto.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "marshal snapshots")
	}
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return errors.Wrap(err, "write deadline")
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
