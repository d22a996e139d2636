package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anicoll/homedash/internal/pkg/contxt"
	"github.com/anicoll/homedash/internal/pkg/model"
	"github.com/anicoll/homedash/pkg/sockets"
)

const defaultCommandTimeout = 10 * time.Second

var (
	errMissingDevice = errors.New("deviceId is required")
	errMissingAction = errors.New("action is required")
)

type stateReader interface {
	Snapshot() model.Snapshot
	Device(id string) (model.Device, bool)
}

type commander interface {
	Select(deviceID string) model.CommandSlot
	Dispatch(ctx context.Context, deviceID, action string, value any) model.CommandResult
	Result() model.CommandSlot
}

type connectionHub interface {
	Add(c sockets.Connection)
}

type Option func(*server)

func WithLogger(l *zap.Logger) Option {
	return func(s *server) {
		s.logger = l
	}
}

// WithCommandTimeout bounds how long a command may take once accepted. The
// command outlives the request that carried it.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *server) {
		s.commandTimeout = d
	}
}

type server struct {
	state          stateReader
	commands       commander
	hub            connectionHub
	logger         *zap.Logger
	commandTimeout time.Duration
	upgrader       websocket.Upgrader
}

func New(state stateReader, commands commander, hub connectionHub, opts ...Option) *server {
	s := &server{
		state:          state,
		commands:       commands,
		hub:            hub,
		logger:         zap.L(),
		commandTimeout: defaultCommandTimeout,
		upgrader: websocket.Upgrader{
			// Origins are echoed by LoggingMiddleware, the socket follows suit.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler routes the presentation bridge.
func (s *server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.logger))

	r.Get("/ws", s.GetSocket)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.GetState)
		r.Get("/devices", s.GetDevices)
		r.Get("/events", s.GetEvents)
		r.Post("/devices/{id}/select", s.PostSelect)
		r.Post("/control", s.PostControl)
	})
	return r
}

func (s *server) view() model.View {
	return model.View{Snapshot: s.state.Snapshot(), Command: s.commands.Result()}
}

func (s *server) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

func (s *server) GetDevices(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.Snapshot()
	writeJSON(w, http.StatusOK, DevicesResponse{Devices: snap.Devices, Status: snap.Status.Devices})
}

func (s *server) GetEvents(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.Snapshot()
	writeJSON(w, http.StatusOK, EventsResponse{Events: snap.Events, Status: snap.Status.Events})
}

func (s *server) PostSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.state.Device(id); !ok {
		handleError(w, http.StatusNotFound, fmt.Errorf("device %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, s.commands.Select(id))
}

func (s *server) PostControl(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[model.CommandRequest](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	switch {
	case req.DeviceID == "":
		handleError(w, http.StatusBadRequest, errMissingDevice)
		return
	case req.Action == "":
		handleError(w, http.StatusBadRequest, errMissingAction)
		return
	}

	ctx, cancel := contxt.Detached(r.Context(), s.commandTimeout)
	defer cancel()
	s.logger.Info("dispatching command", zap.String("device_id", req.DeviceID), zap.String("action", req.Action))
	writeJSON(w, http.StatusOK, s.commands.Dispatch(ctx, req.DeviceID, req.Action, req.Value))
}

func (s *server) GetSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.Add(sockets.New(ws, sockets.OnError(func(err error) {
		s.logger.Debug("websocket client gone", zap.Error(err))
	})))
}

func handleError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	var out T
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return &out, nil
}
