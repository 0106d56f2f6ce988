// Package server exposes the bridge's HTTP surface: entity state, command
// invocation, health, and metrics.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
	"github.com/bswanson58/NoiseHass/internal/pkg/player"
)

type mediaEntity interface {
	Snapshot() model.EntitySnapshot
	Invoke(command, parameter string) error
}

type busHealth interface {
	IsConnected() bool
}

type server struct {
	entity mediaEntity
	bus    busHealth
	logger *zap.Logger
}

func New(entity mediaEntity, bus busHealth) *server {
	return &server{entity: entity, bus: bus, logger: zap.L()}
}

// Router wires the HTTP routes.
func (s *server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)
	r.Get("/healthz", s.getHealth)
	r.Get("/api/v1/state", s.getState)
	r.Post("/api/v1/command", s.postCommand)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *server) getState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.entity.Snapshot()); err != nil {
		s.logger.Error("failed to encode state", zap.Error(err))
	}
}

func (s *server) getHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.bus.IsConnected() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("bus disconnected"))
		return
	}
	w.Write([]byte("ok"))
}

func (s *server) postCommand(w http.ResponseWriter, r *http.Request) {
	commandReq, err := unmarshalPayload[model.CommandMessage](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.entity.Invoke(commandReq.Command, commandReq.Parameter); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, player.ErrUnknownCommand) || errors.Is(err, player.ErrBadParameter) {
			status = http.StatusBadRequest
		}
		handleError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("success"))
}

func unmarshalPayload[T any](r *http.Request) (T, error) {
	payload := *new(T)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func handleError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	w.Write([]byte(err.Error()))
}
