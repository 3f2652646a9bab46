// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/flight"
	"github.com/relabs-tech/flight_recorder/internal/history"
)

// webState holds the latest reading received from the bench producer.
type webState struct {
	mu   sync.RWMutex
	last flight.Reading
	have bool
}

func (s *webState) set(r flight.Reading) {
	s.mu.Lock()
	s.last = r
	s.have = true
	s.mu.Unlock()
}

func (s *webState) get() (flight.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.have
}

// wsHub fans readings out to connected websocket clients.
type wsHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *wsHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	slog.Debug("websocket client connected", "remote", conn.RemoteAddr())

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		slog.Debug("websocket client disconnected", "remote", conn.RemoteAddr())
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *wsHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// newWebMux builds the ground view routes: latest reading, history
// range queries, websocket push and the static UI.
func newWebMux(state *webState, store *history.Store, hub *wsHub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/reading", func(w http.ResponseWriter, r *http.Request) {
		reading, ok := state.get()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(reading); err != nil {
			slog.Warn("json encode failed", "err", err)
		}
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		from, err := msParam(r, "from", 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		to, err := msParam(r, "to", time.Now().UnixMilli())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entries, err := store.Range(from, to)
		if err != nil {
			slog.Warn("history query failed", "err", err)
			http.Error(w, "history query failed", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			slog.Warn("json encode failed", "err", err)
		}
	})

	mux.HandleFunc("/ws", hub.handle)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

func msParam(r *http.Request, name string, def int64) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return ms, nil
}

// RunWeb serves the ground view: live readings from MQTT over HTTP and
// websocket, with a sqlite backed history.
func RunWeb(ctx context.Context, cfg *config.Config) error {
	store, err := history.Open(cfg.Web.HistoryPath)
	if err != nil {
		return fmt.Errorf("history store: %w", err)
	}
	defer store.Close()

	state := &webState{}
	hub := newWSHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	slog.Info("connected to MQTT broker", "broker", cfg.MQTT.Broker)

	token := client.Subscribe(cfg.MQTT.Topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var reading flight.Reading
		if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
			slog.Warn("telemetry unmarshal failed", "err", err)
			return
		}
		state.set(reading)
		if err := store.Insert(time.Now(), reading); err != nil {
			slog.Warn("history insert failed", "err", err)
		}
		payload, err := json.Marshal(reading)
		if err != nil {
			return
		}
		hub.broadcast(payload)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt subscribe: %w", token.Error())
	}
	slog.Info("subscribed", "topic", cfg.MQTT.Topic)

	srv := &http.Server{Addr: cfg.Web.Addr, Handler: newWebMux(state, store, hub, cfg.Web.StaticDir)}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.Web.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
