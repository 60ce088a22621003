// Package httpapi exposes the field client's submit and sync-state seams on
// a local HTTP port, for a browser or kiosk UI running next to the client.
//
//	GET  /api/sync/state   current SyncState and whether a run is in flight
//	POST /api/sync         run a sync now
//	GET  /api/sync/events  websocket stream of SyncState changes
//	POST /api/vins         submit a VIN {"vin": "..."}
//	GET  /api/vins/local   local audit trail, newest first
//	GET  /api/scan         acquisition mode and scan status
//	POST /api/scan/stop    stop a running camera scan
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/vinscanner/internal/client/acquisition"
	"github.com/dmitrijs2005/vinscanner/internal/client/models"
	"github.com/dmitrijs2005/vinscanner/internal/client/services"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
	"github.com/dmitrijs2005/vinscanner/internal/vin"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// SyncService is the part of services.SyncEngine the API needs.
type SyncService interface {
	State() services.SyncState
	Subscribe() (<-chan services.SyncState, func())
	SyncNow(ctx context.Context) (services.SyncResult, error)
	Running() bool
}

// ScanControl is the part of acquisition.Controller the API needs.
type ScanControl interface {
	Status() acquisition.Status
	Stop()
}

// LocalRecords lists the local queue.
type LocalRecords interface {
	ListAll(ctx context.Context) ([]*models.VinRecord, error)
}

type Server struct {
	sync      SyncService
	submitter services.Submitter
	records   LocalRecords
	scans     ScanControl
	logger    logging.Logger
	upgrader  websocket.Upgrader
	router    *mux.Router
}

func NewServer(sync SyncService, submitter services.Submitter, records LocalRecords, scans ScanControl, logger logging.Logger) *Server {
	s := &Server{
		sync:      sync,
		submitter: submitter,
		records:   records,
		scans:     scans,
		logger:    logger.With("module", "httpapi"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sync/state", s.getState).Methods(http.MethodGet)
	api.HandleFunc("/sync", s.postSync).Methods(http.MethodPost)
	api.HandleFunc("/sync/events", s.syncEvents).Methods(http.MethodGet)
	api.HandleFunc("/vins", s.postVIN).Methods(http.MethodPost)
	api.HandleFunc("/vins/local", s.getLocal).Methods(http.MethodGet)
	api.HandleFunc("/scan", s.getScan).Methods(http.MethodGet)
	api.HandleFunc("/scan/stop", s.postScanStop).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "local API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "local API shutdown error", "error", err)
		return err
	}
	s.logger.Info(ctx, "local API stopped")
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type submitRequest struct {
	VIN string `json:"vin"`
}

type stateResponse struct {
	services.SyncState
	Running bool `json:"running"`
}

type scanStatus struct {
	Mode     string `json:"mode"`
	Scanning bool   `json:"scanning"`
	LastVIN  string `json:"last_vin,omitempty"`
	LastErr  string `json:"last_error,omitempty"`
}

func toScanStatus(st acquisition.Status) scanStatus {
	out := scanStatus{Mode: st.Mode.String(), Scanning: st.Scanning, LastVIN: st.LastVIN}
	if st.LastError != nil {
		out.LastErr = st.LastError.Error()
	}
	return out
}

type localRecord struct {
	LocalID    int64      `json:"local_id"`
	VIN        string     `json:"vin"`
	CapturedAt time.Time  `json:"captured_at"`
	Synced     bool       `json:"synced"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, stateResponse{SyncState: s.sync.State(), Running: s.sync.Running()})
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toScanStatus(s.scans.Status()))
}

func (s *Server) postScanStop(w http.ResponseWriter, r *http.Request) {
	s.scans.Stop()
	respondJSON(w, http.StatusOK, toScanStatus(s.scans.Status()))
}

func (s *Server) postSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.sync.SyncNow(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, common.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) postVIN(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.submitter.Submit(r.Context(), req.VIN)
	switch {
	case err == nil:
		status := http.StatusCreated
		if res.Path == services.PathQueued {
			status = http.StatusAccepted
		}
		respondJSON(w, status, res)
	case errors.Is(err, vin.ErrFormat), errors.Is(err, vin.ErrChecksum):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, common.ErrRemoteAppend):
		respondError(w, http.StatusBadGateway, err)
	default:
		s.logger.Error(r.Context(), "submit failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) getLocal(w http.ResponseWriter, r *http.Request) {
	list, err := s.records.ListAll(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "failed to list local records", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]localRecord, 0, len(list))
	for _, rec := range list {
		out = append(out, localRecord{
			LocalID:    rec.LocalID,
			VIN:        rec.VIN,
			CapturedAt: rec.CapturedAt,
			Synced:     rec.Synced,
			SyncedAt:   rec.SyncedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// syncEvents pushes the current state and every later change until the
// peer goes away.
func (s *Server) syncEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	states, unsubscribe := s.sync.Subscribe()
	defer unsubscribe()

	// The read loop only notices the peer closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case st, ok := <-states:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(st); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
