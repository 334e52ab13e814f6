package costs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"despensa/internal/config"
	"despensa/internal/logger"
	"despensa/internal/rates"
	"despensa/internal/warehouse"
)

const reportDateLayout = "2006-01-02"

// QuoteSource yields the USD→ARS rate for a day.
type QuoteSource interface {
	USDToARS(ctx context.Context, date string) (float64, error)
}

var _ QuoteSource = (*rates.Service)(nil)

type Server struct {
	cfg    config.Config
	quotes QuoteSource
	server *http.Server
}

func NewServer(cfg config.Config, quotes QuoteSource) *Server {
	s := &Server{cfg: cfg, quotes: quotes}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculate", s.handleCalculate)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:         cfg.CostServerAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	logger.Info("cost server listening", "addr", s.cfg.CostServerAddr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(reportDateLayout)
	}
	if _, err := time.Parse(reportDateLayout, date); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Formato de fecha inválido. Use YYYY-MM-DD"})
		return
	}

	// a failed quote lookup degrades the report, never the request
	rate := 0.0
	if quoted, err := s.quotes.USDToARS(r.Context(), date); err != nil {
		logger.Warn("usd quote unavailable", "date", date, "err", err)
	} else {
		rate = quoted
	}

	wh, err := warehouse.Load(s.cfg.WarehousePath)
	if err != nil {
		logger.Error("warehouse unreadable", "path", s.cfg.WarehousePath, "err", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "warehouse unavailable"})
		return
	}

	respondJSON(w, http.StatusOK, BuildReport(wh, date, rate))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("response not encoded", "err", err)
	}
}
