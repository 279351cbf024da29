package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/examscore/pkg/metrics"
	"github.com/mchmarny/examscore/pkg/predict"
	"github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
	serverMaxBodyBytes        = 1 << 20
	serverMaxBatchRecords     = 10000

	requestIDHeader = "X-Request-ID"

	addressFlag = "address"
)

func newServeCmd() *cli.Command {
	return &cli.Command{
		Name:            "serve",
		Aliases:         []string{"server"},
		Usage:           "Start the prediction HTTP API",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    addressFlag,
				Usage:   "Address on which the server will listen (default: from config)",
				Sources: cli.EnvVars("EXAMSCORE_ADDRESS"),
			},
		},
		Action: cmdServe,
	}
}

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	address := cfg.Config.Address
	if cmd.IsSet(addressFlag) {
		address = cmd.String(addressFlag)
	}

	// artifacts must load before the listener opens
	p, err := cfg.loadPredictor()
	if err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(p, cfg.Config.Workers),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server started",
		"address", fmt.Sprintf("http://%s", address),
		"model", p.ModelLabel(),
		"source", p.Source(),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(p *predict.Predictor, workers int) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /predict", predictAPIHandler(p))
	mux.HandleFunc("POST /predict/batch", batchAPIHandler(p, workers))
	mux.HandleFunc("GET /schema", schemaAPIHandler(p))
	mux.HandleFunc("GET /health", healthAPIHandler(p))
	mux.Handle("GET /metrics", metrics.Handler())

	return withRequestID(mux)
}

// withRequestID propagates the caller's request ID or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

type apiError struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// writePredictError maps pipeline errors to a status: caller data
// problems are 400, everything else is 500.
func writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	reason := predict.Reason(err)
	if predict.IsInputError(err) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error(), Reason: reason})
		return
	}
	slog.Error("prediction failed",
		"id", w.Header().Get(requestIDHeader),
		"path", r.URL.Path,
		"reason", reason,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error(), Reason: reason})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, serverMaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func predictAPIHandler(p *predict.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if !decodeBody(w, r, &body) {
			return
		}
		m, err := stringValues(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := p.PredictMap(m)
		if err != nil {
			writePredictError(w, r, err)
			return
		}
		if r.URL.Query().Get("features") != "true" {
			res.Features = nil
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func batchAPIHandler(p *predict.Predictor, workers int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []map[string]any
		if !decodeBody(w, r, &body) {
			return
		}
		if len(body) > serverMaxBatchRecords {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("batch of %d records exceeds limit of %d", len(body), serverMaxBatchRecords))
			return
		}

		rows := make([]map[string]string, len(body))
		for i, obj := range body {
			m, err := stringValues(obj)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("record %d: %v", i, err))
				return
			}
			rows[i] = m
		}

		out, err := p.PredictBatch(r.Context(), rows, workers)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		res := batchResult{Total: len(out), Results: out}
		for _, o := range out {
			if o.Err != nil {
				res.Failed++
			}
			if o.Prediction != nil && r.URL.Query().Get("features") != "true" {
				o.Prediction.Features = nil
			}
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func schemaAPIHandler(p *predict.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, newSchemaInfo(p))
	}
}

func healthAPIHandler(p *predict.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"model":   p.ModelLabel(),
			"version": version,
		})
	}
}
