package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablewise/bistro-cli/internal/engine"
	"github.com/tablewise/bistro-cli/internal/model"
	"github.com/tablewise/bistro-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assessment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		eng, err := initEngine()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, eng),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter wires the assessment API routes.
func newRouter(st store.Store, eng *engine.Engine) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/assess", handleAssess(st, eng))
		r.Get("/records", handleListRecords(st))
		r.Get("/records/{id}/assessment", handleGetAssessment(st, eng))
	})

	return r
}

func handleAssess(st store.Store, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var record model.SurveyRecord
		if err := json.NewDecoder(req.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		a := eng.Assess(record)

		// Records carrying an ID get persisted along with their result.
		if record.ID != "" {
			if _, err := st.SaveRecord(req.Context(), record); err != nil {
				zap.L().Error("save record failed", zap.String("record_id", record.ID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "persist failed")
				return
			}
			if err := st.SaveAssessment(req.Context(), a); err != nil {
				zap.L().Error("save assessment failed", zap.String("record_id", record.ID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "persist failed")
				return
			}
		}

		writeJSON(w, http.StatusOK, a)
	}
}

func handleListRecords(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		records, err := st.ListRecords(req.Context(), store.RecordFilter{
			BusinessType: model.BusinessType(req.URL.Query().Get("type")),
		})
		if err != nil {
			zap.L().Error("list records failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		if records == nil {
			records = []model.SurveyRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleGetAssessment(st store.Store, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")

		record, err := st.GetRecord(req.Context(), id)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "record not found")
				return
			}
			zap.L().Error("get record failed", zap.String("record_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}

		// Serve the stored assessment when one exists; otherwise compute
		// on demand.
		a, err := st.GetAssessment(req.Context(), id)
		if err != nil {
			a = eng.Assess(*record)
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
