package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"doc-quiz/internal/app"
	"doc-quiz/internal/extract"
	"doc-quiz/internal/httputil"
	"doc-quiz/internal/pipeline"
)

const successMessage = "Questions and answers generated successfully!"

type generateRequest struct {
	Text string `json:"text" validate:"required"`
}

type generateResponse struct {
	Message   string            `json:"message"`
	Questions []string          `json:"questions"`
	Answers   []pipeline.QAPair `json:"answers"`
}

func main() {
	deps, err := app.Build("gateway", false)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			deps.Log.Error("shutdown failed", "err", err)
		}
	}()

	deps.Log.Info("gateway listening", "addr", srv.Addr, "pipeline_mode", deps.Config.PipelineMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log, deps.Config.RequestTimeout)
	r.Post("/upload", uploadHandler(deps))
	r.Post("/api/generate", generateHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "No file uploaded.", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename == "" {
			httputil.Fail(deps.Log, w, "No file uploaded.", nil, http.StatusBadRequest)
			return
		}
		if !extract.Supported(header.Filename) {
			httputil.Fail(deps.Log, w, "Uploaded file is not a PDF or text file.", nil, http.StatusBadRequest)
			return
		}

		log := deps.Log.With("filename", header.Filename, "size", header.Size)
		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(log, w, "Error processing the document.", err, http.StatusInternalServerError)
			return
		}
		text, err := extract.Text(header.Filename, content)
		if err != nil {
			httputil.Fail(log, w, "Error processing the document.", err, http.StatusInternalServerError)
			return
		}
		if strings.TrimSpace(text) == "" {
			httputil.Fail(log, w, "No text extracted from the document.", nil, http.StatusBadRequest)
			return
		}

		runPipeline(log, w, r, deps.Runner, text)
	}
}

func generateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		runPipeline(deps.Log, w, r, deps.Runner, req.Text)
	}
}

// runPipeline runs text through runner and writes the result. The run is
// detached from the request so a client disconnect does not abort it.
func runPipeline(log *slog.Logger, w http.ResponseWriter, r *http.Request, runner pipeline.Runner, text string) {
	start := time.Now()
	result, err := runner.Run(context.WithoutCancel(r.Context()), text)
	if err != nil {
		status := http.StatusInternalServerError
		if pipeline.Kind(err) == pipeline.KindInput {
			status = http.StatusBadRequest
		}
		log.Error("pipeline failed", "err", err, "kind", pipeline.Kind(err))
		httputil.WriteJSON(w, status, map[string]string{"error": pipeline.Describe(err)})
		return
	}

	log.Info("pipeline completed",
		"questions", len(result.Questions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, generateResponse{
		Message:   successMessage,
		Questions: result.Questions,
		Answers:   result.Answers,
	})
}
