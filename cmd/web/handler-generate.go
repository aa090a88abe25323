package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/pipeline"
)

// runResult is what the SSE stream reports once a generation run ends.
type runResult struct {
	txID int64
	err  string
}

// generate starts an interactive generation run in the background and sends
// the browser to the pending page, which follows the run over SSE.
func (app *application) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	theme := strings.TrimSpace(r.PostForm.Get("theme"))
	if theme == "" {
		app.flash(r, "Give the transmission a theme first.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	key, err := app.creds.Get()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if key == "" {
		app.flash(r, "Store an API key before generating.")
		http.Redirect(w, r, "/settings/key", http.StatusSeeOther)
		return
	}

	orchestrator, err := app.newOrchestrator()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	runID := uuid.NewString()
	progress := make(chan string, 16)
	app.broker.Publish(runID, progress)

	// The run outlives the request that started it.
	runCtx := context.WithoutCancel(r.Context())
	go app.runGeneration(runCtx, orchestrator, runID, theme, progress)

	http.Redirect(w, r, "/transmissions/pending/"+runID, http.StatusSeeOther)
}

func (app *application) runGeneration(
	ctx context.Context,
	orchestrator *pipeline.Orchestrator,
	runID string,
	theme string,
	progress chan string,
) {
	defer app.broker.Unpublish(runID)
	defer close(progress)

	headerDone := make(chan struct{})
	events := pipeline.Events{
		Progress: func(message string) {
			// Progress is advisory; drop lines rather than stall the run
			// when nobody is listening.
			select {
			case progress <- message:
			default:
			}
		},
		OnHeaderImage: func(*models.Transmission) {
			close(headerDone)
		},
	}

	tx, err := orchestrator.GenerateInteractive(ctx, theme, events)
	if err != nil {
		app.logger.ErrorContext(ctx, "generation run failed", errors.SlogError(err))
		app.runs.Store(runID, runResult{err: generationErrorMessage(err)})
		return
	}

	// Wait for the header reconciliation before persisting, so one save
	// captures the whole result. The reconciliation always fires, image or
	// not.
	<-headerDone

	if err = app.transmissions.Save(ctx, tx); err != nil {
		app.logger.ErrorContext(ctx, "save generated transmission", errors.SlogError(err))
		app.runs.Store(runID, runResult{err: "The transmission could not be saved."})
		return
	}
	app.runs.Store(runID, runResult{txID: tx.ID})
}

func generationErrorMessage(err error) string {
	switch {
	case errors.Is(err, genai.ErrMissingCredential):
		return "The API key is missing or was cleared mid-run."
	case errors.Is(err, genai.ErrMalformedOutput):
		return "The generator returned output that could not be read. Try again."
	default:
		return "Generation failed. Try again."
	}
}

type pendingTemplateData struct {
	BaseTemplateData

	RunID string
}

func (app *application) pending(w http.ResponseWriter, r *http.Request) {
	data := pendingTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		RunID:            r.PathValue("runID"),
	}

	app.render(w, r, http.StatusOK, "pending", data)
}

// pendingEvents streams the progress of a generation run as Server Sent
// Events and finishes with a "done" event carrying the destination, or an
// "failed" event carrying a message.
func (app *application) pendingEvents(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	if progress, running := <-app.broker.Subscribe(runID); running {
		for line := range progress {
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", line)
			flusher.Flush()
		}
	}

	result, found := app.runs.Load(runID)
	if !found {
		// Unknown run: reconnect after a restart, or a bogus ID.
		fmt.Fprint(w, "event: failed\ndata: This generation run is gone.\n\n")
		flusher.Flush()
		return
	}

	res := result.(runResult)
	if res.err != "" {
		fmt.Fprintf(w, "event: failed\ndata: %s\n\n", res.err)
	} else {
		fmt.Fprintf(w, "event: done\ndata: %s\n\n", transmissionPath(res.txID))
	}
	flusher.Flush()
}
