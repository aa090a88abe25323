package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, noSurf, app.commonContext)
	sse := alice.New(app.serverSentEventMiddleware)

	mux.HandleFunc("GET /api/healthy", app.healthy)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))

	mux.Handle("POST /transmissions/generate", session.ThenFunc(app.generate))
	mux.Handle("GET /transmissions/pending/{runID}", session.ThenFunc(app.pending))
	mux.Handle("GET /transmissions/pending/{runID}/events", sse.ThenFunc(app.pendingEvents))

	mux.Handle("GET /transmissions/{id}", session.ThenFunc(app.viewTransmission))
	mux.Handle("POST /transmissions/{id}/delete", session.ThenFunc(app.deleteTransmission))
	mux.Handle("GET /transmissions/{id}/export", session.ThenFunc(app.exportTransmission))
	mux.Handle("POST /transmissions/import", session.ThenFunc(app.importTransmission))

	mux.Handle("POST /transmissions/{id}/leads/{leadID}/edit", session.ThenFunc(app.editLead))
	mux.Handle("POST /transmissions/{id}/leads/{leadID}/detail", session.ThenFunc(app.detailLead))
	mux.Handle("POST /transmissions/{id}/leads/{leadID}/regenerate", session.ThenFunc(app.regenerateField))

	mux.Handle("GET /archive", session.ThenFunc(app.browseArchive))
	mux.Handle("POST /archive/pull", session.ThenFunc(app.pullFromArchive))
	mux.Handle("POST /transmissions/{id}/push", session.ThenFunc(app.pushToArchive))

	mux.Handle("GET /settings/key", session.ThenFunc(app.keyForm))
	mux.Handle("POST /settings/key", session.ThenFunc(app.setKey))
	mux.Handle("POST /settings/key/clear", session.ThenFunc(app.clearKey))

	return app.recoverPanic(app.logRequest(app.secureHeaders(mux)))
}
