package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/repositories"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri, slog.Any("formdata", r.Form))
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

func (app *application) flash(r *http.Request, message string) {
	app.sessionManager.Put(r.Context(), "flash", message)
}

// transmissionFromPath loads the transmission addressed by the {id} path
// segment. It writes the error response itself and returns nil when the
// handler should bail out.
func (app *application) transmissionFromPath(w http.ResponseWriter, r *http.Request) *models.Transmission {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		app.notFound(w, r)
		return nil
	}

	tx, err := app.transmissions.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return nil
	}
	if err != nil {
		app.serverError(w, r, err)
		return nil
	}
	return tx
}

func transmissionPath(id int64) string {
	return "/transmissions/" + strconv.FormatInt(id, 10)
}
