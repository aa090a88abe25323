package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ruliana/technoir-transmission-generator/internal/archive"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
)

type archiveTemplateData struct {
	BaseTemplateData

	Entries []archive.ManifestEntry
}

func (app *application) browseArchive(w http.ResponseWriter, r *http.Request) {
	entries, err := app.archive.Manifest(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := archiveTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Entries:          entries,
	}

	app.render(w, r, http.StatusOK, "archive", data)
}

func (app *application) pullFromArchive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	filename := r.PostForm.Get("filename")
	if filename == "" || strings.Contains(filename, "/") {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	tx, err := app.archive.Fetch(r.Context(), filename)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err = app.transmissions.Save(r.Context(), tx); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.flash(r, fmt.Sprintf("Pulled %q from the archive.", tx.Title))
	http.Redirect(w, r, transmissionPath(tx.ID), http.StatusSeeOther)
}

func (app *application) pushToArchive(w http.ResponseWriter, r *http.Request) {
	tx := app.transmissionFromPath(w, r)
	if tx == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	credential := r.PostForm.Get("credential")

	if err := app.archive.Upload(r.Context(), tx, credential); err != nil {
		if errors.Is(err, archive.ErrUploadForbidden) {
			app.flash(r, "The archive rejected that upload credential.")
			http.Redirect(w, r, transmissionPath(tx.ID), http.StatusSeeOther)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.flash(r, "Transmission pushed to the archive.")
	http.Redirect(w, r, transmissionPath(tx.ID), http.StatusSeeOther)
}
