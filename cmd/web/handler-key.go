package main

import (
	"net/http"
	"strings"
)

type keyTemplateData struct {
	BaseTemplateData

	HasKey bool
}

func (app *application) keyForm(w http.ResponseWriter, r *http.Request) {
	key, err := app.creds.Get()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := keyTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		HasKey:           key != "",
	}

	app.render(w, r, http.StatusOK, "key", data)
}

func (app *application) setKey(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	key := strings.TrimSpace(r.PostForm.Get("key"))
	if key == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}

	if err := app.creds.Set(key); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.flash(r, "API key stored.")
	http.Redirect(w, r, "/settings/key", http.StatusSeeOther)
}

func (app *application) clearKey(w http.ResponseWriter, r *http.Request) {
	if err := app.creds.Clear(); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.flash(r, "API key cleared.")
	http.Redirect(w, r, "/settings/key", http.StatusSeeOther)
}
