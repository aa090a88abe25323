package main

import (
	"net/http"

	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

type homeTemplateData struct {
	BaseTemplateData

	Transmissions []models.Transmission
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	transmissions, err := app.transmissions.List(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := homeTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Transmissions:    transmissions,
	}

	app.render(w, r, http.StatusOK, "home", data)
}
