package main

import (
	"net/http"
	"strings"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/pipeline"
)

type leadTemplateData struct {
	TransmissionID int64
	Lead           models.Lead
	CSRFField      string
}

// respondWithLead renders the single lead card for htmx swaps and falls
// back to a full-page redirect for plain form posts.
func (app *application) respondWithLead(w http.ResponseWriter, r *http.Request, tx *models.Transmission, lead models.Lead) {
	h := app.htmx.NewHandler(w, r)
	if !h.IsHxRequest() {
		http.Redirect(w, r, transmissionPath(tx.ID), http.StatusSeeOther)
		return
	}

	data := leadTemplateData{
		TransmissionID: tx.ID,
		Lead:           lead,
	}
	app.renderPartial(w, r, http.StatusOK, "transmission", "lead", data)
}

// editLead replaces a lead's name and description. A real change retracts
// the dossier so the detail text can no longer contradict the lead it was
// written for.
func (app *application) editLead(w http.ResponseWriter, r *http.Request) {
	tx := app.transmissionFromPath(w, r)
	if tx == nil {
		return
	}
	lead := tx.Lead(r.PathValue("leadID"))
	if lead == nil {
		app.notFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostForm.Get("name"))
	description := strings.TrimSpace(r.PostForm.Get("description"))
	if name == "" || description == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}

	lead.ApplyEdit(name, description)
	if err := app.transmissions.Save(r.Context(), tx); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.respondWithLead(w, r, tx, *lead)
}

// detailLead generates the dossier and portrait for one lead on demand.
func (app *application) detailLead(w http.ResponseWriter, r *http.Request) {
	tx := app.transmissionFromPath(w, r)
	if tx == nil {
		return
	}
	lead := tx.Lead(r.PathValue("leadID"))
	if lead == nil {
		app.notFound(w, r)
		return
	}

	orchestrator, err := app.newOrchestrator()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err = orchestrator.DetailLead(r.Context(), tx, lead, pipeline.Events{}); err != nil {
		if errors.Is(err, genai.ErrMissingCredential) {
			app.flash(r, "Store an API key before detailing leads.")
			http.Redirect(w, r, "/settings/key", http.StatusSeeOther)
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err = app.transmissions.Save(r.Context(), tx); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.respondWithLead(w, r, tx, *lead)
}

// regenTargets maps the form value to a regeneration target.
var regenTargets = map[string]pipeline.Target{
	"sight":       {Kind: pipeline.FieldSensory, Sense: models.SenseSight},
	"sound":       {Kind: pipeline.FieldSensory, Sense: models.SenseSound},
	"smell":       {Kind: pipeline.FieldSensory, Sense: models.SenseSmell},
	"vibe":        {Kind: pipeline.FieldSensory, Sense: models.SenseVibe},
	"description": {Kind: pipeline.FieldDossier},
	"image":       {Kind: pipeline.FieldImage},
}

// regenerateField regenerates exactly one dossier field, leaving every
// sibling untouched.
func (app *application) regenerateField(w http.ResponseWriter, r *http.Request) {
	tx := app.transmissionFromPath(w, r)
	if tx == nil {
		return
	}
	lead := tx.Lead(r.PathValue("leadID"))
	if lead == nil {
		app.notFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	target, known := regenTargets[r.PostForm.Get("target")]
	if !known {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	orchestrator, err := app.newOrchestrator()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	value, err := orchestrator.Regenerate(r.Context(), tx, *lead, target, nil)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoDossier), errors.Is(err, pipeline.ErrUnknownTarget):
			app.clientError(w, r, http.StatusUnprocessableEntity)
		case errors.Is(err, genai.ErrMissingCredential):
			app.flash(r, "Store an API key before regenerating fields.")
			http.Redirect(w, r, "/settings/key", http.StatusSeeOther)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	pipeline.Apply(lead.Dossier, target, value)
	if err = app.transmissions.Save(r.Context(), tx); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.respondWithLead(w, r, tx, *lead)
}
