package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ruliana/technoir-transmission-generator/internal/bundle"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/repositories"
)

type leadGroup struct {
	Category models.Category
	Leads    []models.Lead
}

type transmissionTemplateData struct {
	BaseTemplateData

	Transmission *models.Transmission
	Groups       []leadGroup
}

// groupLeads buckets the roster by category in the canonical order. Leads
// with a category outside the canonical six are kept in a trailing group
// rather than dropped.
func groupLeads(leads []models.Lead) []leadGroup {
	var groups []leadGroup
	for _, category := range models.Categories {
		group := leadGroup{Category: category}
		for _, lead := range leads {
			if lead.Category == category {
				group.Leads = append(group.Leads, lead)
			}
		}
		if len(group.Leads) > 0 {
			groups = append(groups, group)
		}
	}

	stray := leadGroup{Category: "Uncategorized"}
	for _, lead := range leads {
		if !models.ValidCategory(lead.Category) {
			stray.Leads = append(stray.Leads, lead)
		}
	}
	if len(stray.Leads) > 0 {
		groups = append(groups, stray)
	}
	return groups
}

func (app *application) viewTransmission(w http.ResponseWriter, r *http.Request) {
	tx := app.transmissionFromPath(w, r)
	if tx == nil {
		return
	}

	data := transmissionTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Transmission:     tx,
		Groups:           groupLeads(tx.Leads),
	}

	app.render(w, r, http.StatusOK, "transmission", data)
}

func (app *application) deleteTransmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		app.notFound(w, r)
		return
	}

	if err = app.transmissions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.flash(r, "Transmission deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) exportTransmission(w http.ResponseWriter, r *http.Request) {
	tx := app.transmissionFromPath(w, r)
	if tx == nil {
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("transmission-%d.json.gz", tx.ID)))
	if err := bundle.Export(tx, w); err != nil {
		app.logger.ErrorContext(r.Context(), "export transmission", errors.SlogError(err))
	}
}

func (app *application) importTransmission(w http.ResponseWriter, r *http.Request) {
	const maxBundleSize = 64 << 20
	if err := r.ParseMultipartForm(maxBundleSize); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("bundle")
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	defer file.Close()

	tx, err := bundle.Import(file)
	if err != nil {
		if errors.Is(err, bundle.ErrMalformedBundle) {
			app.flash(r, "That file is not a transmission bundle.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err = app.transmissions.Save(r.Context(), tx); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.flash(r, fmt.Sprintf("Imported %q.", tx.Title))
	http.Redirect(w, r, transmissionPath(tx.ID), http.StatusSeeOther)
}
