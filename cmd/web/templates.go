package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/ruliana/technoir-transmission-generator/internal/contexthelpers"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/ui"
)

type BaseTemplateData struct {
	CurrentPath string
	Flash       string
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
		Flash:       app.sessionManager.PopString(r.Context(), "flash"),
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to a directory inside ui/templates/pages. It has to
// include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	files := []string{
		"templates/base.gohtml",
	}

	pageTemplateFiles, err := fs.Glob(ui.Files, fmt.Sprintf("templates/pages/%s/*.gohtml", pageName))
	if err != nil {
		return nil, errors.Wrap(err, "glob page template files", slog.String("page", pageName))
	}
	files = append(files, pageTemplateFiles...)

	// The FuncMap has to exist before parsing; the render functions swap in
	// the per-request implementations.
	return template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
		"leadData": func(transmissionID int64, lead models.Lead) leadTemplateData {
			return leadTemplateData{TransmissionID: transmissionID, Lead: lead}
		},
	}).ParseFS(ui.Files, files...)
}

func requestFuncs(r *http.Request) template.FuncMap {
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=%q", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=%q/>", contexthelpers.CSRFToken(ctx))
	return template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // the nonce is server-generated
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // the token is server-generated
		},
	}
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, pageName string, data any) {
	app.renderTemplate(w, r, status, pageName, "base", data)
}

// renderPartial renders one named template from a page directory, used for
// the htmx swap responses.
func (app *application) renderPartial(
	w http.ResponseWriter, r *http.Request, status int, pageName string, templateName string, data any,
) {
	app.renderTemplate(w, r, status, pageName, templateName, data)
}

func (app *application) renderTemplate(
	w http.ResponseWriter, r *http.Request, status int, pageName string, templateName string, data any,
) {
	t, err := app.pageTemplate(pageName)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "parse template", slog.String("template", pageName)))
		return
	}

	buf := new(bytes.Buffer)
	t.Funcs(requestFuncs(r))
	if err = t.ExecuteTemplate(buf, templateName, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template",
			slog.String("template", pageName), slog.String("name", templateName)))
		return
	}

	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
