// Package stages holds one function per generation stage. Every stage is a
// pure composition: build a prompt from prior-stage outputs, declare the
// response schema, delegate to genai. No orchestration, persistence, or UI
// concerns live here.
package stages

import (
	"context"

	"github.com/google/uuid"
	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

// Frame is the first stage output: the transmission's identity.
type Frame struct {
	Title          string `json:"title"`
	SettingSummary string `json:"settingSummary"`
}

// OnUpdate receives the accumulated stream text after every increment.
type OnUpdate func(accumulated string)

var frameSchema = genai.Schema{Fields: []genai.Field{
	{Name: "title", Kind: genai.KindString, Required: true},
	{Name: "settingSummary", Kind: genai.KindString, Required: true},
}}

// GenerateFrame produces the title and setting summary from the raw theme.
func GenerateFrame(ctx context.Context, g genai.Generator, theme string, onUpdate OnUpdate) (Frame, error) {
	return genai.Collect[Frame](ctx, g, genai.TextRequest{
		Prompt: framePrompt(theme),
		System: systemNarrator,
		Schema: frameSchema,
	}, onUpdate)
}

var expositionSchema = genai.Schema{Fields: []genai.Field{
	{Name: "technology", Kind: genai.KindString, Required: true},
	{Name: "society", Kind: genai.KindString, Required: true},
	{Name: "environment", Kind: genai.KindString, Required: true},
}}

// GenerateExposition produces the three-paragraph scene-setting block.
func GenerateExposition(
	ctx context.Context, g genai.Generator, theme string, frame Frame, onUpdate OnUpdate,
) (models.Exposition, error) {
	return genai.Collect[models.Exposition](ctx, g, genai.TextRequest{
		Prompt: expositionPrompt(theme, frame),
		System: systemNarrator,
		Schema: expositionSchema,
	}, onUpdate)
}

var rosterSchema = genai.Schema{Fields: []genai.Field{
	{Name: "leads", Kind: genai.KindArray, Required: true},
}}

type rosterResponse struct {
	Leads []models.Lead `json:"leads"`
}

// GenerateRoster produces the lead roster. The prompt asks for exactly 36
// leads split 6 per category; the split is accepted as generated and never
// mechanically corrected. Leads arriving without an id get one assigned so
// they stay addressable.
func GenerateRoster(
	ctx context.Context,
	g genai.Generator,
	theme string,
	frame Frame,
	exposition models.Exposition,
	onUpdate OnUpdate,
) ([]models.Lead, error) {
	response, err := genai.Collect[rosterResponse](ctx, g, genai.TextRequest{
		Prompt: rosterPrompt(theme, frame, exposition),
		System: systemNarrator,
		Schema: rosterSchema,
	}, onUpdate)
	if err != nil {
		return nil, err
	}

	leads := response.Leads
	for i := range leads {
		if leads[i].ID == "" {
			leads[i].ID = uuid.NewString()
		}
		// A dossier has no business arriving from the roster stage.
		leads[i].Dossier = nil
	}
	return leads, nil
}

// GenerateHeaderImage produces the optional cover image. An empty result
// means no image and is always tolerated; the only possible error is a
// missing credential.
func GenerateHeaderImage(ctx context.Context, g genai.Generator, frame Frame, environment string) (string, error) {
	return g.Image(ctx, genai.ImageRequest{
		Prompt: headerImagePrompt(frame, environment),
		Aspect: genai.AspectWide,
	})
}

var dossierSchema = genai.Schema{Fields: []genai.Field{
	{Name: "sensory", Kind: genai.KindObject, Required: true},
	{Name: "expandedDescription", Kind: genai.KindString, Required: true},
}}

// GenerateLeadDossier produces the sensory impressions and expanded
// description for one lead. The image is a separate stage.
func GenerateLeadDossier(
	ctx context.Context,
	g genai.Generator,
	lead models.Lead,
	frame Frame,
	exposition models.Exposition,
	onUpdate OnUpdate,
) (models.LeadDossier, error) {
	return genai.Collect[models.LeadDossier](ctx, g, genai.TextRequest{
		Prompt: dossierPrompt(lead, frame, exposition),
		System: systemNarrator,
		Schema: dossierSchema,
	}, onUpdate)
}

// GenerateLeadImage produces the optional lead image, framed by the
// category's art direction. Same tolerance contract as the header image.
func GenerateLeadImage(
	ctx context.Context, g genai.Generator, lead models.Lead, frame Frame, sight string,
) (string, error) {
	return g.Image(ctx, genai.ImageRequest{
		Prompt: leadImagePrompt(lead, frame, sight),
		Aspect: genai.AspectSquare,
	})
}

// RegenerateSense produces a fresh value for a single sensory field, with
// the other three fields as context so the set stays mutually consistent.
func RegenerateSense(
	ctx context.Context,
	g genai.Generator,
	lead models.Lead,
	frame Frame,
	sense models.Sense,
	sensory models.Sensory,
	onUpdate OnUpdate,
) (string, error) {
	response, err := genai.Collect[map[string]string](ctx, g, genai.TextRequest{
		Prompt: sensePrompt(lead, frame, sense, sensory),
		System: systemNarrator,
		Schema: genai.Schema{Fields: []genai.Field{
			{Name: string(sense), Kind: genai.KindString, Required: true},
		}},
	}, onUpdate)
	if err != nil {
		return "", err
	}
	return response[string(sense)], nil
}

var dossierDescriptionSchema = genai.Schema{Fields: []genai.Field{
	{Name: "expandedDescription", Kind: genai.KindString, Required: true},
}}

// RegenerateDossierDescription produces a fresh expanded description,
// constrained by the existing sensory impressions. The lead image is not
// re-derived even though its prompt references description content;
// staleness there is accepted.
func RegenerateDossierDescription(
	ctx context.Context,
	g genai.Generator,
	lead models.Lead,
	frame Frame,
	exposition models.Exposition,
	sensory models.Sensory,
	onUpdate OnUpdate,
) (string, error) {
	response, err := genai.Collect[struct {
		Description string `json:"expandedDescription"`
	}](ctx, g, genai.TextRequest{
		Prompt: dossierDescriptionPrompt(lead, frame, exposition, sensory),
		System: systemNarrator,
		Schema: dossierDescriptionSchema,
	}, onUpdate)
	if err != nil {
		return "", err
	}
	return response.Description, nil
}

// RegenerateLeadImage produces a fresh lead image with the full dossier as
// context, unlike the pipeline variant which only has the sight impression
// at hand.
func RegenerateLeadImage(
	ctx context.Context, g genai.Generator, lead models.Lead, frame Frame, dossier models.LeadDossier,
) (string, error) {
	return g.Image(ctx, genai.ImageRequest{
		Prompt: leadImageFullPrompt(lead, frame, dossier),
		Aspect: genai.AspectSquare,
	})
}
