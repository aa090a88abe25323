package pipeline

import (
	"context"
	"log/slog"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/stages"
)

var (
	// ErrNoDossier is returned when a field regeneration targets a lead
	// whose dossier was never generated.
	ErrNoDossier = errors.NewSentinel("lead has no dossier to regenerate")
	// ErrUnknownTarget is returned for a target outside the regenerable set.
	ErrUnknownTarget = errors.NewSentinel("unknown regeneration target")
)

// FieldKind names the regenerable parts of a lead dossier.
type FieldKind string

const (
	FieldSensory FieldKind = "sensory"
	FieldDossier FieldKind = "dossier"
	FieldImage   FieldKind = "image"
)

// Target addresses a single regenerable field. Sense is required when Kind
// is FieldSensory and ignored otherwise.
type Target struct {
	Kind  FieldKind
	Sense models.Sense
}

// Regenerate produces a fresh value for exactly one dossier field, prompting
// with the lead's current sibling data so the new value stays consistent
// with what remains. It returns only the new value; merging it back is the
// caller's job (see Apply). Dependent fields are never re-derived: a new
// description leaves the existing image alone even though the image prompt
// referenced the old text.
func (o *Orchestrator) Regenerate(
	ctx context.Context,
	tx *models.Transmission,
	lead models.Lead,
	target Target,
	onUpdate stages.OnUpdate,
) (string, error) {
	if lead.Dossier == nil {
		return "", errors.Wrap(ErrNoDossier, "regenerate field",
			slog.String("lead_id", lead.ID), slog.String("kind", string(target.Kind)))
	}

	frame := stages.Frame{Title: tx.Title, SettingSummary: tx.SettingSummary}

	switch target.Kind {
	case FieldSensory:
		if !validSense(target.Sense) {
			return "", errors.Wrap(ErrUnknownTarget, "regenerate sensory field",
				slog.String("sense", string(target.Sense)))
		}
		return stages.RegenerateSense(ctx, o.gen, lead, frame, target.Sense, lead.Dossier.Sensory, onUpdate)
	case FieldDossier:
		return stages.RegenerateDossierDescription(
			ctx, o.gen, lead, frame, tx.Exposition, lead.Dossier.Sensory, onUpdate)
	case FieldImage:
		return stages.RegenerateLeadImage(ctx, o.gen, lead, frame, *lead.Dossier)
	}
	return "", errors.Wrap(ErrUnknownTarget, "regenerate field", slog.String("kind", string(target.Kind)))
}

// Apply merges a regenerated value into the dossier, touching only the
// targeted field.
func Apply(dossier *models.LeadDossier, target Target, value string) {
	switch target.Kind {
	case FieldSensory:
		dossier.Sensory.SetField(target.Sense, value)
	case FieldDossier:
		dossier.Description = value
	case FieldImage:
		dossier.Image = value
	}
}

func validSense(sense models.Sense) bool {
	for _, known := range models.Senses {
		if sense == known {
			return true
		}
	}
	return false
}
