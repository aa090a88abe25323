// Package pipeline sequences the generation stages into the two fixed
// pipelines (interactive and full) and hosts the field-regeneration
// controller. It holds no persistent state: it produces and mutates one
// Transmission per run and hands it to the caller.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/stages"
	"golang.org/x/time/rate"
)

// Events carries the advisory callbacks of a pipeline run. All fields are
// optional and never affect control flow.
type Events struct {
	// Progress receives human-readable milestone lines.
	Progress func(message string)
	// Stream receives the accumulated text of the running stage after every
	// increment.
	Stream func(accumulated string)
	// OnHeaderImage fires in interactive mode once the background header
	// image has been reconciled into the transmission, whether or not an
	// image materialized.
	OnHeaderImage func(tx *models.Transmission)
}

func (ev Events) progress(format string, args ...any) {
	if ev.Progress != nil {
		ev.Progress(fmt.Sprintf(format, args...))
	}
}

func (ev Events) stream() stages.OnUpdate {
	return ev.Stream
}

// Orchestrator runs the generation pipelines against one Generator. The
// full-mode lead loop is strictly sequential and additionally gated by a
// rate limiter, so the serialization is declared policy rather than an
// artifact of the loop shape.
type Orchestrator struct {
	gen     genai.Generator
	logger  *slog.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLimiter replaces the default one-request-per-second gate on the
// full-mode lead loop.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(o *Orchestrator) {
		o.limiter = limiter
	}
}

// WithClock replaces the transmission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(gen genai.Generator, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:     gen,
		logger:  logger.With("source", "pipeline.Orchestrator"),
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateInteractive returns as soon as the core fields exist: frame,
// exposition, and roster are generated in sequence, the header image is
// fired without awaiting and patched into the already-returned transmission
// by a background goroutine. A header that never materializes stays empty
// and is not an error.
func (o *Orchestrator) GenerateInteractive(
	ctx context.Context, theme string, ev Events,
) (*models.Transmission, error) {
	tx, frame, exposition, err := o.generateCore(ctx, theme, ev)
	if err != nil {
		return nil, err
	}

	ev.progress("Requesting header image in the background")
	// The request outlives the calling request handler on purpose; only
	// explicit cancellation semantics do not apply to the reconciliation.
	headerCtx := context.WithoutCancel(ctx)
	go func() {
		dataURI, imgErr := stages.GenerateHeaderImage(headerCtx, o.gen, frame, exposition.Environment)
		if imgErr != nil {
			// Only a missing credential reaches here; the transmission
			// stays without a header.
			o.logger.WarnContext(headerCtx, "header image skipped", errors.SlogError(imgErr))
		}
		if dataURI != "" {
			tx.HeaderImage = dataURI
		}
		if ev.OnHeaderImage != nil {
			ev.OnHeaderImage(tx)
		}
	}()

	leads, err := o.generateRoster(ctx, theme, frame, exposition, ev)
	if err != nil {
		return nil, err
	}
	tx.Leads = leads

	ev.progress("Transmission ready, %d leads on the board", len(tx.Leads))
	return tx, nil
}

// GenerateFull runs every stage to completion before returning, including
// dossier text and image for each of the 36 leads. Leads are detailed one at
// a time behind the rate limiter; a failing lead is logged, kept in its
// detail-less form, and the loop moves on. That containment is the
// pipeline's most important failure rule.
func (o *Orchestrator) GenerateFull(ctx context.Context, theme string, ev Events) (*models.Transmission, error) {
	tx, frame, exposition, err := o.generateCore(ctx, theme, ev)
	if err != nil {
		return nil, err
	}

	leads, err := o.generateRoster(ctx, theme, frame, exposition, ev)
	if err != nil {
		return nil, err
	}
	tx.Leads = leads

	ev.progress("Requesting header image")
	headerURI, err := stages.GenerateHeaderImage(ctx, o.gen, frame, exposition.Environment)
	if err != nil {
		return nil, err
	}
	tx.HeaderImage = headerURI

	for i := range tx.Leads {
		lead := &tx.Leads[i]
		ev.progress("[%d/%d] Detailing lead: %s", i+1, len(tx.Leads), lead.Name)

		if err = o.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "wait for request slot")
		}
		dossier, dossierErr := stages.GenerateLeadDossier(ctx, o.gen, *lead, frame, exposition, ev.stream())
		if dossierErr != nil {
			o.logger.WarnContext(ctx, "lead dossier generation failed, keeping lead without dossier",
				slog.String("lead_id", lead.ID), slog.String("lead_name", lead.Name),
				errors.SlogError(dossierErr))
			continue
		}

		if err = o.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "wait for request slot")
		}
		imageURI, imageErr := stages.GenerateLeadImage(ctx, o.gen, *lead, frame, dossier.Sensory.Sight)
		if imageErr != nil {
			o.logger.WarnContext(ctx, "lead image skipped",
				slog.String("lead_id", lead.ID), errors.SlogError(imageErr))
		} else {
			dossier.Image = imageURI
		}

		lead.Dossier = &dossier
	}

	ev.progress("Transmission complete: %s", tx.Title)
	return tx, nil
}

// DetailLead generates the dossier and portrait for one lead on demand.
// This is the interactive-mode counterpart of the full-mode lead loop: the
// lead is mutated in place on success and left untouched on failure.
func (o *Orchestrator) DetailLead(
	ctx context.Context, tx *models.Transmission, lead *models.Lead, ev Events,
) error {
	frame := stages.Frame{Title: tx.Title, SettingSummary: tx.SettingSummary}

	ev.progress("Detailing lead: %s", lead.Name)
	if err := o.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "wait for request slot")
	}
	dossier, err := stages.GenerateLeadDossier(ctx, o.gen, *lead, frame, tx.Exposition, ev.stream())
	if err != nil {
		return errors.Wrap(err, "detail lead",
			slog.String("lead_id", lead.ID), slog.String("lead_name", lead.Name))
	}

	if err = o.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "wait for request slot")
	}
	imageURI, imageErr := stages.GenerateLeadImage(ctx, o.gen, *lead, frame, dossier.Sensory.Sight)
	if imageErr != nil {
		o.logger.WarnContext(ctx, "lead image skipped",
			slog.String("lead_id", lead.ID), errors.SlogError(imageErr))
	} else {
		dossier.Image = imageURI
	}

	lead.Dossier = &dossier
	return nil
}

// generateCore runs the stages shared by both modes: frame and exposition.
func (o *Orchestrator) generateCore(
	ctx context.Context, theme string, ev Events,
) (*models.Transmission, stages.Frame, models.Exposition, error) {
	ev.progress("Generating title and setting summary")
	frame, err := stages.GenerateFrame(ctx, o.gen, theme, ev.stream())
	if err != nil {
		return nil, stages.Frame{}, models.Exposition{}, errors.Wrap(err, "generate frame")
	}

	ev.progress("Writing exposition for %q", frame.Title)
	exposition, err := stages.GenerateExposition(ctx, o.gen, theme, frame, ev.stream())
	if err != nil {
		return nil, stages.Frame{}, models.Exposition{}, errors.Wrap(err, "generate exposition")
	}

	tx := models.NewTransmission(o.now(), frame.Title, frame.SettingSummary)
	tx.Exposition = exposition
	return tx, frame, exposition, nil
}

func (o *Orchestrator) generateRoster(
	ctx context.Context, theme string, frame stages.Frame, exposition models.Exposition, ev Events,
) ([]models.Lead, error) {
	ev.progress("Assembling the lead roster")
	leads, err := stages.GenerateRoster(ctx, o.gen, theme, frame, exposition, ev.stream())
	if err != nil {
		return nil, errors.Wrap(err, "generate roster")
	}

	// The 6-per-category split is prompted for but never enforced; an off
	// distribution is worth a log line and nothing more.
	if len(leads) != models.LeadCount {
		o.logger.WarnContext(ctx, "roster size is off, accepting as generated",
			slog.Int("got", len(leads)), slog.Int("want", models.LeadCount))
	}
	for category, count := range models.CategoryCounts(leads) {
		if count != models.LeadsPerCategory {
			o.logger.WarnContext(ctx, "lead category split is off, accepting as generated",
				slog.String("category", string(category)), slog.Int("count", count))
		}
	}
	return leads, nil
}
