package bundle_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/bundle"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	want := models.NewTransmission(time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC), "Dead Channel", "A drowned city.")
	want.Leads = []models.Lead{
		{
			ID:          "lead-0",
			Name:        "The Ferryman",
			Description: "Moves anything across the bay.",
			Category:    models.CategoryConnections,
			Dossier: &models.LeadDossier{
				Sensory:     models.Sensory{Sight: "a", Sound: "b", Smell: "c", Vibe: "d"},
				Description: "The long version.",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, bundle.Export(want, &buf))

	got, err := bundle.Import(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestImportRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := bundle.Import(strings.NewReader("not even gzip"))
	require.ErrorIs(t, err, bundle.ErrMalformedBundle)
}

func TestImportRejectsEmptyDocument(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, bundle.Export(&models.Transmission{}, &buf))

	_, err := bundle.Import(&buf)
	require.ErrorIs(t, err, bundle.ErrMalformedBundle)
}
