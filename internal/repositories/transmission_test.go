package repositories_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/repositories"
	"github.com/stretchr/testify/require"
)

func testTransmission(createdAt time.Time) *models.Transmission {
	tx := models.NewTransmission(createdAt, "Dead Channel", "A drowned city runs on salvage.")
	tx.Exposition = models.Exposition{
		Technology:  "Everything is refurbished twice over.",
		Society:     "Guilds of divers own the depths.",
		Environment: "Rain that never reaches the flooded streets.",
	}
	tx.HeaderImage = "data:image/png;base64,HEADER"
	tx.Leads = []models.Lead{
		{
			ID:          "lead-0",
			Name:        "The Ferryman",
			Description: "Moves anything across the bay, no questions.",
			Category:    models.CategoryConnections,
			Dossier: &models.LeadDossier{
				Sensory:     models.Sensory{Sight: "a", Sound: "b", Smell: "c", Vibe: "d"},
				Description: "The long version.",
				Image:       "data:image/png;base64,LEAD",
			},
		},
		{
			ID:          "lead-1",
			Name:        "The Flood Market",
			Description: "Everything salvaged ends up here eventually.",
			Category:    models.CategoryLocations,
		},
	}
	return tx
}

func newRepo(t *testing.T) *repositories.TransmissionRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repositories.NewTransmissionRepository(newTestDB(t), logger)
}

func TestTransmissionRepository_SaveAndGet(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	want := testTransmission(time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx, want.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// A lead without a dossier round-trips as nil, not as an empty dossier.
	require.Nil(t, got.Leads[1].Dossier)
}

func TestTransmissionRepository_SaveIsUpsert(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	tx := testTransmission(time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, tx))

	// Editing a lead clears its dossier; saving again must persist that.
	tx.Leads[0].ApplyEdit("The Harbormaster", "Runs the bay now.")
	tx.HeaderImage = ""
	require.NoError(t, repo.Save(ctx, tx))

	got, err := repo.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, "The Harbormaster", got.Leads[0].Name)
	require.Nil(t, got.Leads[0].Dossier)
	require.Empty(t, got.HeaderImage)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestTransmissionRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	older := testTransmission(time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC))
	newer := testTransmission(time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC))
	newer.Title = "Second Broadcast"
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Second Broadcast", list[0].Title)
	require.Equal(t, "Dead Channel", list[1].Title)
}

func TestTransmissionRepository_Delete(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	tx := testTransmission(time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, tx))
	require.NoError(t, repo.Delete(ctx, tx.ID))

	_, err := repo.Get(ctx, tx.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, tx.ID), repositories.ErrNotFound)
}

func TestTransmissionRepository_GetMissing(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), 404)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}
