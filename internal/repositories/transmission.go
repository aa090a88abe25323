package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/db"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

// ErrNotFound is returned when a transmission does not exist locally.
var ErrNotFound = errors.NewSentinel("transmission not found")

type TransmissionRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewTransmissionRepository(dbs *db.Database, logger *slog.Logger) *TransmissionRepository {
	return &TransmissionRepository{
		dbs:    dbs,
		logger: logger.With("source", "TransmissionRepository"),
	}
}

// Save upserts the transmission and rewrites its leads in one database
// transaction. The repository receives fully formed transmissions; it never
// generates or mutates content.
func (r *TransmissionRepository) Save(ctx context.Context, tx *models.Transmission) error {
	dbTx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save transaction")
	}
	defer func() {
		if rollbackErr := dbTx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.ErrorContext(ctx, "could not roll back save", errors.SlogError(rollbackErr))
		}
	}()

	stmt := `INSERT INTO transmissions (id, created_at, title, setting_summary, technology, society, environment, header_image)
VALUES (@id, @created_at, @title, @setting_summary, @technology, @society, @environment, @header_image)
ON CONFLICT (id) DO UPDATE SET title           = excluded.title,
                               setting_summary = excluded.setting_summary,
                               technology      = excluded.technology,
                               society         = excluded.society,
                               environment     = excluded.environment,
                               header_image    = excluded.header_image`
	params := []any{
		sql.Named("id", tx.ID),
		sql.Named("created_at", tx.CreatedAt.UTC().Format(time.RFC3339Nano)),
		sql.Named("title", tx.Title),
		sql.Named("setting_summary", tx.SettingSummary),
		sql.Named("technology", tx.Exposition.Technology),
		sql.Named("society", tx.Exposition.Society),
		sql.Named("environment", tx.Exposition.Environment),
		sql.Named("header_image", tx.HeaderImage),
	}
	if _, err = dbTx.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "upsert transmission", slog.Int64("id", tx.ID))
	}

	if _, err = dbTx.ExecContext(ctx, `DELETE FROM leads WHERE transmission_id = ?`, tx.ID); err != nil {
		return errors.Wrap(err, "clear leads", slog.Int64("id", tx.ID))
	}

	stmt = `INSERT INTO leads (transmission_id, id, position, name, description, category,
                   has_dossier, sight, sound, smell, vibe, expanded_description, image)
VALUES (@transmission_id, @id, @position, @name, @description, @category,
        @has_dossier, @sight, @sound, @smell, @vibe, @expanded_description, @image)`
	for position, lead := range tx.Leads {
		dossier := lead.Dossier
		if dossier == nil {
			dossier = &models.LeadDossier{}
		}
		params = []any{
			sql.Named("transmission_id", tx.ID),
			sql.Named("id", lead.ID),
			sql.Named("position", position),
			sql.Named("name", lead.Name),
			sql.Named("description", lead.Description),
			sql.Named("category", string(lead.Category)),
			sql.Named("has_dossier", lead.Dossier != nil),
			sql.Named("sight", dossier.Sensory.Sight),
			sql.Named("sound", dossier.Sensory.Sound),
			sql.Named("smell", dossier.Sensory.Smell),
			sql.Named("vibe", dossier.Sensory.Vibe),
			sql.Named("expanded_description", dossier.Description),
			sql.Named("image", dossier.Image),
		}
		if _, err = dbTx.ExecContext(ctx, stmt, params...); err != nil {
			return errors.Wrap(err, "insert lead",
				slog.Int64("transmission_id", tx.ID), slog.String("lead_id", lead.ID))
		}
	}

	if err = dbTx.Commit(); err != nil {
		return errors.Wrap(err, "commit save", slog.Int64("id", tx.ID))
	}
	return nil
}

// Get loads one transmission with all of its leads.
func (r *TransmissionRepository) Get(ctx context.Context, id int64) (*models.Transmission, error) {
	stmt := `SELECT id, created_at, title, setting_summary, technology, society, environment, header_image
FROM transmissions
WHERE id = ?`
	var row transmissionRow
	if err := r.dbs.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "get transmission", slog.Int64("id", id))
		}
		return nil, errors.Wrap(err, "read transmission", slog.Int64("id", id))
	}

	tx, err := row.toModel()
	if err != nil {
		return nil, err
	}
	if tx.Leads, err = r.leads(ctx, id); err != nil {
		return nil, err
	}
	return tx, nil
}

// List loads every transmission, newest first.
func (r *TransmissionRepository) List(ctx context.Context) ([]models.Transmission, error) {
	stmt := `SELECT id, created_at, title, setting_summary, technology, society, environment, header_image
FROM transmissions
ORDER BY id DESC`
	var rows []transmissionRow
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "list transmissions")
	}

	transmissions := make([]models.Transmission, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toModel()
		if err != nil {
			return nil, err
		}
		if tx.Leads, err = r.leads(ctx, tx.ID); err != nil {
			return nil, err
		}
		transmissions = append(transmissions, *tx)
	}
	return transmissions, nil
}

// Delete removes the transmission; leads go with it via the foreign key.
func (r *TransmissionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM transmissions WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete transmission", slog.Int64("id", id))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "count deleted rows")
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "delete transmission", slog.Int64("id", id))
	}
	return nil
}

func (r *TransmissionRepository) leads(ctx context.Context, transmissionID int64) ([]models.Lead, error) {
	stmt := `SELECT id, name, description, category, has_dossier,
       sight, sound, smell, vibe, expanded_description, image
FROM leads
WHERE transmission_id = ?
ORDER BY position`
	var rows []leadRow
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, transmissionID); err != nil {
		return nil, errors.Wrap(err, "read leads", slog.Int64("transmission_id", transmissionID))
	}

	leads := make([]models.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toModel())
	}
	return leads, nil
}

type transmissionRow struct {
	ID             int64  `db:"id"`
	CreatedAt      string `db:"created_at"`
	Title          string `db:"title"`
	SettingSummary string `db:"setting_summary"`
	Technology     string `db:"technology"`
	Society        string `db:"society"`
	Environment    string `db:"environment"`
	HeaderImage    string `db:"header_image"`
}

func (row transmissionRow) toModel() (*models.Transmission, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "parse created_at", slog.Int64("id", row.ID))
	}
	return &models.Transmission{
		ID:             row.ID,
		CreatedAt:      createdAt,
		Title:          row.Title,
		SettingSummary: row.SettingSummary,
		Exposition: models.Exposition{
			Technology:  row.Technology,
			Society:     row.Society,
			Environment: row.Environment,
		},
		HeaderImage: row.HeaderImage,
	}, nil
}

type leadRow struct {
	ID                  string `db:"id"`
	Name                string `db:"name"`
	Description         string `db:"description"`
	Category            string `db:"category"`
	HasDossier          bool   `db:"has_dossier"`
	Sight               string `db:"sight"`
	Sound               string `db:"sound"`
	Smell               string `db:"smell"`
	Vibe                string `db:"vibe"`
	ExpandedDescription string `db:"expanded_description"`
	Image               string `db:"image"`
}

func (row leadRow) toModel() models.Lead {
	lead := models.Lead{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Category:    models.Category(row.Category),
	}
	if row.HasDossier {
		lead.Dossier = &models.LeadDossier{
			Sensory: models.Sensory{
				Sight: row.Sight,
				Sound: row.Sound,
				Smell: row.Smell,
				Vibe:  row.Vibe,
			},
			Description: row.ExpandedDescription,
			Image:       row.Image,
		}
	}
	return lead
}
