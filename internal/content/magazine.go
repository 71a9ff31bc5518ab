package content

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/logger"
	"github.com/bilgisen/pressdesk/internal/models"
)

// MagazineInput is a submitted magazine form
type MagazineInput struct {
	Title       string         `label:"Title" validate:"required"`
	Description string         `label:"Description" validate:"required"`
	File        *models.Upload `label:"PDF file" validate:"required"`
}

// MagazineService creates, lists and deletes magazines
type MagazineService struct {
	client *backend.Client
	up     *uploader
	log    zerolog.Logger
}

// NewMagazineService creates a service on top of client
func NewMagazineService(client *backend.Client) *MagazineService {
	log := logger.Component("magazines")
	return &MagazineService{
		client: client,
		up:     &uploader{store: client.Storage, now: time.Now, log: log},
		log:    log,
	}
}

// Create uploads the PDF and inserts the magazine row
func (s *MagazineService) Create(ctx context.Context, in MagazineInput) (*models.Magazine, error) {
	in.Title, in.Description = trim(in.Title), trim(in.Description)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := CheckType("PDF file", *in.File, MagazineTypes); err != nil {
		return nil, err
	}

	row := models.MagazineRow{Title: in.Title, Description: in.Description}
	objects, err := s.up.run(ctx, []job{{bucket: backend.BucketMagazines, file: *in.File, dest: &row.PDF}})
	if err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Msg("magazine upload failed")
		s.up.discard(ctx, objects)
		return nil, err
	}

	if err := s.client.Tables.Insert(ctx, backend.TableMagazines, row); err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Msg("magazine insert failed")
		s.up.discard(ctx, objects)
		return nil, apperr.Persistence("insert magazine", err)
	}

	s.log.Info().Str("title", in.Title).Str("pdf", row.PDF).Msg("magazine created")
	return &models.Magazine{Title: row.Title, Description: row.Description, PDF: row.PDF}, nil
}

// List returns every magazine, newest first
func (s *MagazineService) List(ctx context.Context) ([]models.Magazine, error) {
	var out []models.Magazine
	if err := s.client.Tables.Select(ctx, backend.TableMagazines, backend.NewestFirst, &out); err != nil {
		return nil, apperr.Persistence("list magazines", err)
	}
	return out, nil
}

// Delete removes the magazine row. The stored PDF is left in place.
func (s *MagazineService) Delete(ctx context.Context, id string) error {
	if trim(id) == "" {
		return apperr.Validation("validate", "Magazine id is required")
	}
	if err := s.client.Tables.Delete(ctx, backend.TableMagazines, "id", id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("magazine delete failed")
		return apperr.Persistence("delete magazine", err)
	}
	s.log.Info().Str("id", id).Msg("magazine deleted")
	return nil
}
