package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/logger"
	"github.com/bilgisen/pressdesk/internal/models"
	"github.com/bilgisen/pressdesk/internal/richtext"
)

// ArticleInput is a submitted article form. TitleImage is required on create
// and optional on edit.
type ArticleInput struct {
	Title       string         `label:"Title" validate:"required"`
	Description string         `label:"Description" validate:"required"`
	TitleImage  *models.Upload `label:"Title image"`
	Sections    []SectionInput `label:"Sections" validate:"max=5"`
}

// SectionInput is one section block of the form. Existing holds the image
// URLs already stored for the section, Images the newly chosen files.
type SectionInput struct {
	Subheading string
	Text       string
	Existing   []string
	Images     []models.Upload
}

// ArticleService manages articles and their sections
type ArticleService struct {
	client *backend.Client
	up     *uploader
	log    zerolog.Logger
}

// NewArticleService creates a service on top of client
func NewArticleService(client *backend.Client) *ArticleService {
	log := logger.Component("articles")
	return &ArticleService{
		client: client,
		up:     &uploader{store: client.Storage, now: time.Now, log: log},
		log:    log,
	}
}

// Create uploads every file of the form and inserts the article row
func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (*models.Article, error) {
	in = normalize(in)
	if err := check(in); err != nil {
		return nil, err
	}
	if in.TitleImage == nil {
		return nil, apperr.Validation("validate", "Title image is required")
	}
	if err := checkFiles(in); err != nil {
		return nil, err
	}

	row, objects, err := s.build(ctx, in, "")
	if err != nil {
		return nil, err
	}
	if err := s.client.Tables.Insert(ctx, backend.TableArticles, row); err != nil {
		s.log.Error().Err(err).Str("title", row.Title).Msg("article insert failed")
		s.up.discard(ctx, objects)
		return nil, apperr.Persistence("insert article", err)
	}

	s.log.Info().Str("title", row.Title).Int("sections", row.Sections.Filled()).Int("uploads", len(objects)).Msg("article created")
	return rowToArticle("", row), nil
}

// Update replaces the article's fields and sections. Without a new title
// image the stored one is kept.
func (s *ArticleService) Update(ctx context.Context, id string, in ArticleInput) (*models.Article, error) {
	if trim(id) == "" {
		return nil, apperr.Validation("validate", "Article id is required")
	}
	in = normalize(in)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := checkFiles(in); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	row, objects, err := s.build(ctx, in, current.TitleImage)
	if err != nil {
		return nil, err
	}
	if err := s.client.Tables.Update(ctx, backend.TableArticles, "id", id, row); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("article update failed")
		s.up.discard(ctx, objects)
		return nil, apperr.Persistence("update article", err)
	}

	s.log.Info().Str("id", id).Int("sections", row.Sections.Filled()).Int("uploads", len(objects)).Msg("article updated")
	out := rowToArticle(id, row)
	out.CreatedAt = current.CreatedAt
	return out, nil
}

// Get returns one article by id
func (s *ArticleService) Get(ctx context.Context, id string) (*models.Article, error) {
	var out models.Article
	if err := s.client.Tables.SelectByID(ctx, backend.TableArticles, "id", id, &out); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, apperr.Persistence("load article", fmt.Errorf("article %s not found: %w", id, err))
		}
		return nil, apperr.Persistence("load article", err)
	}
	out.Sections = out.Sections.Normalized()
	return &out, nil
}

// List returns every article, newest first
func (s *ArticleService) List(ctx context.Context) ([]models.Article, error) {
	var out []models.Article
	if err := s.client.Tables.Select(ctx, backend.TableArticles, backend.NewestFirst, &out); err != nil {
		return nil, apperr.Persistence("list articles", err)
	}
	return out, nil
}

// Delete removes the article row. Its stored images are left in place.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if trim(id) == "" {
		return apperr.Validation("validate", "Article id is required")
	}
	if err := s.client.Tables.Delete(ctx, backend.TableArticles, "id", id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("article delete failed")
		return apperr.Persistence("delete article", err)
	}
	s.log.Info().Str("id", id).Msg("article deleted")
	return nil
}

// build uploads the form's files and assembles the row. On upload failure
// whatever did get stored is removed again.
func (s *ArticleService) build(ctx context.Context, in ArticleInput, titleImage string) (models.ArticleRow, []object, error) {
	row := models.ArticleRow{
		Title:       in.Title,
		Description: in.Description,
		TitleImage:  titleImage,
		Sections:    make(models.Sections, len(in.Sections)),
	}

	var jobs []job
	if in.TitleImage != nil {
		jobs = append(jobs, job{bucket: backend.BucketTitleImages, file: *in.TitleImage, dest: &row.TitleImage})
	}

	fresh := make([][]string, len(in.Sections))
	for i, sec := range in.Sections {
		row.Sections[i] = models.Section{Subheading: sec.Subheading, Text: sec.Text}
		fresh[i] = make([]string, len(sec.Images))
		for j, img := range sec.Images {
			jobs = append(jobs, job{bucket: backend.BucketArticleImages, file: img, dest: &fresh[i][j]})
		}
	}

	objects, err := s.up.run(ctx, jobs)
	if err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Int("files", len(jobs)).Msg("article upload failed")
		s.up.discard(ctx, objects)
		return models.ArticleRow{}, nil, err
	}

	for i, sec := range in.Sections {
		row.Sections[i].Images = append(RetainedURLs(sec.Existing), fresh[i]...)
	}
	row.Sections = row.Sections.Normalized()
	return row, objects, nil
}

// normalize trims the text fields and sanitizes section bodies
func normalize(in ArticleInput) ArticleInput {
	in.Title, in.Description = trim(in.Title), trim(in.Description)
	sections := make([]SectionInput, len(in.Sections))
	for i, sec := range in.Sections {
		sec.Subheading = trim(sec.Subheading)
		if richtext.IsEmpty(sec.Text) {
			sec.Text = ""
		} else {
			sec.Text = richtext.Sanitize(sec.Text)
		}
		sections[i] = sec
	}
	in.Sections = sections
	return in
}

func checkFiles(in ArticleInput) error {
	if in.TitleImage != nil {
		if err := CheckType("Title image", *in.TitleImage, TitleImageTypes); err != nil {
			return err
		}
	}
	for i, sec := range in.Sections {
		for _, img := range sec.Images {
			if err := CheckType(fmt.Sprintf("Section %d image", i+1), img, ImageTypes); err != nil {
				return err
			}
		}
	}
	return nil
}

func rowToArticle(id string, row models.ArticleRow) *models.Article {
	return &models.Article{
		ID:          models.ID(id),
		Title:       row.Title,
		Description: row.Description,
		TitleImage:  row.TitleImage,
		Sections:    row.Sections,
	}
}
