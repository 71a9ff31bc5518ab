package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/backend/backendtest"
	"github.com/bilgisen/pressdesk/internal/models"
)

func file(name, body string) models.Upload {
	return models.Upload{
		Filename:    name,
		ContentType: "application/octet-stream",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func filePtr(name, body string) *models.Upload {
	f := file(name, body)
	return &f
}

func TestMagazineCreate(t *testing.T) {
	client, _, store, tables := backendtest.New()
	svc := NewMagazineService(client)

	mag, err := svc.Create(context.Background(), MagazineInput{
		Title:       "  Spring issue ",
		Description: "All about spring",
		File:        filePtr("Issue.PDF", "%PDF-1.7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring issue", mag.Title)
	assert.True(t, strings.HasPrefix(mag.PDF, "https://storage.test/magazines/"))
	assert.True(t, strings.HasSuffix(mag.PDF, ".pdf"))

	assert.Equal(t, 1, tables.Count(backend.TableMagazines))
	assert.Equal(t, 1, store.Uploads())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mag.PDF, list[0].PDF)
	assert.NotEmpty(t, list[0].ID)
}

func TestMagazineCreateValidation(t *testing.T) {
	client, _, store, tables := backendtest.New()
	svc := NewMagazineService(client)

	tests := []struct {
		name string
		in   MagazineInput
		msg  string
	}{
		{"missing title", MagazineInput{Title: "  ", Description: "d", File: filePtr("a.pdf", "x")}, "Title is required"},
		{"missing description", MagazineInput{Title: "t", File: filePtr("a.pdf", "x")}, "Description is required"},
		{"missing file", MagazineInput{Title: "t", Description: "d"}, "PDF file is required"},
		{"wrong type", MagazineInput{Title: "t", Description: "d", File: filePtr("a.docx", "x")}, "PDF file must be a .pdf file"},
		{"no extension", MagazineInput{Title: "t", Description: "d", File: filePtr("README", "x")}, "PDF file must be a .pdf file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Equal(t, tt.msg, apperr.Message(err))
		})
	}
	assert.Zero(t, store.Uploads())
	assert.Zero(t, tables.Count(backend.TableMagazines))
}

func TestMagazineCreateUploadFailure(t *testing.T) {
	client, _, store, tables := backendtest.New()
	store.FailBucket = backend.BucketMagazines
	svc := NewMagazineService(client)

	_, err := svc.Create(context.Background(), MagazineInput{Title: "t", Description: "d", File: filePtr("a.pdf", "x")})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpload))
	assert.Equal(t, "Bucket not found", apperr.Message(err))
	assert.Zero(t, tables.Count(backend.TableMagazines))
	assert.Zero(t, tables.Writes)
}

func TestMagazineCreateInsertFailureRemovesUpload(t *testing.T) {
	client, _, store, tables := backendtest.New()
	tables.Fail["insert"] = errors.New("new row violates row-level security policy")
	svc := NewMagazineService(client)

	_, err := svc.Create(context.Background(), MagazineInput{Title: "t", Description: "d", File: filePtr("a.pdf", "x")})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
	assert.Equal(t, "new row violates row-level security policy", apperr.Message(err))
	assert.Empty(t, store.Objects())
	assert.Len(t, store.Removed, 1)
}

func TestMagazineCompensationFailureKeepsPersistenceError(t *testing.T) {
	client, _, store, tables := backendtest.New()
	tables.Fail["insert"] = errors.New("insert failed")
	store.RemoveErr = errors.New("remove failed")
	svc := NewMagazineService(client)

	_, err := svc.Create(context.Background(), MagazineInput{Title: "t", Description: "d", File: filePtr("a.pdf", "x")})
	require.Error(t, err)
	assert.Equal(t, "insert failed", apperr.Message(err))
	assert.Len(t, store.Objects(), 1)
}

func TestMagazineDeleteOnlyThatRow(t *testing.T) {
	client, _, _, tables := backendtest.New()
	svc := NewMagazineService(client)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, MagazineInput{Title: title, Description: "d", File: filePtr("a.pdf", title)})
		require.NoError(t, err)
	}
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "three", list[0].Title)

	require.NoError(t, svc.Delete(ctx, list[1].ID.String()))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "three", list[0].Title)
	assert.Equal(t, "one", list[1].Title)
	assert.Equal(t, 2, tables.Count(backend.TableMagazines))
}

func TestMagazineDeleteFailure(t *testing.T) {
	client, _, _, tables := backendtest.New()
	tables.Fail["delete"] = errors.New("permission denied")
	svc := NewMagazineService(client)

	err := svc.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))

	assert.True(t, apperr.Is(svc.Delete(context.Background(), " "), apperr.KindValidation))
}

func TestArticleCreateStoresFiveSections(t *testing.T) {
	client, _, store, _ := backendtest.New()
	svc := NewArticleService(client)
	ctx := context.Background()

	_, err := svc.Create(ctx, ArticleInput{
		Title:       "Travel",
		Description: "Where to go",
		TitleImage:  filePtr("cover.png", "png"),
		Sections: []SectionInput{
			{Subheading: "Alps", Text: "<p>Snow</p><script>x()</script>", Images: []models.Upload{file("a.jpg", "1"), file("b.webp", "2")}},
			{Subheading: "Coast", Text: "<p></p>"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.Uploads())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	art := list[0]
	assert.True(t, strings.HasPrefix(art.TitleImage, "https://storage.test/title-images/"))
	require.Len(t, art.Sections, models.SectionCount)

	assert.Equal(t, "Alps", art.Sections[0].Subheading)
	assert.Equal(t, "<p>Snow</p>", art.Sections[0].Text)
	require.Len(t, art.Sections[0].Images, 2)
	assert.True(t, strings.HasSuffix(art.Sections[0].Images[0], ".jpg"))
	assert.True(t, strings.HasSuffix(art.Sections[0].Images[1], ".webp"))

	assert.Equal(t, "Coast", art.Sections[1].Subheading)
	assert.Equal(t, "", art.Sections[1].Text)
	for _, sec := range art.Sections[2:] {
		assert.True(t, sec.IsBlank())
		assert.NotNil(t, sec.Images)
	}
}

func TestArticleCreateValidation(t *testing.T) {
	client, _, store, tables := backendtest.New()
	svc := NewArticleService(client)
	ctx := context.Background()

	_, err := svc.Create(ctx, ArticleInput{Title: "t", Description: "d"})
	assert.Equal(t, "Title image is required", apperr.Message(err))

	_, err = svc.Create(ctx, ArticleInput{Title: "t", Description: "d", TitleImage: filePtr("cover.gif", "x")})
	assert.Equal(t, "Title image must be a .png, .jpg, .jpeg or .webp file", apperr.Message(err))

	_, err = svc.Create(ctx, ArticleInput{
		Title: "t", Description: "d", TitleImage: filePtr("cover.png", "x"),
		Sections: []SectionInput{{}, {Images: []models.Upload{file("clip.mp4", "x")}}},
	})
	assert.Equal(t, "Section 2 image must be a .png, .jpg, .jpeg, .gif or .webp file", apperr.Message(err))

	_, err = svc.Create(ctx, ArticleInput{
		Title: "t", Description: "d", TitleImage: filePtr("cover.png", "x"),
		Sections: make([]SectionInput, 6),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Zero(t, store.Uploads())
	assert.Zero(t, tables.Count(backend.TableArticles))
}

func TestArticleCreateUploadFailureLeavesNothing(t *testing.T) {
	client, _, store, tables := backendtest.New()
	store.FailBucket = backend.BucketArticleImages
	svc := NewArticleService(client)

	_, err := svc.Create(context.Background(), ArticleInput{
		Title: "t", Description: "d", TitleImage: filePtr("cover.png", "x"),
		Sections: []SectionInput{{Images: []models.Upload{file("a.png", "1")}}},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpload))
	assert.Zero(t, tables.Count(backend.TableArticles))
	assert.Empty(t, store.Objects())
}

func TestArticleUpdateKeepsTitleImageAndMergesImages(t *testing.T) {
	client, _, _, _ := backendtest.New()
	svc := NewArticleService(client)
	ctx := context.Background()

	_, err := svc.Create(ctx, ArticleInput{
		Title: "Old", Description: "d", TitleImage: filePtr("cover.png", "x"),
		Sections: []SectionInput{{Subheading: "s", Images: []models.Upload{file("a.png", "1")}}},
	})
	require.NoError(t, err)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	before := list[0]

	updated, err := svc.Update(ctx, before.ID.String(), ArticleInput{
		Title:       "New",
		Description: "d2",
		Sections: []SectionInput{{
			Subheading: "s",
			Existing:   append([]string{"blob:http://localhost/1234"}, before.Sections[0].Images...),
			Images:     []models.Upload{file("b.jpg", "2")},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, before.TitleImage, updated.TitleImage)

	got, err := svc.Get(ctx, before.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, before.TitleImage, got.TitleImage)
	require.Len(t, got.Sections[0].Images, 2)
	assert.Equal(t, before.Sections[0].Images[0], got.Sections[0].Images[0])
	assert.True(t, strings.HasSuffix(got.Sections[0].Images[1], ".jpg"))
	assert.Len(t, got.Sections, models.SectionCount)
}

func TestArticleUpdateReplacesTitleImage(t *testing.T) {
	client, _, _, _ := backendtest.New()
	svc := NewArticleService(client)
	ctx := context.Background()

	_, err := svc.Create(ctx, ArticleInput{Title: "t", Description: "d", TitleImage: filePtr("cover.png", "x")})
	require.NoError(t, err)
	list, _ := svc.List(ctx)

	updated, err := svc.Update(ctx, list[0].ID.String(), ArticleInput{Title: "t", Description: "d", TitleImage: filePtr("new.webp", "y")})
	require.NoError(t, err)
	assert.NotEqual(t, list[0].TitleImage, updated.TitleImage)
	assert.True(t, strings.HasSuffix(updated.TitleImage, ".webp"))
}

func TestArticleUpdateFailures(t *testing.T) {
	client, _, store, tables := backendtest.New()
	svc := NewArticleService(client)
	ctx := context.Background()

	_, err := svc.Update(ctx, "42", ArticleInput{Title: "t", Description: "d"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
	assert.True(t, errors.Is(err, backend.ErrNotFound))

	_, err = svc.Create(ctx, ArticleInput{Title: "t", Description: "d", TitleImage: filePtr("cover.png", "x")})
	require.NoError(t, err)
	list, _ := svc.List(ctx)

	tables.Fail["update"] = errors.New("update failed")
	_, err = svc.Update(ctx, list[0].ID.String(), ArticleInput{
		Title: "t", Description: "d",
		Sections: []SectionInput{{Images: []models.Upload{file("c.png", "3")}}},
	})
	require.Error(t, err)
	assert.Equal(t, "update failed", apperr.Message(err))
	assert.Len(t, store.Objects(), 1)
}

func TestArticleDelete(t *testing.T) {
	client, _, _, tables := backendtest.New()
	svc := NewArticleService(client)
	ctx := context.Background()

	for _, title := range []string{"a", "b"} {
		_, err := svc.Create(ctx, ArticleInput{Title: title, Description: "d", TitleImage: filePtr("c.png", title)})
		require.NoError(t, err)
	}
	list, _ := svc.List(ctx)
	require.NoError(t, svc.Delete(ctx, list[0].ID.String()))
	assert.Equal(t, 1, tables.Count(backend.TableArticles))

	list, _ = svc.List(ctx)
	assert.Equal(t, "a", list[0].Title)
}

func TestRetainedURLs(t *testing.T) {
	got := RetainedURLs([]string{"https://x/1.png", "blob:http://localhost/abc", " ", "https://x/2.png"})
	assert.Equal(t, []string{"https://x/1.png", "https://x/2.png"}, got)
	assert.NotNil(t, RetainedURLs(nil))
}
