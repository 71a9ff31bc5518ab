package api

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/content"
	"github.com/bilgisen/pressdesk/internal/models"
	"github.com/bilgisen/pressdesk/internal/richtext"
)

type magazineForm struct {
	Title       string
	Description string
}

type articleForm struct {
	Heading     string
	Action      string
	Submit      string
	ID          string
	Title       string
	Description string
	TitleImage  string
	Sections    []sectionForm
}

type sectionForm struct {
	Index      int
	Number     int
	Subheading string
	Images     []string
	Editor     richtext.Editor
	Commands   []richtext.Command
}

func newArticleForm() articleForm {
	return articleForm{
		Heading:  "New article",
		Action:   "/dashboard/articles",
		Submit:   "Create article",
		Sections: sectionForms(nil),
	}
}

func editArticleForm(a *models.Article) articleForm {
	return articleForm{
		Heading:     "Edit article",
		Action:      "/dashboard/articles/" + a.ID.String(),
		Submit:      "Save changes",
		ID:          a.ID.String(),
		Title:       a.Title,
		Description: a.Description,
		TitleImage:  a.TitleImage,
		Sections:    sectionForms(a.Sections),
	}
}

func sectionForms(sections models.Sections) []sectionForm {
	sections = sections.Normalized()
	out := make([]sectionForm, len(sections))
	for i, sec := range sections {
		out[i] = sectionForm{
			Index:      i,
			Number:     i + 1,
			Subheading: sec.Subheading,
			Images:     sec.Images,
			Editor:     richtext.NewEditor(sectionField(i, "text"), sec.Text),
			Commands:   richtext.Commands,
		}
	}
	return out
}

// refill rebuilds the form from a rejected submission
func (f articleForm) refill(in content.ArticleInput, currentTitleImage string) articleForm {
	f.Title = in.Title
	f.Description = in.Description
	f.TitleImage = currentTitleImage
	sections := make(models.Sections, len(in.Sections))
	for i, sec := range in.Sections {
		sections[i] = models.Section{Subheading: sec.Subheading, Text: sec.Text, Images: content.RetainedURLs(sec.Existing)}
	}
	f.Sections = sectionForms(sections)
	return f
}

func sectionField(i int, name string) string {
	return fmt.Sprintf("section_%d_%s", i, name)
}

// multipartForm parses the request body and always hands back a cleanup
func multipartForm(c *fiber.Ctx) (*multipart.Form, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, apperr.Validation("parse form", "Invalid form submission")
	}
	return form, func() { _ = form.RemoveAll() }, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func formFiles(form *multipart.Form, key string) []models.Upload {
	var out []models.Upload
	for _, fh := range form.File[key] {
		if fh.Filename == "" {
			continue
		}
		out = append(out, toUpload(fh))
	}
	return out
}

func formFile(form *multipart.Form, key string) *models.Upload {
	files := formFiles(form, key)
	if len(files) == 0 {
		return nil
	}
	return &files[0]
}

func toUpload(fh *multipart.FileHeader) models.Upload {
	return models.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func magazineInput(form *multipart.Form) content.MagazineInput {
	return content.MagazineInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		File:        formFile(form, "pdf"),
	}
}

func articleInput(form *multipart.Form) content.ArticleInput {
	in := content.ArticleInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		TitleImage:  formFile(form, "title_image"),
		Sections:    make([]content.SectionInput, models.SectionCount),
	}
	for i := range in.Sections {
		in.Sections[i] = content.SectionInput{
			Subheading: formValue(form, sectionField(i, "subheading")),
			Text:       formValue(form, sectionField(i, "text")),
			Existing:   form.Value[sectionField(i, "existing")],
			Images:     formFiles(form, sectionField(i, "images")),
		}
	}
	return in
}

// flashMessage returns the error or success text carried over a redirect
func flashMessage(c *fiber.Ctx) (errMsg, success string) {
	fm := flash.Get(c)
	msg, _ := fm["message"].(string)
	if msg == "" {
		return "", ""
	}
	if kind, _ := fm["type"].(string); kind == "error" {
		return msg, ""
	}
	return "", msg
}

func flashError(c *fiber.Ctx, err error, to string) error {
	return flash.WithError(c, fiber.Map{"type": "error", "message": apperr.Message(err)}).Redirect(to)
}

func flashSuccess(c *fiber.Ctx, msg, to string) error {
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect(to)
}
