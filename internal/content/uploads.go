// Package content implements the magazine and article submission workflows:
// validate the form, push its files to object storage, then write one row.
package content

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/models"
	"github.com/bilgisen/pressdesk/internal/utils"
)

// Accepted file extensions per upload field
var (
	MagazineTypes   = []string{"pdf"}
	TitleImageTypes = []string{"png", "jpg", "jpeg", "webp"}
	ImageTypes      = []string{"png", "jpg", "jpeg", "gif", "webp"}
)

// previewScheme prefixes URLs that only existed in the browser
const previewScheme = "blob:"

// CheckType returns a validation error unless the file's extension is allowed
func CheckType(field string, file models.Upload, allowed []string) error {
	ext := utils.Extension(file.Filename)
	if ext == "" || !slices.Contains(allowed, ext) {
		return apperr.Validation("validate", fmt.Sprintf("%s must be a %s file", field, joinTypes(allowed)))
	}
	return nil
}

func joinTypes(types []string) string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = "." + t
	}
	if len(out) == 1 {
		return out[0]
	}
	return strings.Join(out[:len(out)-1], ", ") + " or " + out[len(out)-1]
}

// RetainedURLs drops empty entries and local preview URLs from previously
// stored image URLs, keeping order
func RetainedURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, previewScheme) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// job is one file to upload. The public URL lands in *dest.
type job struct {
	bucket string
	file   models.Upload
	dest   *string
}

type object struct {
	bucket, key string
}

// uploader pushes a batch of files concurrently. The first failure cancels
// the rest of the batch.
type uploader struct {
	store backend.ObjectStore
	now   func() time.Time
	log   zerolog.Logger
}

func (u *uploader) run(ctx context.Context, jobs []job) ([]object, error) {
	var (
		mu   sync.Mutex
		done []object
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			key := utils.ObjectName(j.file.Filename, u.now())
			body, err := j.file.Open()
			if err != nil {
				return apperr.Upload("open "+j.file.Filename, err)
			}
			defer body.Close()

			if err := u.store.Upload(gctx, j.bucket, key, body, j.file.Size, j.file.ContentType); err != nil {
				return apperr.Upload("upload to "+j.bucket, err)
			}
			*j.dest = u.store.PublicURL(j.bucket, key)

			mu.Lock()
			done = append(done, object{bucket: j.bucket, key: key})
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		u.log.Debug().Int("files", len(done)).Msg("upload batch finished")
	}
	return done, err
}

// discard removes objects of a failed submission. Failures are logged only.
func (u *uploader) discard(ctx context.Context, objects []object) {
	if len(objects) == 0 {
		return
	}
	byBucket := map[string][]string{}
	for _, o := range objects {
		byBucket[o.bucket] = append(byBucket[o.bucket], o.key)
	}
	for bucket, keys := range byBucket {
		if err := u.store.Remove(context.WithoutCancel(ctx), bucket, keys...); err != nil {
			u.log.Error().Err(err).Str("bucket", bucket).Strs("keys", keys).Msg("failed to remove orphaned uploads")
			continue
		}
		u.log.Info().Str("bucket", bucket).Int("count", len(keys)).Msg("removed uploads of failed submission")
	}
}
