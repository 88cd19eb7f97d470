package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PhotoUpload is one file picked in the browser
type PhotoUpload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// UploadResult summarizes one AddPhotos call
type UploadResult struct {
	Added    int
	Rejected []string
	Dropped  int
}

// AddPhotos reads each upload into an inline data URL and appends it to the
// draft. Reads run concurrently and append in completion order. Only as
// many reads start as there are free slots, and every append re-checks the
// cap under the lock, so the list never holds more than MaxPhotos.
func (v *WizardView) AddPhotos(ctx context.Context, uploads []PhotoUpload) (*UploadResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoPhotos
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	free := MaxPhotos - len(v.draft.Photos) - v.uploading
	if free <= 0 {
		v.mu.Unlock()
		v.emit.Toast(errorToast(fmt.Sprintf("You can upload up to %d photos", MaxPhotos)))
		return nil, ErrPhotoLimit
	}
	batch := uploads[:min(len(uploads), free)]
	v.uploading += len(batch)
	v.mu.Unlock()

	res := &UploadResult{Dropped: len(uploads) - len(batch)}
	var rejected []string

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range batch {
		g.Go(func() error {
			defer func() {
				v.mu.Lock()
				v.uploading--
				v.mu.Unlock()
			}()

			payload, err := encodePhoto(gctx, u, v.maxPhotoBytes)
			if err != nil {
				if IsValidation(err) {
					v.mu.Lock()
					rejected = append(rejected, u.Filename)
					v.mu.Unlock()
					log.Debug().Str("filename", u.Filename).Err(err).Msg("Photo rejected")
					return nil
				}
				return fmt.Errorf("failed to read %s: %w", u.Filename, err)
			}

			v.mu.Lock()
			defer v.mu.Unlock()
			if v.closed || len(v.draft.Photos) >= MaxPhotos {
				res.Dropped++
				return nil
			}
			v.draft.Photos = append(v.draft.Photos, payload)
			res.Added++
			return nil
		})
	}

	err := g.Wait()

	v.mu.Lock()
	res.Rejected = rejected
	v.mu.Unlock()

	for _, name := range res.Rejected {
		v.emit.Toast(errorToast(fmt.Sprintf("%s is not a supported image", name)))
	}
	if res.Dropped > 0 {
		v.emit.Toast(errorToast(fmt.Sprintf("You can upload up to %d photos", MaxPhotos)))
	}
	return res, err
}

// encodePhoto reads an upload into a data URL, rejecting non-images and
// files above maxBytes
func encodePhoto(ctx context.Context, u PhotoUpload, maxBytes int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := u.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", validationError("photo is too large")
	}
	if len(data) == 0 {
		return "", validationError("photo is empty")
	}

	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return "", validationError(fmt.Sprintf("unsupported content type %s", mediaType))
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
