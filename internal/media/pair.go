package media

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pair holds the result of UploadPair. A nil field means that payload was
// not supplied.
type Pair struct {
	Image *Asset
	Video *Asset
}

// UploadPair uploads the supplied image and video concurrently and waits
// for both. The first failure cancels the sibling upload and is returned.
// When one half succeeded and the uploader can discard assets, the orphan is
// deleted on a best-effort basis; otherwise it is left at the media host.
func UploadPair(ctx context.Context, u Uploader, image, video []byte, log *zap.Logger) (Pair, error) {
	var (
		out    Pair
		imgOut Asset
		vidOut Asset
	)
	g, gctx := errgroup.WithContext(ctx)
	if image != nil {
		g.Go(func() error {
			a, err := u.Upload(gctx, Image, image)
			if err != nil {
				return err
			}
			imgOut = a
			return nil
		})
	}
	if video != nil {
		g.Go(func() error {
			a, err := u.Upload(gctx, Video, video)
			if err != nil {
				return err
			}
			vidOut = a
			return nil
		})
	}
	err := g.Wait()
	if image != nil && imgOut.URL != "" {
		out.Image = &imgOut
	}
	if video != nil && vidOut.URL != "" {
		out.Video = &vidOut
	}
	if err != nil {
		discardOrphans(u, out, log)
		return Pair{}, err
	}
	return out, nil
}

func discardOrphans(u Uploader, p Pair, log *zap.Logger) {
	d, ok := u.(Discarder)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, a := range []*Asset{p.Image, p.Video} {
		if a == nil {
			continue
		}
		if err := d.Discard(ctx, *a); err != nil && log != nil {
			log.Warn("discard orphaned asset", zap.String("public_id", a.PublicID), zap.Error(err))
		}
	}
}

// IsTimeout reports whether err came from an upload exceeding its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
