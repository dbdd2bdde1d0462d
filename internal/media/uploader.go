// Package media is the client side of the asset collaborator: the external
// host that stores movie images and videos and hands back durable URLs.
package media

import (
	"context"
	"errors"
)

// Kind is the resource type of an asset.
type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
)

// ErrEmptyPayload is returned when an upload is attempted with no bytes.
var ErrEmptyPayload = errors.New("empty asset payload")

// Asset is an uploaded file as reported by the media host.
type Asset struct {
	Kind     Kind
	URL      string
	PublicID string
}

// Uploader stores raw bytes and returns where they can be retrieved.
type Uploader interface {
	Upload(ctx context.Context, kind Kind, data []byte) (Asset, error)
}

// Discarder is implemented by uploaders that can delete an asset again. It
// is used to reclaim the surviving half of a failed upload pair.
type Discarder interface {
	Discard(ctx context.Context, a Asset) error
}
