// Package airport stores the airport catalog and answers the two spatial
// queries the engine needs: near a point and near a route.
package airport

import (
	"context"
	"errors"

	"avroute/internal/model"
)

// ErrNotFound is returned when an ident is not in the catalog.
var ErrNotFound = errors.New("airport not found")

// Repository reads the airport catalog. NearPoint and NearRoute are coarse
// prefilters; exact corridor and bucket math happens downstream, so both may
// over-return but must never drop an airport inside the requested bounds.
type Repository interface {
	ByIdent(ctx context.Context, ident string) (model.Airport, error)
	All(ctx context.Context) ([]model.Airport, error)
	NearPoint(ctx context.Context, p model.NavPoint, radiusNM float64) ([]model.Airport, error)
	NearRoute(ctx context.Context, start, end model.NavPoint, widthNM float64) ([]model.Airport, error)
}
