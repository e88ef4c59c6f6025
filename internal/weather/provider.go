package weather

import "context"

// Fetcher retrieves the current-weather payload for one named location.
// A "not found" answer from the API is a successful fetch; callers check
// Response.NotFound.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, location string) (Response, error)
}
