package repository

import (
	"context"
)

// PageRenderer fetches a URL through a real browser and returns the
// rendered markup once dynamic content has settled. Implementations
// must release any browser session on every exit path.
type PageRenderer interface {
	RenderPage(ctx context.Context, url string) (string, error)
}
