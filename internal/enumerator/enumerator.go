package enumerator

import (
	"context"

	"github.com/escuriola/edaitorial/internal/fetcher"
)

// Enumerator discovers the pages of a site starting from target.
type Enumerator interface {
	Enumerate(ctx context.Context, target string) ([]*fetcher.Page, error)
}
