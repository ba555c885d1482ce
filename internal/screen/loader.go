package screen

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Token identifies one issued load. Tokens increase monotonically per Loader.
type Token uint64

// Loader guards a screen's data against out-of-order load completions. A
// completion is committed only if it is newer than the last committed one,
// so the final state always reflects the most recently issued load that has
// completed, never an older one that finished late.
//
// The zero value is ready to use.
type Loader struct {
	issued    Token
	committed Token
}

// Begin issues a new load token.
func (l *Loader) Begin() Token {
	l.issued++
	return l.issued
}

// Settle reports whether the load identified by t may commit its result.
// It returns false for stale completions.
func (l *Loader) Settle(t Token) bool {
	if t <= l.committed || t > l.issued {
		return false
	}
	l.committed = t
	return true
}

// Loading reports whether the latest issued load has not completed yet.
func (l *Loader) Loading() bool {
	return l.committed < l.issued
}

// Latest returns the most recently issued token.
func (l *Loader) Latest() Token {
	return l.issued
}

// FetchAll runs every fetcher concurrently and waits for all of them. The
// first error is returned. A failing fetcher does not cancel its siblings.
func FetchAll(ctx context.Context, fetchers ...func(context.Context) error) error {
	var g errgroup.Group
	for _, fetch := range fetchers {
		fetch := fetch
		g.Go(func() error {
			return fetch(ctx)
		})
	}
	return g.Wait()
}
