package asset

import (
	"context"
	"errors"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-rotmg/internal/source"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds the number of sources a format loader
// fetches at once.
const DefaultFetchConcurrency = 8

// Record is one parsed asset produced by a format loader.
type Record struct {
	Category string
	Key      string
	Value    any

	// Source is the index of the source the record came from. Later
	// sources of a container override earlier ones.
	Source int
}

// Request is everything a format loader gets for one container.
type Request struct {
	Category string
	Fetcher  source.Loader
	Sources  []string
	Settings Settings
}

// FormatLoader turns the sources of a container into records. Records
// returned alongside an error are kept, so a container may be partially
// populated.
type FormatLoader interface {
	Load(ctx context.Context, req Request) ([]Record, error)
}

// ParseFunc parses the payload of the source at index i.
type ParseFunc func(i int, src string, data []byte) ([]Record, error)

// FetchAll fetches every source of req concurrently and parses each payload
// with parse. A failing source does not stop its siblings. Records come back
// in source order. Parse failures are reported as ParseError, fetch failures
// as source.FetchError.
func FetchAll(ctx context.Context, req Request, parse ParseFunc) ([]Record, error) {
	results := make([][]Record, len(req.Sources))
	errs := make([]error, len(req.Sources))

	var g errgroup.Group
	g.SetLimit(DefaultFetchConcurrency)
	for i, src := range req.Sources {
		g.Go(func() error {
			data, err := req.Fetcher.Fetch(ctx, src)
			if err != nil {
				var fe *source.FetchError
				if !errors.As(err, &fe) {
					err = &source.FetchError{Source: src, Err: err}
				}
				errs[i] = err
				return nil
			}

			recs, err := parse(i, src, data)
			if err != nil {
				errs[i] = &ParseError{Category: req.Category, Source: src, Err: err}
			}
			for j := range recs {
				recs[j].Source = i
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	var records []Record
	el := goerrors.NewErrorList()
	for i := range req.Sources {
		records = append(records, results[i]...)
		el.Add(errs[i])
	}

	return records, el.Err()
}
