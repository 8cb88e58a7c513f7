package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LoadError means the dataset could not be produced at all. The dashboard
// must not render any step when it sees one.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Source yields a header and the raw cell rows of a tabular dataset.
type Source interface {
	Name() string
	Rows(ctx context.Context) (header []string, rows [][]string, err error)
}

// FileSource reads a CSV file whose first row is the header.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return s.Path
}

func (s FileSource) Rows(ctx context.Context) ([]string, [][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Load reads the whole source and negotiates its capabilities. Any failure is
// returned as *LoadError.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	header, rows, err := src.Rows(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	if len(header) == 0 {
		return nil, &LoadError{Source: src.Name(), Err: errors.New("missing header row")}
	}
	return New(src.Name(), header, rows), nil
}

// Loader is what the dashboard calls on every render. Without caching each
// call re-reads the source; with caching the first successful load is kept
// for the lifetime of the process and later changes to the file are not seen.
type Loader struct {
	src   Source
	cache bool

	mu     sync.Mutex
	cached *Dataset
}

func NewLoader(src Source, cache bool) *Loader {
	return &Loader{src: src, cache: cache}
}

func (l *Loader) Source() string {
	return l.src.Name()
}

func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if !l.cache {
		return Load(ctx, l.src)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return l.cached, nil
	}
	ds, err := Load(ctx, l.src)
	if err != nil {
		return nil, err
	}
	l.cached = ds
	return ds, nil
}
