package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seenimoa/derivx/pkg/utils"
)

// FileSource reads OHLCV files from a local directory.
type FileSource struct {
	Dir string
}

// NewFileSource returns a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Name implements SeriesSource.
func (f *FileSource) Name() string { return "file:" + f.Dir }

// Open implements SeriesSource.
func (f *FileSource) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Symbols like BTC/USDT must not escape the data directory.
	if filename != filepath.Base(filename) {
		return nil, fmt.Errorf("open %s: %w", filename, ErrSymbolNotFound)
	}
	fh, err := os.Open(filepath.Join(f.Dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", filename, ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	return fh, nil
}

// List implements SeriesSource. Only *_ohlcv.csv files are returned.
func (f *FileSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), utils.FileSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
