package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/optionometer/market"
)

// FileImporter replays a saved option chain response. The expiration window
// was fixed when the snapshot was taken, so minDTE and maxDTE are ignored.
type FileImporter struct {
	Path string
}

var _ Importer = FileImporter{}

func (f FileImporter) FetchOptionChains(ctx context.Context, ticker string, minDTE, maxDTE int) ([]market.OptionChain, error) {
	body, err := ReadSnapshot(f.Path)
	if err != nil {
		return nil, err
	}
	return ParseChains(ticker, body)
}

// ReadSnapshot reads a response body saved by WriteSnapshot. Files ending in
// .xz are decompressed.
func ReadSnapshot(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz snapshot: %w", err)
		}
		r = xr
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return body, nil
}

// WriteSnapshot saves body to path, xz compressed when path ends in .xz.
func WriteSnapshot(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	data := body
	if strings.HasSuffix(path, ".xz") {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("create xz writer: %w", err)
		}
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("compress snapshot: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("compress snapshot: %w", err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
