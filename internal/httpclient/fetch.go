package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/antonholmquist/jason"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

const (
	// maxJSONBytes bounds feed payloads; real ones are a few KB.
	maxJSONBytes = 4 << 20
	sniffLen     = 512
)

// ErrNotImage is returned by DownloadFile when the body is not an image.
var ErrNotImage = errors.NewStd("response is not an image")

// FetchJSON GETs url and parses the body as a JSON object.
//
// A transport failure or non-2xx status returns a CategoryFeedFetch error.
// A body that is not a JSON object returns a CategoryFeedParse error. An empty
// or literal null body returns (nil, nil): the feed had nothing to say.
func (c *Client) FetchJSON(ctx context.Context, url string, headers map[string]string) (*jason.Object, error) {
	resp, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, fetchError(err, url, "fetch_json")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, sniffLen))
		return nil, fetchError(fmt.Errorf("unexpected status %d", resp.StatusCode), url, "fetch_json")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBytes))
	if err != nil {
		return nil, fetchError(err, url, "read_body")
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid JSON payload: %w", err)).
			Component("httpclient").
			Category(errors.CategoryFeedParse).
			URLContext(url).
			Build()
	}
	return obj, nil
}

// ProbeExists reports whether a HEAD request for url answers 2xx. Every
// failure, including 404, is false.
func (c *Client) ProbeExists(ctx context.Context, url string) bool {
	resp, err := c.Head(ctx, url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// DownloadFile streams url into destPath. The body goes to a temporary file in
// the destination directory and is renamed into place only when complete and
// recognised as an image, so destPath never holds a partial file. Without a
// caller deadline the download timeout applies instead of the shorter request
// timeout, since large images can take minutes on slow links.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string) (int64, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, downloadError(err, url, destPath, "create_dir")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return 0, downloadError(err, url, destPath, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, downloadError(fmt.Errorf("unexpected status %d", resp.StatusCode), url, destPath, "request")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return 0, downloadError(err, url, destPath, "create_temp")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, downloadError(err, url, destPath, "read_body")
	}
	head = head[:n]
	if ct := http.DetectContentType(head); !strings.HasPrefix(ct, "image/") {
		return 0, errors.New(fmt.Errorf("%w: detected %s", ErrNotImage, ct)).
			Component("httpclient").
			Category(errors.CategoryImageDownload).
			URLContext(url).
			Build()
	}

	written, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), resp.Body))
	if err != nil {
		return 0, downloadError(err, url, destPath, "write")
	}
	if err := tmp.Sync(); err != nil {
		return 0, downloadError(err, url, destPath, "sync")
	}
	if err := tmp.Close(); err != nil {
		return 0, downloadError(err, url, destPath, "close")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, downloadError(err, url, destPath, "chmod")
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		committed = true
		return 0, downloadError(err, url, destPath, "rename")
	}
	committed = true
	return written, nil
}

func fetchError(err error, url, op string) error {
	return errors.New(err).
		Component("httpclient").
		Category(errors.CategoryFeedFetch).
		URLContext(url).
		Context("operation", op).
		Build()
}

func downloadError(err error, url, path, op string) error {
	return errors.New(err).
		Component("httpclient").
		Category(errors.CategoryImageDownload).
		URLContext(url).
		FileContext(path).
		Context("operation", op).
		Build()
}
