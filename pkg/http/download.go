package http

import (
	"context"
	"crypto/md5" //nolint:gosec // the platform publishes MD5 digests
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

const (
	// chunkSize bounds the memory used per write.
	chunkSize = 1 << 20

	googHashHeader = "x-goog-hash"
)

// DownloadFile streams path into dest, resuming an existing partial file when
// the server accepts byte ranges.
func (hc *HTTPClient) DownloadFile(ctx context.Context, path, dest string, h handle.Handle) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := hc.do(ctx, hc.apiURL(path), octetStream())
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := raiseForStatus(resp, h); err != nil {
		return err
	}
	hc.checkHubVersion(resp)

	expectedMD5 := md5FromGoogHash(resp.Header.Values(googHashHeader))
	total := resp.ContentLength

	hasher := md5.New() //nolint:gosec
	body := io.Reader(resp.Body)
	var offset int64
	appendMode := false

	if st, statErr := os.Stat(dest); statErr == nil && st.Mode().IsRegular() && st.Size() > 0 &&
		strings.EqualFold(resp.Header.Get("Accept-Ranges"), "bytes") {
		offset = st.Size()
		switch {
		case total >= 0 && offset == total:
			logger.Info("Download already complete", logger.Fields{"path": dest})
			_ = resp.Body.Close()
			body = http.NoBody
			appendMode = true
		case total >= 0 && offset > total:
			logger.Debug("Discarding oversized partial file", logger.Fields{"path": dest, "size": offset, "expected": total})
			offset = 0
		default:
			// Resume against the resolved URL, which may be a redirect target.
			_ = resp.Body.Close()
			ranged, err := hc.resume(ctx, resp.Request.URL.String(), offset, h)
			if err != nil {
				return err
			}
			defer func() { _ = ranged.Body.Close() }()
			if ranged.StatusCode == http.StatusPartialContent {
				logger.Info("Resuming download", logger.Fields{"path": dest, "from": offset, "total": total})
				body = ranged.Body
				appendMode = true
			} else {
				logger.Debug("Server ignored range request, restarting", logger.Fields{"path": dest})
				body = ranged.Body
				offset = 0
			}
		}
	}

	if appendMode {
		if err := hashFile(hasher, dest); err != nil {
			return err
		}
	}

	if err := hc.writeBody(cancel, body, dest, appendMode, offset, total, hasher); err != nil {
		return err
	}

	if expectedMD5 == "" {
		return nil
	}
	actual := base64.StdEncoding.EncodeToString(hasher.Sum(nil))
	if actual != expectedMD5 {
		_ = os.Remove(dest)
		return &errors.DataCorruptionError{Path: dest, Expected: expectedMD5, Actual: actual}
	}
	return nil
}

func (hc *HTTPClient) resume(ctx context.Context, resolvedURL string, offset int64, h handle.Handle) (*http.Response, error) {
	header := octetStream()
	header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	resp, err := hc.do(ctx, resolvedURL, header)
	if err != nil {
		return nil, err
	}
	if err := raiseForStatus(resp, h); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// writeBody copies body into dest in chunkSize writes while feeding hasher.
func (hc *HTTPClient) writeBody(cancel func(), body io.Reader, dest string, appendMode bool, offset, total int64, hasher hash.Hash) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	if err := fsutil.EnsureFileDir(dest); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", dest)
	}
	file, err := os.OpenFile(dest, flags, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrapf(err, "could not open %s", dest)
	}
	defer func() { _ = file.Close() }()

	var out io.Writer = file
	if hc.showProgress {
		bar := pb.New64(total)
		bar.SetTemplate(pb.Full)
		bar.Set(pb.Bytes, true)
		bar.SetWriter(hc.progressOut)
		bar.SetCurrent(offset)
		bar.Start()
		defer bar.Finish()
		out = bar.NewProxyWriter(file)
	}

	reader := newIdleTimeoutReader(body, hc.readTimeout, cancel)
	defer reader.Stop()

	// Neither side may short-circuit the fixed-size buffer.
	dst := struct{ io.Writer }{io.MultiWriter(out, hasher)}
	src := struct{ io.Reader }{reader}
	if _, err := io.CopyBuffer(dst, src, make([]byte, chunkSize)); err != nil {
		if reader.Expired() {
			return errors.Wrapf(errors.ErrReadTimeout, "no data received for %s while downloading %s", hc.readTimeout, dest)
		}
		return errors.Wrapf(err, "failed to write %s", dest)
	}
	if err := file.Sync(); err != nil {
		return errors.Wrapf(err, "could not sync %s", dest)
	}
	return nil
}

func hashFile(hasher hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(hasher, f); err != nil {
		return errors.Wrap(err, "hashing")
	}
	return nil
}

// md5FromGoogHash extracts the base64 MD5 digest from x-goog-hash values such
// as "crc32c=n03x6A==,md5=Ojk9c3dhfxgoKVVHYwFbHQ==".
func md5FromGoogHash(values []string) string {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
			if ok && strings.EqualFold(key, "md5") {
				return value
			}
		}
	}
	return ""
}

func octetStream() http.Header {
	return http.Header{"Accept": []string{"application/octet-stream"}}
}
