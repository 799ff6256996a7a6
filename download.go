package arxivhunter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PDFFile returns where the PDF for id is kept under dir, organised by
// identifier prefix:
//
//	2301.00001     -> dir/2301/2301.00001.pdf
//	hep-th/9901001 -> dir/hep-th/9901001.pdf
func PDFFile(dir, id string) string {
	if archive, num, ok := strings.Cut(id, "/"); ok {
		return filepath.Join(dir, archive, num+".pdf")
	}
	prefix := id
	if len(id) >= 4 {
		prefix = id[:4]
	}
	return filepath.Join(dir, prefix, id+".pdf")
}

// DownloadPDF saves the PDF for id under dir and returns its path. An
// existing file is kept and not downloaded again.
func (c *Client) DownloadPDF(ctx context.Context, id, dir string) (string, error) {
	path := PDFFile(dir, id)
	if _, err := os.Stat(path); err == nil {
		c.log.Debug("pdf already downloaded", zap.String("id", id), zap.String("path", path))
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create pdf dir: %w", err)
	}

	link := PDFURL(c.baseURL, id)
	c.log.Debug("downloading pdf", zap.String("id", id), zap.String("url", link))
	resp, err := c.get(ctx, link)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: download %s: %w", ErrNetwork, link, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}
