package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/utils"
)

// Fetcher downloads artifacts over HTTP(S) with bounded retries on
// connection failures and server errors.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher creates a new fetcher instance
func NewFetcher() *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.HTTPClient.Timeout = 30 * time.Minute // Allow long downloads
	client.Logger = nil                          // progress is logged below instead

	return &Fetcher{client: client}
}

// Fetch downloads a file from the given URL to the specified destination
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	log.Infof("Downloading %s to %s", url, destPath)

	// Create the destination directory if it doesn't exist
	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", destDir, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "sudopush/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d: %s", resp.StatusCode, resp.Status)
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}

	written, err := io.Copy(destFile, newProgressReader(resp.Body, resp.ContentLength, url))
	if err != nil {
		destFile.Close()
		// Clean up the partial file on error
		os.Remove(destPath)
		return fmt.Errorf("failed to write to destination file: %w", err)
	}
	if err := destFile.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to close destination file %s: %w", destPath, err)
	}

	log.Infof("Successfully downloaded %s (%s) to %s", url, utils.FormatSize(written), destPath)
	return nil
}

// progressReader wraps an io.Reader to provide progress logging
type progressReader struct {
	reader      io.Reader
	totalSize   int64
	written     int64
	url         string
	lastLogTime time.Time
	logInterval time.Duration
}

func newProgressReader(reader io.Reader, totalSize int64, url string) *progressReader {
	return &progressReader{
		reader:      reader,
		totalSize:   totalSize,
		url:         url,
		lastLogTime: time.Now(),
		logInterval: 10 * time.Second,
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.written += int64(n)

		// Log progress periodically
		now := time.Now()
		if now.Sub(pr.lastLogTime) >= pr.logInterval {
			if pr.totalSize > 0 {
				progress := float64(pr.written) / float64(pr.totalSize) * 100
				log.ProgressInfof("Download progress for %s: %.1f%% (%s/%s)", pr.url, progress,
					utils.FormatSize(pr.written), utils.FormatSize(pr.totalSize))
			} else {
				log.ProgressInfof("Download progress for %s: %s", pr.url, utils.FormatSize(pr.written))
			}
			pr.lastLogTime = now
		}
	}
	return n, err
}

// Checksum calculates the SHA256 checksum of a file
func Checksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
