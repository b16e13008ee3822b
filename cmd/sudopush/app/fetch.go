package app

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/envar"
	"github.com/sudopush/sudopush/pkg/fetch"
	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
)

var fetchSHA256 string

var fetchCmd = &cobra.Command{
	Use:   "fetch URL REMOTE_PATH",
	Short: "Download a file and push it to the remote host",
	Long: `Download a file over HTTP(S) into the local cache and push it to the
remote host. Transient download failures are retried. With --sha256 the
download is verified, and a cached copy with a matching checksum is
reused instead of downloading again.

Examples:
  sudopush fetch https://example.com/releases/app-1.4.2.bin /usr/local/bin/app \
    --sha256 2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae \
    --owner root:root --mode 0755`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, remotePath := args[0], args[1]
		cachePath := filepath.Join(envar.SudopushCacheDir(), path.Base(remotePath))

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		if cachedMatches(cachePath) {
			log.Infof("Using cached %s", cachePath)
		} else {
			fetcher := fetch.NewFetcher()
			if err := fetcher.Fetch(shutdownHandler.Context(), url, cachePath); err != nil {
				return err
			}
			if fetchSHA256 != "" {
				sum, err := fetch.Checksum(cachePath)
				if err != nil {
					return err
				}
				if sum != fetchSHA256 {
					os.Remove(cachePath)
					return fmt.Errorf("checksum mismatch for %s: got %s, expected %s", url, sum, fetchSHA256)
				}
			}
		}

		s, err := connect()
		if err != nil {
			return err
		}
		defer s.Close()
		shutdownHandler.SetManager(s.manager)

		err = s.manager.WithHostLock(shutdownHandler.Context(), s.host.Name, func() error {
			return provision.UploadFile(s.client, cachePath, remotePath, s.attrs())
		})
		if err != nil {
			return err
		}

		log.Infof("✅ Fetched %s to %s:%s", url, s.host.Name, remotePath)
		return nil
	},
}

// cachedMatches reports whether the cached copy can be reused, which
// requires a --sha256 to compare against.
func cachedMatches(cachePath string) bool {
	if fetchSHA256 == "" {
		return false
	}
	sum, err := fetch.Checksum(cachePath)
	return err == nil && sum == fetchSHA256
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSHA256, "sha256", "", "Expected SHA-256 checksum of the download")
	addAttrFlags(fetchCmd)
}
