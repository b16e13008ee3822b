package app

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/archive"
	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
	"github.com/sudopush/sudopush/pkg/utils"
)

var deployCmd = &cobra.Command{
	Use:   "deploy SRC REMOTE_DIR",
	Short: "Deploy a directory or archive into a remote directory",
	Long: `Deploy a local directory or archive into a directory on the remote
host. The source is normalized to a zstd-compressed tarball, pushed to
the host in one transfer, and unpacked there with sudo. A plain file
becomes a single-entry archive; tar, tar.gz, tgz, tar.bz2 and tar.xz
inputs are recompressed. Ownership and permissions are applied to the
destination directory itself.

Examples:
  # Deploy a release directory
  sudopush deploy ./build /opt/app/current --owner app:app

  # Deploy an archive produced by CI
  sudopush deploy app-1.4.2.tar.gz /opt/app/current`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, remoteDir := args[0], args[1]

		compressor, err := archive.NewCompressor()
		if err != nil {
			return err
		}
		defer compressor.Close()

		workDir, err := os.MkdirTemp("", "sudopush-deploy-*")
		if err != nil {
			return fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(workDir)

		artifact, err := compressor.EnsureTarZst(src, workDir)
		if err != nil {
			return err
		}
		if stat, err := os.Stat(artifact); err == nil {
			log.QuietInfof("Prepared %s (%s)", filepath.Base(artifact), utils.FormatSize(stat.Size()))
		}

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		s, err := connect()
		if err != nil {
			return err
		}
		defer s.Close()
		shutdownHandler.SetManager(s.manager)

		remoteArchive := path.Join("/tmp", "sudopush-deploy-"+filepath.Base(artifact))
		err = s.manager.WithHostLock(shutdownHandler.Context(), s.host.Name, func() error {
			if err := provision.MkdirAll(s.client, remoteDir, provision.Attrs{}); err != nil {
				return err
			}
			if err := provision.UploadFile(s.client, artifact, remoteArchive, provision.Attrs{}); err != nil {
				return err
			}
			if _, err := s.client.RunCommand(archive.ExtractCommand(remoteArchive, remoteDir)); err != nil {
				return fmt.Errorf("failed to extract %s on %s: %w", remoteArchive, s.host.Name, err)
			}
			if _, err := s.client.RunCommand(fmt.Sprintf("sudo rm -f %s", remoteArchive)); err != nil {
				log.Warningf("Failed to remove %s on %s: %v", remoteArchive, s.host.Name, err)
			}
			return provision.ApplyAttrs(s.client, remoteDir, s.attrs())
		})
		if err != nil {
			return err
		}

		log.Infof("✅ Deployed %s to %s:%s", src, s.host.Name, remoteDir)
		return nil
	},
}

func init() {
	addAttrFlags(deployCmd)
}
