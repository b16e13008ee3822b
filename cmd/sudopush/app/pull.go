package app

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/log"
)

var pullCmd = &cobra.Command{
	Use:   "pull REMOTE_PATH LOCAL_PATH",
	Short: "Pull a file from the remote host",
	Long: `Pull a file from the remote host over SFTP. When LOCAL_PATH is an
existing directory the file keeps its remote name inside it.

Examples:
  sudopush pull /var/log/app/app.log ./logs/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remotePath, localPath := args[0], args[1]

		if info, err := os.Stat(localPath); err == nil && info.IsDir() {
			localPath = filepath.Join(localPath, path.Base(remotePath))
		}

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		s, err := connect()
		if err != nil {
			return err
		}
		defer s.Close()
		shutdownHandler.SetManager(s.manager)

		err = s.manager.WithHostLock(shutdownHandler.Context(), s.host.Name, func() error {
			return s.client.DownloadFile(remotePath, localPath)
		})
		if err != nil {
			return fmt.Errorf("failed to pull %s:%s: %w", s.host.Name, remotePath, err)
		}

		log.Infof("✅ Pulled %s:%s to %s", s.host.Name, remotePath, localPath)
		return nil
	},
}
