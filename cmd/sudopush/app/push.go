package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
)

var pushCmd = &cobra.Command{
	Use:   "push LOCAL_FILE REMOTE_PATH",
	Short: "Push a single file to the remote host",
	Long: `Push a single file to the remote host, landing it at a destination the
login user may not be able to write directly. The content is staged under
/tmp and moved into place with sudo, then ownership and permissions are
applied.

Examples:
  # Push a config file into /etc on the only inventory host
  sudopush push ./app.conf /etc/app/app.conf --owner root:root --mode 0644

  # Push to an ad hoc target
  sudopush push ./app.conf /etc/app/app.conf --target admin@10.0.0.5:2222 --key ~/.ssh/id_ed25519`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		localPath, remotePath := args[0], args[1]

		info, err := os.Stat(localPath)
		if err != nil {
			return fmt.Errorf("failed to read local file %s: %w", localPath, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory, use 'sudopush push-dir'", localPath)
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
			return provision.UploadFile(s.client, localPath, remotePath, s.attrs())
		})
		if err != nil {
			return err
		}

		log.Infof("✅ Pushed %s to %s:%s", localPath, s.host.Name, remotePath)
		return nil
	},
}

func init() {
	addAttrFlags(pushCmd)
}
