package app

import (
	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir REMOTE_PATH",
	Short: "Create a directory on the remote host",
	Long: `Create a directory and any missing parents on the remote host with
sudo, then apply ownership and permissions to it. Creating a directory
that already exists is not an error.

Examples:
  sudopush mkdir /var/lib/app/releases --owner app:app --mode 0755`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remotePath := args[0]

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		s, err := connect()
		if err != nil {
			return err
		}
		defer s.Close()
		shutdownHandler.SetManager(s.manager)

		err = s.manager.WithHostLock(shutdownHandler.Context(), s.host.Name, func() error {
			return provision.MkdirAll(s.client, remotePath, s.attrs())
		})
		if err != nil {
			return err
		}

		log.Infof("✅ Created %s:%s", s.host.Name, remotePath)
		return nil
	},
}

func init() {
	addAttrFlags(mkdirCmd)
}
