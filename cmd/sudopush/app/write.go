package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
)

var writeContent string

var writeCmd = &cobra.Command{
	Use:   "write REMOTE_PATH",
	Short: "Write generated content to a file on the remote host",
	Long: `Write content to a file on the remote host without keeping a local
copy around. The content comes from --content or from stdin, goes
through a temporary local file that is removed afterwards, and lands at
the destination with sudo.

Examples:
  # Write a one-line config
  sudopush write /etc/app/flag.conf --content "enabled=true" --mode 0644

  # Pipe a rendered template
  render-config | sudopush write /etc/app/app.conf --owner app:app`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remotePath := args[0]

		content := writeContent
		if !cmd.Flags().Changed("content") {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read content from stdin: %w", err)
			}
			content = string(data)
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
			return provision.UploadString(s.client, content, remotePath, s.attrs())
		})
		if err != nil {
			return err
		}

		log.Infof("✅ Wrote %d bytes to %s:%s", len(content), s.host.Name, remotePath)
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeContent, "content", "", "Content to write (default: read from stdin)")
	addAttrFlags(writeCmd)
}
