package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run COMMAND...",
	Short: "Run a command on the remote host",
	Long: `Run a command on the remote host and print its combined output. The
arguments are joined with spaces and passed to the remote shell as is.

Examples:
  sudopush run systemctl status nginx
  sudopush run --host web-1 "df -h /var"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := strings.Join(args, " ")

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		s, err := connect()
		if err != nil {
			return err
		}
		defer s.Close()
		shutdownHandler.SetManager(s.manager)

		log.Debugf("Running %q on %s", command, s.host.Name)
		var output string
		err = s.manager.WithHostLock(shutdownHandler.Context(), s.host.Name, func() error {
			var runErr error
			output, runErr = s.client.RunCommand(command)
			return runErr
		})
		if err != nil {
			return fmt.Errorf("failed to run %q on %s: %w", command, s.host.Name, err)
		}

		fmt.Print(output)
		return nil
	},
}
