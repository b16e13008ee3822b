package app

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/envar"
	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
)

var (
	syncContents string
	syncDelete   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync LOCAL_DIR REMOTE_DIR",
	Short: "Synchronize a directory to the remote host with rsync",
	Long: `Synchronize a local directory to the remote host using the local rsync
binary. Only changed files are transferred. Unlike push-dir this writes
as the login user, so the remote directory must be writable by it.

The --contents flag takes a string: "true" or "True" syncs the contents
of LOCAL_DIR into REMOTE_DIR, anything else places LOCAL_DIR itself
inside REMOTE_DIR. This mirrors rsync's trailing-slash rule without
requiring the caller to get the slash right.

Examples:
  # Place ./site inside /srv/www (result: /srv/www/site)
  sudopush sync ./site /srv/www

  # Spill the contents of ./site into /srv/www/site
  sudopush sync ./site /srv/www/site --contents true --delete`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		localDir, remoteDir := args[0], args[1]

		if _, err := exec.LookPath("rsync"); err != nil {
			return fmt.Errorf("rsync not found in PATH: %w", err)
		}
		info, err := os.Stat(localDir)
		if err != nil {
			return fmt.Errorf("failed to read local directory %s: %w", localDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", localDir)
		}

		inv, err := loadInventory()
		if err != nil {
			return err
		}
		host, err := resolveHost(inv)
		if err != nil {
			return err
		}
		if host.KeyFile == "" {
			return fmt.Errorf("sync requires key-based authentication, set keyFile in the inventory or pass --key")
		}

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		source := provision.SyncSourcePath(localDir, provision.ParseBool(syncContents))
		dest := fmt.Sprintf("%s@%s:%s", host.User, host.Address, provision.TrimTrailingSlash(remoteDir))
		sshCommand := fmt.Sprintf("ssh -o StrictHostKeyChecking=no -p %s -i %s",
			host.Port, envar.ExpandHome(host.KeyFile))

		rsyncArgs := []string{"-az"}
		if verbose {
			rsyncArgs = append(rsyncArgs, "-v")
		}
		if syncDelete {
			rsyncArgs = append(rsyncArgs, "--delete")
		}
		rsyncArgs = append(rsyncArgs, "-e", sshCommand, source, dest)

		log.Debugf("Running rsync %v", rsyncArgs)
		rsync := exec.CommandContext(shutdownHandler.Context(), "rsync", rsyncArgs...)
		rsync.Stdout = os.Stdout
		rsync.Stderr = os.Stderr
		if err := rsync.Run(); err != nil {
			return fmt.Errorf("rsync to %s failed: %w", host.Name, err)
		}

		log.Infof("✅ Synced %s to %s:%s", source, host.Name, remoteDir)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncContents, "contents", "",
		`Sync the contents of LOCAL_DIR instead of the directory itself ("true" or "True")`)
	syncCmd.Flags().BoolVar(&syncDelete, "delete", false, "Delete remote files that no longer exist locally")
}
