package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/interfaces"
	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
)

// progressRunner advances a progress bar for every file that lands on
// the remote host.
type progressRunner struct {
	interfaces.Runner
	bar *log.ProgressBar
}

func (r *progressRunner) UploadFile(localPath, remotePath string) error {
	err := r.Runner.UploadFile(localPath, remotePath)
	if err == nil {
		r.bar.Increment()
	}
	return err
}

// countFiles counts the regular files under dir
func countFiles(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

var pushDirCmd = &cobra.Command{
	Use:   "push-dir LOCAL_DIR REMOTE_DIR",
	Short: "Push a directory tree to the remote host",
	Long: `Push a directory tree to the remote host. Directories are created
before the files inside them, and ownership and permissions are applied
to every entry as it lands. The first failure stops the upload; entries
already pushed stay on the host.

Examples:
  # Mirror ./site into the web root
  sudopush push-dir ./site /var/www/site --owner www-data:www-data --mode 0644`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		localDir, remoteDir := args[0], args[1]

		info, err := os.Stat(localDir)
		if err != nil {
			return fmt.Errorf("failed to read local directory %s: %w", localDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory, use 'sudopush push'", localDir)
		}

		total, err := countFiles(localDir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", localDir, err)
		}

		shutdownHandler := NewGracefulShutdownHandler()
		defer shutdownHandler.Close()

		s, err := connect()
		if err != nil {
			return err
		}
		defer s.Close()
		shutdownHandler.SetManager(s.manager)

		bar := log.NewProgressBar(fmt.Sprintf("Uploading %s", filepath.Base(localDir)), total)
		runner := &progressRunner{Runner: s.client, bar: bar}

		err = s.manager.WithHostLock(shutdownHandler.Context(), s.host.Name, func() error {
			return provision.UploadDir(runner, localDir, remoteDir, s.attrs())
		})
		if err != nil {
			if !log.IsQuiet() {
				fmt.Println()
			}
			return err
		}
		bar.Complete()

		log.Infof("✅ Pushed %d files from %s to %s:%s", total, localDir, s.host.Name, remoteDir)
		return nil
	},
}

func init() {
	addAttrFlags(pushDirCmd)
}
