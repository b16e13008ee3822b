// Package provision composes the remote-execution primitives of a single
// host into privileged provisioning operations: upload a file, a
// directory tree or in-memory content, create directories, and fix up
// ownership and permissions afterwards. Every operation takes the
// remote handle explicitly and blocks until the remote side has answered;
// the first failure aborts the operation and is returned to the caller.
package provision

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sudopush/sudopush/pkg/interfaces"
	"github.com/sudopush/sudopush/pkg/log"
)

// Attrs carries the optional ownership and permission mode applied to a
// remote path after it is created or uploaded. Empty fields are skipped;
// values pass through to the remote commands verbatim.
type Attrs struct {
	Owner string // e.g. "deploy:deploy"
	Mode  string // e.g. "755"
}

// IsZero reports whether neither owner nor mode is set.
func (a Attrs) IsZero() bool {
	return a.Owner == "" && a.Mode == ""
}

// Chown changes the ownership of remotePath. Callers skip the call when
// owner is empty; the function itself does not special-case emptiness.
func Chown(runner interfaces.CommandRunner, remotePath, owner string) error {
	cmd := fmt.Sprintf("sudo chown %s %s", owner, remotePath)
	log.Debugf("Running %q", cmd)
	if _, err := runner.RunCommand(cmd); err != nil {
		return &CommandError{Command: cmd, Err: err}
	}
	return nil
}

// Chmod changes the permission mode of remotePath. Same skip-when-empty
// contract as Chown.
func Chmod(runner interfaces.CommandRunner, remotePath, mode string) error {
	cmd := fmt.Sprintf("sudo chmod %s %s", mode, remotePath)
	log.Debugf("Running %q", cmd)
	if _, err := runner.RunCommand(cmd); err != nil {
		return &CommandError{Command: cmd, Err: err}
	}
	return nil
}

// ApplyAttrs applies ownership and then mode to remotePath, skipping
// empty fields. Ownership goes first so a restrictive mode can never get
// in the way of the chown. Zero commands are issued when both fields are
// empty.
func ApplyAttrs(runner interfaces.CommandRunner, remotePath string, attrs Attrs) error {
	if attrs.Owner != "" {
		if err := Chown(runner, remotePath, attrs.Owner); err != nil {
			return err
		}
	}
	if attrs.Mode != "" {
		if err := Chmod(runner, remotePath, attrs.Mode); err != nil {
			return err
		}
	}
	return nil
}

// UploadFile copies localPath to remotePath through the privileged copy
// primitive and applies attrs to the result. The copy runs with elevated
// rights because the destination may not be writable by the transfer
// identity. A failed copy is returned as a TransferError, a failed
// attribute command as a CommandError; nothing is retried.
func UploadFile(runner interfaces.Runner, localPath, remotePath string, attrs Attrs) error {
	log.Debugf("Uploading %s to %s", localPath, remotePath)
	if err := runner.UploadFile(localPath, remotePath); err != nil {
		return &TransferError{LocalPath: localPath, RemotePath: remotePath, Err: err}
	}
	return ApplyAttrs(runner, remotePath, attrs)
}

// UploadString writes content to a fresh temporary local file and uploads
// it to remotePath via UploadFile. The temporary file is removed on every
// exit path, and the removal never masks the upload error.
func UploadString(runner interfaces.Runner, content, remotePath string, attrs Attrs) error {
	tmp, err := os.CreateTemp("", "sudopush-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warningf("Failed to remove temporary file %s: %v", tmpPath, rmErr)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file %s: %w", tmpPath, err)
	}

	return UploadFile(runner, tmpPath, remotePath, attrs)
}

// MkdirAll creates remotePath and any missing parents with elevated
// rights (idempotent, mkdir -p), then applies attrs to remotePath.
func MkdirAll(runner interfaces.CommandRunner, remotePath string, attrs Attrs) error {
	cmd := fmt.Sprintf("sudo mkdir -p %s", remotePath)
	log.Debugf("Running %q", cmd)
	if _, err := runner.RunCommand(cmd); err != nil {
		return &CommandError{Command: cmd, Err: err}
	}
	return ApplyAttrs(runner, remotePath, attrs)
}

// UploadDir mirrors localDir under remoteDir, applying attrs to every
// directory it creates and every file it uploads. The walk is
// depth-first pre-order, so a directory is always created before the
// files inside it and before any of its subdirectories. The first
// failing creation or upload aborts the remaining traversal; files
// already uploaded stay where they are.
func UploadDir(runner interfaces.Runner, localDir, remoteDir string, attrs Attrs) error {
	return filepath.WalkDir(localDir, func(localPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, localPath)
		if err != nil {
			return fmt.Errorf("failed to resolve %s relative to %s: %w", localPath, localDir, err)
		}
		remotePath := remoteDir
		if rel != "." {
			// Remote side is POSIX regardless of the local separator.
			remotePath = path.Join(remoteDir, filepath.ToSlash(rel))
		}
		if entry.IsDir() {
			return MkdirAll(runner, remotePath, attrs)
		}
		return UploadFile(runner, localPath, remotePath, attrs)
	})
}
