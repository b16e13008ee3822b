package provision

import "fmt"

// CommandError reports a privileged remote command that exited with a
// non-zero status.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("remote command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// TransferError reports a file copy that failed between the local
// machine and the remote host.
type TransferError struct {
	LocalPath  string
	RemotePath string
	Err        error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to transfer %s to %s: %v", e.LocalPath, e.RemotePath, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
