package interfaces

// Runner defines the full remote-execution surface a provisioning
// operation may need on a single host
type Runner interface {
	CommandRunner
	FileTransfer
}

// CommandRunner defines the interface for executing privileged commands
// on the remote host
type CommandRunner interface {
	// Execute a shell command and return its combined output
	RunCommand(command string) (string, error)
}

// FileTransfer defines the interface for moving files between the local
// machine and the remote host
type FileTransfer interface {
	// Upload a file (local to remote); the destination may only be
	// writable with elevated rights
	UploadFile(localPath, remotePath string) error

	// Download a file (remote to local)
	DownloadFile(remotePath, localPath string) error
}
