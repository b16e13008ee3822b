package ssh

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/sudopush/sudopush/pkg/log"
)

// Client wraps one SSH connection to a remote host. It implements the
// command-runner and file-transfer interfaces the provisioning
// operations consume.
type Client struct {
	Host     string
	Port     string
	User     string
	Password string
	PrivKey  string

	client *ssh.Client
	sftp   *sftp.Client
}

// NewClient creates a new SSH client. privKey is the private key
// content, not a path; either it or password may be empty.
func NewClient(host, port, user, password, privKey string) *Client {
	return &Client{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		PrivKey:  privKey,
	}
}

// Connect dials the remote host, retrying a few times before giving up.
func (c *Client) Connect() error {
	var auth []ssh.AuthMethod

	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}

	if c.PrivKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(c.PrivKey))
		if err != nil {
			return fmt.Errorf("failed to parse SSH private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}

	config := &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         15 * time.Second,
	}

	addr := net.JoinHostPort(c.Host, c.Port)
	var err error
	var client *ssh.Client
	for range 5 {
		client, err = ssh.Dial("tcp", addr, config)
		if err != nil {
			log.Warningf("SSH connection to %s failed: %v, retrying...", addr, err)
			time.Sleep(3 * time.Second)
			continue
		}
		c.client = client
		log.Debugf("SSH connection to %s established", addr)
		return nil
	}
	return fmt.Errorf("failed to connect to %s: %w", addr, err)
}

// Close shuts down the SFTP session and the SSH connection.
func (c *Client) Close() error {
	if c.sftp != nil {
		c.sftp.Close()
		c.sftp = nil
	}
	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// ensureConnected dials lazily so a client built from the inventory can
// be handed around before its first remote operation.
func (c *Client) ensureConnected() error {
	if c.client != nil {
		return nil
	}
	return c.Connect()
}

// sftpClient returns the cached SFTP session, creating it on first use.
func (c *Client) sftpClient() (*sftp.Client, error) {
	if c.sftp != nil {
		return c.sftp, nil
	}
	client, err := sftp.NewClient(c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFTP session: %w", err)
	}
	c.sftp = client
	return client, nil
}

// RunCommand executes a command on the remote host and returns its
// combined output. Each command runs in its own session.
func (c *Client) RunCommand(command string) (string, error) {
	if err := c.ensureConnected(); err != nil {
		return "", err
	}

	session, err := c.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return "", fmt.Errorf("failed to execute command: %w, output: %s", err, string(output))
	}

	return string(output), nil
}

// stagingPath returns a unique world-writable remote location for an
// upload in flight.
func stagingPath(name string) string {
	return path.Join("/tmp", fmt.Sprintf("sudopush-%s-%s", uuid.New().String(), name))
}

// UploadFile copies a local file to the remote host with elevated
// rights: the content goes over SFTP to a unique staging path, then a
// privileged move puts it in place. The destination's parent directory
// must already exist.
func (c *Client) UploadFile(localPath, remotePath string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer local.Close()

	client, err := c.sftpClient()
	if err != nil {
		return err
	}

	staging := stagingPath(path.Base(remotePath))
	remote, err := client.Create(staging)
	if err != nil {
		return fmt.Errorf("failed to create staging file %s: %w", staging, err)
	}

	if _, err := io.Copy(remote, local); err != nil {
		remote.Close()
		return fmt.Errorf("failed to write staging file %s: %w", staging, err)
	}
	if err := remote.Close(); err != nil {
		return fmt.Errorf("failed to close staging file %s: %w", staging, err)
	}

	if _, err := c.RunCommand(fmt.Sprintf("sudo mv -f %s %s", staging, remotePath)); err != nil {
		// Best effort, the staging file is in /tmp anyway
		c.RunCommand(fmt.Sprintf("rm -f %s", staging))
		return fmt.Errorf("failed to move %s into place: %w", staging, err)
	}

	return nil
}

// DownloadFile copies a remote file to the local machine over SFTP.
func (c *Client) DownloadFile(remotePath, localPath string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	client, err := c.sftpClient()
	if err != nil {
		return err
	}

	remote, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("failed to open remote file %s: %w", remotePath, err)
	}
	defer remote.Close()

	local, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}

	if _, err := io.Copy(local, remote); err != nil {
		local.Close()
		os.Remove(localPath)
		return fmt.Errorf("failed to download %s: %w", remotePath, err)
	}
	return local.Close()
}
