package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// DefaultSSHPort is used when SSHConfig.Port is empty
const DefaultSSHPort = "22"

// DialTimeout bounds the TCP connect and SSH handshake
const DialTimeout = 30 * time.Second

// Session is an open connection to the remote server
type Session interface {
	// Run executes a shell command on the server
	Run(ctx context.Context, command string) (string, error)
	// PutFile uploads a local file, replacing remote
	PutFile(ctx context.Context, local, remote string) error
	Close() error
}

// SSHConfig describes how to reach the remote server
type SSHConfig struct {
	Host           string
	Port           string
	User           string
	PrivateKeyPath string
	// KnownHostsPath verifies the host key. An empty path or a missing
	// file accepts any host key.
	KnownHostsPath string
	// Passphrase decrypts an encrypted private key.
	Passphrase string
	// Warn reports a skipped host key verification.
	Warn func(format string, args ...interface{})
}

// DialFunc opens a session
type DialFunc func(ctx context.Context, cfg SSHConfig) (Session, error)

// DefaultKnownHostsPath is ~/.ssh/known_hosts
func DefaultKnownHostsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

// Dial connects with public key authentication and opens an SFTP channel
func Dial(ctx context.Context, cfg SSHConfig) (Session, error) {
	signer, err := loadSigner(cfg)
	if err != nil {
		return nil, err
	}
	hostKeys, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == "" {
		port = DefaultSSHPort
	}
	addr := net.JoinHostPort(cfg.Host, port)

	dialer := net.Dialer{Timeout: DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(DialTimeout))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         DialTimeout,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	client := ssh.NewClient(sshConn, chans, reqs)
	files, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start sftp: %w", err)
	}
	return &sshSession{client: client, files: files}, nil
}

func loadSigner(cfg SSHConfig) (ssh.Signer, error) {
	key, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	var signer ssh.Signer
	if cfg.Passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(cfg.Passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", cfg.PrivateKeyPath, err)
	}
	return signer, nil
}

// NeedsPassphrase reports whether the private key at path is encrypted
func NeedsPassphrase(path string) bool {
	key, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, err = ssh.ParsePrivateKey(key)
	var missing *ssh.PassphraseMissingError
	return errors.As(err, &missing)
}

func hostKeyCallback(cfg SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.KnownHostsPath != "" {
		if _, err := os.Stat(cfg.KnownHostsPath); err == nil {
			callback, err := knownhosts.New(cfg.KnownHostsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", cfg.KnownHostsPath, err)
			}
			return callback, nil
		}
	}
	if cfg.Warn != nil {
		cfg.Warn("No known_hosts file found, the host key of %s is not verified.", cfg.Host)
	}
	return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // no known_hosts to verify against
}

type sshSession struct {
	client *ssh.Client
	files  *sftp.Client
}

func (s *sshSession) Run(ctx context.Context, command string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open ssh session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		err = ctx.Err()
	}
	if err != nil {
		return "", scaffolderrors.NewCommandError("ssh", []string{command},
			strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (s *sshSession) PutFile(ctx context.Context, local, remote string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(local)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := s.files.MkdirAll(path.Dir(remote)); err != nil {
		return fmt.Errorf("failed to create %s: %w", path.Dir(remote), err)
	}
	dst, err := s.files.OpenFile(remote, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", remote, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to upload %s: %w", remote, err)
	}
	return dst.Close()
}

func (s *sshSession) Close() error {
	ferr := s.files.Close()
	if err := s.client.Close(); err != nil {
		return err
	}
	return ferr
}

// ShellQuote quotes s for a POSIX shell
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
