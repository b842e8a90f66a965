// Package fetch retrieves source files from a remote FTP drop before ingestion.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rpattn/salesingest/internal/config"

	"github.com/jlaffaye/ftp"
)

const dialTimeout = 30 * time.Second

// ErrInvalidRemotePath is returned for remote paths without a file name.
var ErrInvalidRemotePath = errors.New("remote path does not name a file")

type Client struct {
	conn *ftp.ServerConn
}

// Dial connects and logs in to the configured FTP server.
func Dial(ctx context.Context, cfg config.FTPConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("ftp.host is not configured")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to FTP server: %w", err)
	}
	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("failed to login to FTP server: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Download copies remotePath into localDir and returns the local file path.
// A partial file is removed on failure.
func (c *Client) Download(remotePath, localDir string) (string, error) {
	localPath, err := LocalPath(remotePath, localDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create local folder: %w", err)
	}

	resp, err := c.conn.Retr(remotePath)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve %s: %w", remotePath, err)
	}
	defer resp.Close()

	if err := writeFile(localPath, resp); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", remotePath, err)
	}
	return localPath, nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Quit()
	}
	return nil
}

// LocalPath maps a POSIX remote path onto a file inside localDir.
func LocalPath(remotePath, localDir string) (string, error) {
	name := path.Base(path.Clean("/" + remotePath))
	if name == "/" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidRemotePath, remotePath)
	}
	return filepath.Join(localDir, name), nil
}

func writeFile(localPath string, src io.Reader) error {
	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(localPath)
		return err
	}
	return nil
}
