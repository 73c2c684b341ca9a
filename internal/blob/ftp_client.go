package blob

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/fsocietystudios/daily-challenge/pkg/helpers"
)

// FTPClient stores challenge images on an FTP server and serves them
// through a static base URL.
type FTPClient struct {
	host     string
	port     string
	user     string
	password string
	baseURL  string
	basePath string
	ids      *helpers.IDGenerator
	conn     *ftp.ServerConn
}

// NewFTPClient creates an unconnected FTP blob client. The connection is
// established lazily on first use.
func NewFTPClient(host, port, user, password, baseURL, basePath string) *FTPClient {
	return &FTPClient{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		basePath: strings.Trim(basePath, "/"),
		ids:      helpers.NewIDGenerator(),
	}
}

// Connect establishes connection to FTP server
func (c *FTPClient) Connect() error {
	addr := c.host + ":" + c.port
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("failed to connect to FTP: %w", err)
	}

	if err := conn.Login(c.user, c.password); err != nil {
		conn.Quit()
		return fmt.Errorf("failed to login to FTP: %w", err)
	}

	c.conn = conn
	return nil
}

// UploadImage stores the image under a generated name and returns its URL
func (c *FTPClient) UploadImage(data []byte) (string, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return "", err
		}
	}

	remotePath := c.remotePath(c.ids.GenerateUUID() + ".jpg")
	if err := c.conn.Stor(remotePath, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return c.baseURL + "/" + remotePath, nil
}

// DeleteImage removes a stored image by its public URL
func (c *FTPClient) DeleteImage(url string) error {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return err
		}
	}

	remotePath := strings.TrimPrefix(url, c.baseURL+"/")
	if remotePath == url {
		return fmt.Errorf("image URL %q does not belong to this store", url)
	}

	if err := c.conn.Delete(remotePath); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Close closes the FTP connection
func (c *FTPClient) Close() error {
	if c.conn != nil {
		return c.conn.Quit()
	}
	return nil
}

func (c *FTPClient) remotePath(filename string) string {
	if c.basePath == "" {
		return filename
	}
	return c.basePath + "/" + filename
}
