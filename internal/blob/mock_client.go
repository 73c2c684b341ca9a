package blob

import (
	"fmt"
	"sync"
)

// MockClient keeps images in memory for testing
type MockClient struct {
	mu      sync.Mutex
	baseURL string
	next    int
	images  map[string][]byte

	// FailDelete makes every DeleteImage call fail, for exercising the
	// best-effort erase path
	FailDelete bool
}

// NewMockClient creates an in-memory blob client
func NewMockClient() *MockClient {
	return &MockClient{
		baseURL: "https://blob.test/images",
		images:  make(map[string][]byte),
	}
}

// UploadImage stores the image in memory and returns a synthetic URL
func (c *MockClient) UploadImage(data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	url := fmt.Sprintf("%s/%d.jpg", c.baseURL, c.next)
	c.images[url] = append([]byte(nil), data...)
	return url, nil
}

// DeleteImage removes a stored image
func (c *MockClient) DeleteImage(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailDelete {
		return fmt.Errorf("delete disabled for %q", url)
	}
	if _, ok := c.images[url]; !ok {
		return fmt.Errorf("image %q not found", url)
	}
	delete(c.images, url)
	return nil
}

// Close is a no-op
func (c *MockClient) Close() error {
	return nil
}

// Stored reports how many images the client currently holds
func (c *MockClient) Stored() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.images)
}
