package blob

// Client is the external blob-store collaborator. It owns image bytes;
// the rest of the service keeps only the returned URL.
type Client interface {
	// UploadImage stores the image and returns its stable public URL
	UploadImage(data []byte) (string, error)

	// DeleteImage removes a previously stored image by its URL
	DeleteImage(url string) error

	Close() error
}

// Ensure both clients implement the interface
var _ Client = (*FTPClient)(nil)
var _ Client = (*MockClient)(nil)
