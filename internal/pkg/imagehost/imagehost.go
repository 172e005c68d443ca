package imagehost

import "mime/multipart"

// ImageHost stores uploaded images and returns a URL they can be served from.
// Upload failures are recoverable: the caller reports a retryable error and
// must not commit any record referencing the missing image.
type ImageHost interface {
	Upload(fileHeader *multipart.FileHeader) (url string, err error)
	Delete(url string) error
}
