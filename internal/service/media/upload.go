package media

import (
	"io"
)

// Upload is an incoming file ready to be streamed to object storage
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}
