package models

import "io"

// Upload is one file received from a form, ready to be pushed to a bucket
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
