package storage

import (
	"io"
	"mime/multipart"
)

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage persists uploaded match videos. FilePath exposes the on-disk
// location because frame extraction shells out to ffmpeg, which needs a
// real path rather than a reader.
type Storage interface {
	SaveFile(file multipart.File, info FileInfo) (string, error)
	OpenFile(path string) (io.ReadSeekCloser, error)
	FilePath(path string) (string, error)
	DeleteFile(path string) error
}
