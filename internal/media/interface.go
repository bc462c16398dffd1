package media

import "context"

// Folders used on the media host.
const (
	FolderMessages = "mensajesAVirgen"
	FolderRecords  = "inhumados"
	FolderProfiles = "perfiles"
)

// File is an image that already passed validation.
type File struct {
	Name        string
	ContentType string
	Extension   string
	Data        []byte
}

// Uploader stores images on an external host and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, folder string, file File) (string, error)
}
