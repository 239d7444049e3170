package domain

import "time"

// Upload is the metadata row for a stored file. Files live at
// <root>/<UserID>/<Filename>.
type Upload struct {
	ID         string
	UserID     string
	Filename   string
	FileHash   string // hex sha-256
	Size       int64
	UploadedAt time.Time
}
