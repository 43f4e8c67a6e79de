package doceditor

import (
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// acceptedImageTypes are the only uploads the editor embeds.
var acceptedImageTypes = []string{"image/png", "image/jpeg"}

// ImageFile is an uploaded image or signature. It is never persisted.
type ImageFile struct {
	Name        string // client-side file name, informational
	ContentType string // declared by the client, not trusted
	Data        []byte
}

// DetectedType returns the MIME type sniffed from the file content.
func (f ImageFile) DetectedType() string {
	return mimetype.Detect(f.Data).String()
}

// Validate accepts PNG and JPEG content regardless of name or declared type.
func (f ImageFile) Validate() error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyFile, f.Name)
	}
	mtype := mimetype.Detect(f.Data)
	for _, accepted := range acceptedImageTypes {
		if mtype.Is(accepted) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is %s", ErrInvalidFileType, f.Name, mtype.String())
}

// DataURI validates the file and encodes it as a base64 data URI.
func (f ImageFile) DataURI() (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	mtype := mimetype.Detect(f.Data)
	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(f.Data), nil
}
