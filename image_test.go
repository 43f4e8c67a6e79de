package doceditor

import (
	"errors"
	"image/color"
	"strings"
	"testing"
)

func TestImageFile_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     ImageFile
		wantErr  error
		wantType string
	}{
		{
			name:     "png",
			file:     ImageFile{Name: "a.png", Data: pngBytes(t, 1, 1, color.Black)},
			wantType: "image/png",
		},
		{
			name:     "jpeg named as png",
			file:     ImageFile{Name: "a.png", ContentType: "image/png", Data: jpegBytes(t)},
			wantType: "image/jpeg",
		},
		{
			name:    "html",
			file:    ImageFile{Name: "x.png", Data: []byte("<html><body>x</body></html>")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "pdf",
			file:    ImageFile{Name: "x.jpg", Data: []byte("%PDF-1.4\n%")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "empty",
			file:    ImageFile{Name: "x.png", Data: nil},
			wantErr: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.file.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := tt.file.DetectedType(); got != tt.wantType {
				t.Errorf("DetectedType() = %q, want %q", got, tt.wantType)
			}

			uri, err := tt.file.DataURI()
			if err != nil {
				t.Fatalf("DataURI() error = %v", err)
			}
			if !strings.HasPrefix(uri, "data:"+tt.wantType+";base64,") {
				t.Errorf("DataURI() = %.40q..., want %s prefix", uri, tt.wantType)
			}
		})
	}
}
