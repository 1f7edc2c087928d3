package validation

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFile(t *testing.T) {
	c := UploadConstraints(1 << 20)

	tests := []struct {
		name    string
		header  multipart.FileHeader
		wantErr bool
	}{
		{"valid", multipart.FileHeader{Filename: "test.jpg", Size: 100}, false},
		{"bmp passes header checks", multipart.FileHeader{Filename: "bmp-test.bmp", Size: 100}, false},
		{"empty file", multipart.FileHeader{Filename: "test.jpg", Size: 0}, true},
		{"no name", multipart.FileHeader{Filename: "", Size: 10}, true},
		{"too large", multipart.FileHeader{Filename: "big.png", Size: 2 << 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(&tt.header, c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileTooLargeIsWrapped(t *testing.T) {
	err := ValidateFile(&multipart.FileHeader{Filename: "a.jpg", Size: 5 << 20}, UploadConstraints(1<<20))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", Extension("Photo.JPG"))
	assert.Equal(t, ".png", Extension("a.b.png"))
	assert.Equal(t, "", Extension("noext"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("test"))
	assert.NoError(t, ValidateUsername("jane.doe+1@example"))
	assert.Error(t, ValidateUsername("  "))
	assert.Error(t, ValidateUsername("has space"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct-horse-battery"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("mypassword-is-long"))
}
