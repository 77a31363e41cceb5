package media

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogstudio/internal/domain"
)

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, "16:9", AspectRatio(1920, 1080))
	assert.Equal(t, "1:1", AspectRatio(800, 800))
	assert.Equal(t, "4:3", AspectRatio(1024, 768))
	assert.Equal(t, "Unknown", AspectRatio(0, 0))
}

func TestValidateDimensions(t *testing.T) {
	mv := domain.MediaValidation{MinWidth: 1000, MaxWidth: 2000, MinHeight: 1000, MaxHeight: 1500}

	assert.Empty(t, ValidateDimensions(Dimensions{Width: 1200, Height: 1200}, mv))
	assert.Equal(t, []string{
		"Width 800px is below minimum 1000px",
		"Height 1600px exceeds maximum 1500px",
	}, ValidateDimensions(Dimensions{Width: 800, Height: 1600}, mv))
	assert.Equal(t, []string{
		"Width 2400px exceeds maximum 2000px",
		"Height 900px is below minimum 1000px",
	}, ValidateDimensions(Dimensions{Width: 2400, Height: 900}, mv))
}

func TestValidateFileSize(t *testing.T) {
	mv := domain.MediaValidation{MinFileSize: 50, MaxFileSize: 500}

	assert.Empty(t, ValidateFileSize(100*1024, mv))
	assert.Equal(t, []string{"File size 10KB is below minimum 50KB"}, ValidateFileSize(10*1024, mv))
	assert.Equal(t, []string{"File size 600KB exceeds maximum 500KB"}, ValidateFileSize(600*1024, mv))
	// 50.4KB rounds down to 50KB and passes.
	assert.Empty(t, ValidateFileSize(51610, mv))
}

func TestValidateAspectRatio(t *testing.T) {
	square := Dimensions{Width: 1000, Height: 1000}

	assert.Empty(t, ValidateAspectRatio(square, domain.MediaValidation{AspectRatio: "1:1"}))
	assert.Equal(t,
		[]string{"Aspect ratio 1:1 does not match required 16:9"},
		ValidateAspectRatio(square, domain.MediaValidation{AspectRatio: "16:9"}))
	assert.Equal(t,
		[]string{
			"Aspect ratio 1:1 does not match required 16:9",
			"Aspect ratio 1:1 is not in allowed list: 4:3, 16:9",
		},
		ValidateAspectRatio(square, domain.MediaValidation{AspectRatio: "16:9", AllowedAspectRatios: []string{"4:3", "16:9"}}))
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.in), "bytes=%d", tt.in)
	}
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "jpg", FileExtension("https://cdn.example.com/a/b/photo.JPG"))
	assert.Equal(t, "com/photo", FileExtension("https://cdn.example.com/photo"))
}
