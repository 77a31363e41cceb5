package media

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"catalogstudio/internal/domain"
)

// AspectRatio reduces width:height by their greatest common divisor.
func AspectRatio(width, height int) string {
	d := gcd(width, height)
	if d == 0 {
		return aspectRatioUnknown
	}
	return fmt.Sprintf("%d:%d", width/d, height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ValidateDimensions compares measured pixels with the configured bounds.
func ValidateDimensions(dims Dimensions, mv domain.MediaValidation) []string {
	var issues []string
	if mv.MinWidth > 0 && dims.Width < mv.MinWidth {
		issues = append(issues, fmt.Sprintf("Width %dpx is below minimum %dpx", dims.Width, mv.MinWidth))
	}
	if mv.MaxWidth > 0 && dims.Width > mv.MaxWidth {
		issues = append(issues, fmt.Sprintf("Width %dpx exceeds maximum %dpx", dims.Width, mv.MaxWidth))
	}
	if mv.MinHeight > 0 && dims.Height < mv.MinHeight {
		issues = append(issues, fmt.Sprintf("Height %dpx is below minimum %dpx", dims.Height, mv.MinHeight))
	}
	if mv.MaxHeight > 0 && dims.Height > mv.MaxHeight {
		issues = append(issues, fmt.Sprintf("Height %dpx exceeds maximum %dpx", dims.Height, mv.MaxHeight))
	}
	return issues
}

// ValidateFileSize compares a byte count with KB bounds. The measured size
// is rounded to the nearest KB before comparison.
func ValidateFileSize(bytes int64, mv domain.MediaValidation) []string {
	kb := int(math.Round(float64(bytes) / 1024))
	var issues []string
	if mv.MinFileSize > 0 && kb < mv.MinFileSize {
		issues = append(issues, fmt.Sprintf("File size %dKB is below minimum %dKB", kb, mv.MinFileSize))
	}
	if mv.MaxFileSize > 0 && kb > mv.MaxFileSize {
		issues = append(issues, fmt.Sprintf("File size %dKB exceeds maximum %dKB", kb, mv.MaxFileSize))
	}
	return issues
}

// ValidateAspectRatio checks the reduced ratio of dims against the required
// ratio and the allowed list independently.
func ValidateAspectRatio(dims Dimensions, mv domain.MediaValidation) []string {
	actual := AspectRatio(dims.Width, dims.Height)
	var issues []string
	if mv.AspectRatio != "" && actual != mv.AspectRatio {
		issues = append(issues, fmt.Sprintf("Aspect ratio %s does not match required %s", actual, mv.AspectRatio))
	}
	if len(mv.AllowedAspectRatios) > 0 && !slices.Contains(mv.AllowedAspectRatios, actual) {
		issues = append(issues, fmt.Sprintf("Aspect ratio %s is not in allowed list: %s", actual, strings.Join(mv.AllowedAspectRatios, ", ")))
	}
	return issues
}

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders bytes with one decimal in the largest fitting unit,
// e.g. "1.5 KB" or "2 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*10) / 10
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// FileExtension returns the lowercased text after the last dot of a URL.
// Without a dot the whole URL is returned lowercased.
func FileExtension(url string) string {
	idx := strings.LastIndex(url, ".")
	if idx < 0 {
		return strings.ToLower(url)
	}
	return strings.ToLower(url[idx+1:])
}
