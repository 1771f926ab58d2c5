package utils

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var regexNonFilenameChar = regexp.MustCompile(`[^a-zA-Z0-9]`)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.New().String()
}

// GenerateObjectName builds a unique storage key under prefix keeping the
// original file extension.
func GenerateObjectName(prefix, originalName string) string {
	timestamp := time.Now().Format("20060102_150405.000000000")
	extension := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s_%s%s", prefix, timestamp, uuid.New().String()[:8], extension)
}

// GenerateExportFilename replaces every non alphanumeric character of title
// and appends the export day.
func GenerateExportFilename(title, format string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", regexNonFilenameChar.ReplaceAllString(title, "_"), now.Format(constvars.DateLayout), format)
}
