package service

import (
	"fmt"
	"path"
	"strings"
)

// ExpiringPrefix namespaces expiring copies away from every user's directory.
const ExpiringPrefix = "expiring-images/"

// UserImagesDir is the directory holding a user's originals and thumbnails.
func UserImagesDir(userID string) string {
	return userID + "/images/"
}

// OriginalPath is where an uploaded original is stored.
func OriginalPath(userID, imageID, ext string) string {
	return UserImagesDir(userID) + imageID + ext
}

// ThumbnailPath derives a thumbnail's path from its original:
// "u/images/abc.jpg" at 200px becomes "u/images/abc_200px_thumbnail.jpg".
func ThumbnailPath(originalPath string, height int) string {
	ext := path.Ext(originalPath)
	stem := strings.TrimSuffix(originalPath, ext)
	return fmt.Sprintf("%s_%dpx_thumbnail%s", stem, height, ext)
}

// ExpiringPath is where an expiring copy is stored, keyed by the record's own id.
func ExpiringPath(expiringID, ext string) string {
	return ExpiringPrefix + expiringID + ext
}

// validFileName accepts a single path element.
func validFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// Links turns storage paths into the URLs handed back to clients.
type Links struct {
	BaseURL string
}

// Artifact links an owned artifact through the access-checked route.
func (l Links) Artifact(storagePath string) string {
	return strings.TrimSuffix(l.BaseURL, "/") + "/images/" + storagePath
}

// Expiring links an expiring copy through the public route.
func (l Links) Expiring(storagePath string) string {
	return strings.TrimSuffix(l.BaseURL, "/") + "/" + storagePath
}
