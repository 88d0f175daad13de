// Package blob stores uploaded receipt files.
package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrExists is returned when an object with the same name is already stored.
var ErrExists = errors.New("object already exists")

// Store uploads objects under generated names and returns their public URL.
// Existing objects are never overwritten.
type Store interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// ObjectName builds "<prefix>_<uuid>.<ext>". The current unix time in
// milliseconds stands in for an empty prefix.
func ObjectName(prefix, filename string, now time.Time) string {
	if prefix == "" {
		prefix = strconv.FormatInt(now.UnixMilli(), 10)
	}
	name := prefix + "_" + uuid.NewString()
	if ext := extension(filename); ext != "" {
		name += "." + ext
	}
	return name
}

func extension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), ".")
	return strings.ToLower(ext)
}

// validName rejects names that could escape the bucket or directory.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
