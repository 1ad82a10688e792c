package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	objectNameCharacters = "abcdefghijklmnopqrstuvwxyz0123456789"
	objectNameLength     = 21
)

var generateObjectName func() string

func init() {
	var err error
	generateObjectName, err = nanoid.CustomASCII(objectNameCharacters, objectNameLength)
	if err != nil {
		panic(err)
	}
}

// ObjectName returns a random storage key that keeps the extension of the
// uploaded file name.
func ObjectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return generateObjectName() + ext
}

// NewID returns a time-ordered identifier. Sorting by id matches creation order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
