package http

import (
	"net/http"
	"os"
	"strings"
)

// visibleFS hides dot-files, which include in-progress upload temp files,
// from the media handler.
type visibleFS struct {
	http.FileSystem
}

func (v visibleFS) Open(name string) (http.File, error) {
	for _, elem := range strings.Split(name, "/") {
		if strings.HasPrefix(elem, ".") {
			return nil, os.ErrNotExist
		}
	}
	return v.FileSystem.Open(name)
}
