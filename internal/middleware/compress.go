package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// NewCompressHandler returns a middleware that gzips responses of at least
// minSize bytes for clients that accept it. Journey exports are the main
// beneficiary.
func NewCompressHandler(minSize int) (func(http.Handler) http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("middleware.NewCompressHandler: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
