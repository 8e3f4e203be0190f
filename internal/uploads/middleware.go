package uploads

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/errors"
)

type contextKey struct{}

// FromContext returns the file stored by the Single middleware, if any
func FromContext(ctx context.Context) (Stored, bool) {
	s, ok := ctx.Value(contextKey{}).(Stored)
	return s, ok
}

// WithStored attaches a stored file to ctx
func WithStored(ctx context.Context, s Stored) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// ErrorResponder writes an error for a rejected upload
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// memoryLimit is how much of a multipart form is buffered before spilling to temp files
const memoryLimit = 8 << 20

// Single returns middleware that accepts at most one file in the named
// multipart field. The file is written to store and exposed to the next
// handler through FromContext; the remaining form values stay available via
// r.FormValue. Non-multipart requests pass through untouched.
func Single(store Store, field string, maxBytes int64, onError ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}

			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			if err := r.ParseMultipartForm(memoryLimit); err != nil {
				var tooLarge *http.MaxBytesError
				if stderrors.As(err, &tooLarge) {
					onError(w, r, errors.Validationf("upload exceeds %d bytes", tooLarge.Limit))
					return
				}
				onError(w, r, errors.Validation("invalid multipart form"))
				return
			}
			defer r.MultipartForm.RemoveAll()

			files := r.MultipartForm.File[field]
			if len(files) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if len(files) > 1 {
				onError(w, r, errors.Validationf("only one file allowed in field %q", field))
				return
			}

			header := files[0]
			f, err := header.Open()
			if err != nil {
				onError(w, r, errors.Store("could not read upload", err))
				return
			}
			defer f.Close()

			head := make([]byte, 512)
			n, err := io.ReadFull(f, head)
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				onError(w, r, errors.Store("could not read upload", err))
				return
			}
			head = head[:n]

			contentType := http.DetectContentType(head)
			if !strings.HasPrefix(contentType, "image/") {
				onError(w, r, errors.Validation("uploaded file must be an image"))
				return
			}

			stored, err := store.Save(r.Context(), header.Filename, contentType, io.MultiReader(bytes.NewReader(head), f))
			if err != nil {
				onError(w, r, errors.Store("could not store upload", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithStored(r.Context(), stored)))
		})
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
