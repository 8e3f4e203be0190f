package services

import (
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/snackcounter/internal/errors"
)

// MenuServicer renders counter signage
type MenuServicer interface {
	MenuURL() string
	GenerateMenuQR(size int) ([]byte, error)
}

// MenuService encodes the public menu address as a QR code
type MenuService struct {
	menuURL string
}

// NewMenuService creates a MenuService for the given absolute menu URL
func NewMenuService(menuURL string) *MenuService {
	return &MenuService{menuURL: strings.TrimSpace(menuURL)}
}

// MenuURL returns the address encoded in the QR code
func (s *MenuService) MenuURL() string {
	return s.menuURL
}

// GenerateMenuQR returns a PNG QR code. Sizes outside 64..1024 fall back to 256.
func (s *MenuService) GenerateMenuQR(size int) ([]byte, error) {
	if s.menuURL == "" {
		return nil, errors.Validation("Menu URL is not configured")
	}
	if size < 64 || size > 1024 {
		size = 256
	}
	png, err := qrcode.Encode(s.menuURL, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "Error generating menu QR code")
	}
	return png, nil
}

var _ MenuServicer = (*MenuService)(nil)
