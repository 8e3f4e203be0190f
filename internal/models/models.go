package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Category is one of the fixed snack groupings shown at the counter
type Category string

const (
	Vegetarian    Category = "Vegetarian"
	NonVegetarian Category = "Non Vegetarian"
	Juice         Category = "Juice"
)

// Categories lists the supported categories in display order
var Categories = []Category{Vegetarian, NonVegetarian, Juice}

// Valid reports whether c is one of the supported categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Snack represents a single item sold at the snack counter
type Snack struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  Category  `json:"category"`
	Img       string    `json:"img"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SnackPatch holds the fields supplied to an update. Nil means "leave unchanged".
type SnackPatch struct {
	Name     *string
	Price    *float64
	Category *Category
	Img      *string
}

// Event types broadcast over the websocket after a confirmed mutation
const (
	EventSnackCreated = "snack_created"
	EventSnackUpdated = "snack_updated"
	EventSnackDeleted = "snack_deleted"

	// EventCatalogSnapshot carries the full list, sent once on connect
	EventCatalogSnapshot = "catalog_snapshot"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ParsePrice parses user-entered price text. It accepts any finite
// non-negative decimal, including zero, and trims surrounding whitespace.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrPriceRequired
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrPriceInvalid
	}
	if v < 0 {
		return 0, ErrPriceNegative
	}
	return v, nil
}

// Price parse failures
var (
	ErrPriceRequired = errors.New("price is required")
	ErrPriceInvalid  = errors.New("price must be a number")
	ErrPriceNegative = errors.New("price must not be negative")
)
