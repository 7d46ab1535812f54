package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Item is a catalog entry shown on the storefront.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Media       []ItemMedia
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrInvalidPrice     = errors.New("price must be a number between 0 and 9999999999.99")
	ErrNameTooLong      = errors.New("name exceeds maximum length of 255 characters")
)

const maxNameLength = 255

// MaxPrice is the largest price items.price (NUMERIC(12,2)) can hold.
const MaxPrice = 9_999_999_999.99

// NewItem creates a new Item after validating its fields.
func NewItem(name, description string, price float64) (*Item, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	price, err := NormalizePrice(price)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Item{
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
		ModifiedAt:  now,
	}, nil
}

// ItemPatch holds optional field updates for an item.
// Nil fields are left unchanged.
type ItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
}

// Apply validates and applies the patch to the item.
func (i *Item) Apply(p ItemPatch) error {
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
	}
	var price float64
	if p.Price != nil {
		v, err := NormalizePrice(*p.Price)
		if err != nil {
			return err
		}
		price = v
	}

	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Price != nil {
		i.Price = price
	}
	i.ModifiedAt = time.Now()
	return nil
}

// Videos returns the item's video attachments.
func (i *Item) Videos() []ItemMedia {
	var videos []ItemMedia
	for _, m := range i.Media {
		if m.IsVideo() {
			videos = append(videos, m)
		}
	}
	return videos
}

// NormalizePrice rounds price to cents, the precision it is stored with,
// and rejects negative, non-finite and out-of-range values.
func NormalizePrice(price float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, ErrInvalidPrice
	}
	rounded := math.Round(price*100) / 100
	if rounded > MaxPrice {
		return 0, ErrInvalidPrice
	}
	return rounded, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}
