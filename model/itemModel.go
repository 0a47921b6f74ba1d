// model/item.go
package model

import "time"

type ItemStatus string

const (
	ItemAvailable ItemStatus = "AVAILABLE"
	ItemRented    ItemStatus = "RENTED"
)

type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	OwnerName   string     `json:"owner_name"`
	RentalPrice int64      `json:"rental_price"` // VND per rental day
	Status      ItemStatus `json:"status"`
	Description string     `json:"description"`
	ImageURL    *string    `json:"image_url,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
