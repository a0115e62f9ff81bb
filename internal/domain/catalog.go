package domain

import (
	"time"
)

// AromaNotes describes a scent in three tiers
type AromaNotes struct {
	Top   []string `json:"top" bson:"top" validate:"required"`
	Heart []string `json:"heart" bson:"heart" validate:"required"`
	Base  []string `json:"base" bson:"base" validate:"required"`
}

// Island is a themed destination of the catalog
type Island struct {
	ID         string     `json:"id" bson:"id"`
	Name       string     `json:"name" bson:"name"`
	Slug       string     `json:"slug" bson:"slug"`
	Story      string     `json:"story" bson:"story"`
	Mood       string     `json:"mood" bson:"mood"`
	AromaNotes AromaNotes `json:"aroma_notes" bson:"aroma_notes"`
	ImageURL   string     `json:"image_url" bson:"image_url"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
}

// Review is embedded in its product document
type Review struct {
	ReviewerName string    `json:"reviewer_name" bson:"reviewer_name"`
	Rating       int       `json:"rating" bson:"rating"`
	Comment      string    `json:"comment" bson:"comment"`
	Date         time.Time `json:"date" bson:"date"`
}

// Product represents a fragrance in the catalog
type Product struct {
	ID              string     `json:"id" bson:"id"`
	Name            string     `json:"name" bson:"name"`
	IslandID        string     `json:"island_id" bson:"island_id"`
	IslandName      string     `json:"island_name" bson:"island_name"`
	Price           float64    `json:"price" bson:"price"`
	Stock           int        `json:"stock" bson:"stock"`
	Size            string     `json:"size" bson:"size"`
	Description     string     `json:"description" bson:"description"`
	AromaNotes      AromaNotes `json:"aroma_notes" bson:"aroma_notes"`
	OlfactiveFamily string     `json:"olfactive_family" bson:"olfactive_family"`
	Mood            string     `json:"mood" bson:"mood"`
	ImageURL        string     `json:"image_url" bson:"image_url"`
	Reviews         []Review   `json:"reviews" bson:"reviews"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
}

// DefaultProductSize is used when a product is created without a size
const DefaultProductSize = "50ml"

// ProductFilter holds the optional equality filters of a product listing
type ProductFilter struct {
	IslandID        string
	Mood            string
	OlfactiveFamily string
}

// IslandPatch carries a partial island update; nil fields are left unchanged
type IslandPatch struct {
	Name       *string
	Slug       *string
	Story      *string
	Mood       *string
	AromaNotes *AromaNotes
	ImageURL   *string
}

// ProductPatch carries a partial product update; nil fields are left unchanged.
// A product never moves between islands once created.
type ProductPatch struct {
	Name            *string
	Price           *float64
	Stock           *int
	Size            *string
	Description     *string
	AromaNotes      *AromaNotes
	OlfactiveFamily *string
	Mood            *string
	ImageURL        *string
}
