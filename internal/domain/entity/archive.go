package entity

import "time"

// ArchivedDescription is an accepted description kept for similarity lookups.
type ArchivedDescription struct {
	ProductName string    `json:"product_name"`
	Description string    `json:"description"`
	SEOTitle    string    `json:"seo_title"`
	Score       int       `json:"score"`
	Similarity  float32   `json:"similarity,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
