// package models defines the data model for the recommendation pipeline
package models

import (
	"time"
)

// Model is implemented by every entity the history database stores.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface of a stored entity. F is the filter accepted by List.
type Repository[T Model, F any] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(filter F) ([]T, error)
}
