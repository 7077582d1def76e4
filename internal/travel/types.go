// Package travel defines the domain entities mirrored from the backend
// REST contract, plus the update and filter payloads each resource accepts.
package travel

import (
	"net/url"
	"strconv"
)

// Destination is a recommended travel destination.
type Destination struct {
	ID          int    `json:"id"`
	CityName    string `json:"cityName"`
	Description string `json:"description"`
	Season      string `json:"season"`
	IsPopular   bool   `json:"isPopular"`
	Category    string `json:"category"`
	UserID      int    `json:"userId"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// DestinationUpdate is the PUT payload for a destination.
type DestinationUpdate struct {
	CityName    string `json:"cityName"`
	Description string `json:"description"`
	Season      string `json:"season"`
	IsPopular   bool   `json:"isPopular"`
	Category    string `json:"category"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// DestinationFilter holds the optional query parameters accepted by the
// destination collection resource. Nil fields are omitted from the query.
type DestinationFilter struct {
	CityName  *string
	Season    *string
	Category  *string
	UserID    *int
	IsPopular *bool
}

// Values encodes the filter as URL query parameters, including only the
// fields that are set.
func (f DestinationFilter) Values() url.Values {
	v := url.Values{}
	if f.CityName != nil {
		v.Set("cityName", *f.CityName)
	}
	if f.Season != nil {
		v.Set("season", *f.Season)
	}
	if f.Category != nil {
		v.Set("category", *f.Category)
	}
	if f.UserID != nil {
		v.Set("userId", strconv.Itoa(*f.UserID))
	}
	if f.IsPopular != nil {
		v.Set("isPopular", strconv.FormatBool(*f.IsPopular))
	}
	return v
}

// Suggestion is a user-authored activity suggestion attached to a destination.
type Suggestion struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Rating        float64 `json:"rating"`
	CreatedAt     string  `json:"created_at"`
	UserID        int     `json:"userId"`
	DestinationID int     `json:"destinationId"`
}

// SuggestionUpdate is the PUT payload for a suggestion.
type SuggestionUpdate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
}

// SuggestionFilter holds the optional query parameters accepted by the
// suggestion collection resource.
type SuggestionFilter struct {
	MinPrice *float64
	MaxPrice *float64
	Rating   *float64
}

// Values encodes the filter as URL query parameters, including only the
// fields that are set.
func (f SuggestionFilter) Values() url.Values {
	v := url.Values{}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Rating != nil {
		v.Set("rating", strconv.FormatFloat(*f.Rating, 'f', -1, 64))
	}
	return v
}

// User is an account known to the backend. Points is computed server-side
// from suggestion activity and is read-only for clients.
type User struct {
	ID       int    `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Points   int    `json:"points"`
	Role     string `json:"role"`
}

// UserUpdate is the PUT payload for a user. Password is only sent when set.
type UserUpdate struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// RoleAdmin is the role granted full access to the user collection.
const RoleAdmin = "admin"
