package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or an empty string for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a YYYY-MM-DD string: %w", err)
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// User is a registered member. Friends is derived on read and never persisted
// through this struct.
type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email" validate:"notblank,contains=@"`
	Login    string  `json:"login" validate:"notblank,nowhitespace"`
	Name     string  `json:"name"`
	Birthday Date    `json:"birthday" validate:"notfuture"`
	Friends  []int64 `json:"friends"`
}

// Film is a catalog entry. Likes is derived on read.
type Film struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"notblank"`
	Description string  `json:"description" validate:"max=200"`
	ReleaseDate Date    `json:"releaseDate" validate:"cinemaepoch"`
	Duration    int     `json:"duration" validate:"gt=0"`
	MPA         *Rating `json:"mpa,omitempty"`
	Genres      []Genre `json:"genres"`
	Likes       []int64 `json:"likes"`
}

// Genre is reference data attached to films.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Rating is an MPA age rating.
type Rating struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FriendshipStatus tracks where a friendship edge is in its lifecycle.
type FriendshipStatus string

const (
	FriendshipPending   FriendshipStatus = "pending"
	FriendshipConfirmed FriendshipStatus = "confirmed"
)

// Friendship is the single directed edge stored for a pair of users.
// SenderID is the user who asked first.
type Friendship struct {
	SenderID   int64
	ReceiverID int64
	Status     FriendshipStatus
}

// DefaultGenres is the genre catalogue every fresh store starts with.
var DefaultGenres = []string{"Комедия", "Драма", "Мультфильм", "Триллер", "Документальный", "Боевик"}

// DefaultRatings is the MPA rating catalogue every fresh store starts with.
var DefaultRatings = []string{"G", "PG", "PG-13", "R", "NC-17"}
