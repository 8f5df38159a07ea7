package models

import "time"

// Profile is the single public profile document. Exactly one row exists.
type Profile struct {
	ID        int
	FullName  string
	Headline  string
	Bio       string
	Email     string
	Location  string
	Socials   map[string]string
	UpdatedAt time.Time
}
