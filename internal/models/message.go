package models

import "time"

// Message is a contact-form submission from the public site.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	IsRead    bool
	CreatedAt time.Time
}
