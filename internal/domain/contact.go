package domain

import "time"

// ContactSubmission is one contact-form message.
type ContactSubmission struct {
	Name      string    `json:"name" binding:"required,max=255"`
	Email     string    `json:"email" binding:"required,email,max=255"`
	Project   string    `json:"project" binding:"required,max=100"`
	Message   string    `json:"message" binding:"required"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
