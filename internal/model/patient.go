package model

import "github.com/google/uuid"

type Patient struct {
	Base
	FullName      string `db:"full_name" json:"full_name"`
	ContactNumber string `db:"contact_number" json:"contact_number"`
	Email         string `db:"email" json:"email"`
	PasswordHash  string `db:"password_hash" json:"-"`
}

// PatientProfile is the shape returned on login and lookups.
type PatientProfile struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

func (p *Patient) Profile() *PatientProfile {
	return &PatientProfile{
		ID:       p.ID,
		FullName: p.FullName,
		Email:    p.Email,
	}
}
