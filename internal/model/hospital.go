package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Hospital struct {
	Base
	HospitalName    string         `db:"hospital_name" json:"hospital_name"`
	Email           string         `db:"email" json:"email"`
	PasswordHash    string         `db:"password_hash" json:"-"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
}

// HasSpecialization reports whether the hospital offers the given
// specialization label.
func (h *Hospital) HasSpecialization(label string) bool {
	for _, s := range h.Specializations {
		if s == label {
			return true
		}
	}
	return false
}

type HospitalProfile struct {
	ID           uuid.UUID `json:"id"`
	HospitalName string    `json:"hospital_name"`
	Email        string    `json:"email"`
}

func (h *Hospital) Profile() *HospitalProfile {
	return &HospitalProfile{
		ID:           h.ID,
		HospitalName: h.HospitalName,
		Email:        h.Email,
	}
}
