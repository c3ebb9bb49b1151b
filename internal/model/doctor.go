package model

import "github.com/google/uuid"

type Doctor struct {
	Base
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Specialization string    `db:"specialization" json:"specialization"`
	HospitalID     uuid.UUID `db:"hospital_id" json:"hospital_id"`
}

type AddDoctorRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Specialization string `json:"specialization" binding:"required"`
}

type DoctorProfile struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Specialization string    `json:"specialization"`
	Hospital       *Ref      `json:"hospital,omitempty"`
}

func (d *Doctor) Profile() *DoctorProfile {
	return &DoctorProfile{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Specialization: d.Specialization,
	}
}
