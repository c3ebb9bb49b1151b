package model

import (
	"github.com/google/uuid"
)

// Role identifies the kind of account a credential belongs to.
type Role string

const (
	RolePatient  Role = "patient"
	RoleHospital Role = "hospital"
	RoleDoctor   Role = "doctor"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleHospital, RoleDoctor:
		return true
	}
	return false
}

// TokenClaims is the decoded identity carried by a bearer token.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      Role
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterPatientRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	ContactNumber string `json:"contact_number" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
}

type RegisterHospitalRequest struct {
	HospitalName string `json:"hospital_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
}

// LoginResponse carries the issued token plus a role-shaped profile
// object so front-ends can render the signed-in account directly.
type LoginResponse struct {
	Token    string      `json:"token"`
	Patient  interface{} `json:"patient,omitempty"`
	Hospital interface{} `json:"hospital,omitempty"`
	Doctor   interface{} `json:"doctor,omitempty"`
}
