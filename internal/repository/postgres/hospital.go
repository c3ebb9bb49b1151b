package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func (r *hospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	query := `
		INSERT INTO hospitals (
			id, hospital_name, email, password_hash, specializations,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		hospital.ID,
		hospital.HospitalName,
		hospital.Email,
		hospital.PasswordHash,
		hospital.Specializations,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `
		SELECT id, hospital_name, email, password_hash, specializations,
		       created_at, updated_at
		FROM hospitals
		WHERE id = $1
	`
	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("hospital", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) GetByEmail(ctx context.Context, email string) (*model.Hospital, error) {
	query := `
		SELECT id, hospital_name, email, password_hash, specializations,
		       created_at, updated_at
		FROM hospitals
		WHERE email = $1
	`
	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("hospital", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital by email: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) List(ctx context.Context) ([]*model.Hospital, error) {
	query := `
		SELECT id, hospital_name, email, password_hash, specializations,
		       created_at, updated_at
		FROM hospitals
		ORDER BY hospital_name ASC
	`
	var hospitals []*model.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query); err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) ListBySpecialization(ctx context.Context, specialization string) ([]*model.Hospital, error) {
	query := `
		SELECT id, hospital_name, email, password_hash, specializations,
		       created_at, updated_at
		FROM hospitals
		WHERE $1 = ANY(specializations)
		ORDER BY hospital_name ASC
	`
	var hospitals []*model.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query, specialization); err != nil {
		return nil, fmt.Errorf("failed to list hospitals by specialization: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) AddSpecialization(ctx context.Context, hospitalID uuid.UUID, specialization string) error {
	// array_append only when the label is not already present, so the set
	// stays duplicate-free.
	query := `
		UPDATE hospitals
		SET specializations = array_append(specializations, $2),
		    updated_at = $3
		WHERE id = $1
		AND NOT ($2 = ANY(specializations))
	`
	_, err := r.db.ExecContext(ctx, query, hospitalID, specialization, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add specialization: %w", err)
	}
	return nil
}
