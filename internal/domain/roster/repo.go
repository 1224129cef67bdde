package roster

import (
	"context"

	"github.com/google/uuid"
)

// StaffRepository provides read access to the staff roster.
type StaffRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Staff, error)
}

// PatientRepository provides read access to the patient roster.
type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Patient, error)
}
