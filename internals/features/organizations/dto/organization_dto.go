package dto

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type UpdateProgramRequest struct {
	Name          *string        `json:"program_name" validate:"omitempty,min=3,max=255"`
	Abbreviation  *string        `json:"program_abbreviation" validate:"omitempty,max=32"`
	DirectorID    *uuid.UUID     `json:"program_director_user_id" validate:"omitempty,uuid4"`
	CoordinatorID *uuid.UUID     `json:"program_coordinator_user_id" validate:"omitempty,uuid4"`
	TrainingSites pq.StringArray `json:"program_training_sites" validate:"omitempty,max=50,dive,max=255"`

	Settings datatypes.JSONMap `json:"program_settings"`
}
