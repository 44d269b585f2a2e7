package model

import (
	"time"

	"github.com/google/uuid"
)

type OrganizationModel struct {
	OrganizationID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:organization_id" json:"organization_id"`
	OrganizationName string    `gorm:"not null;column:organization_name" json:"organization_name"`
	OrganizationSlug string    `gorm:"uniqueIndex;not null;column:organization_slug" json:"organization_slug"`

	OrganizationAddressLine1 *string `gorm:"column:organization_address_line1" json:"organization_address_line1,omitempty"`

	OrganizationCreatedAt time.Time `gorm:"column:organization_created_at;autoCreateTime" json:"organization_created_at"`
}

func (OrganizationModel) TableName() string { return "organizations" }
