package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Company is the top-level tenant
type Company struct {
	BaseModel
	Name   string `gorm:"type:varchar(255);not null" json:"name"`
	Domain string `gorm:"type:varchar(255)" json:"domain"`
}

func (Company) TableName() string { return "companies" }

// Department belongs to a company
type Department struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_departments_company_id" json:"companyId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
}

func (Department) TableName() string { return "departments" }

// Team belongs to a company and optionally to a department
type Team struct {
	BaseModel
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_teams_company_id" json:"companyId"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index:idx_teams_department_id" json:"departmentId"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
}

func (Team) TableName() string { return "teams" }

// User is a member of the organization
type User struct {
	BaseModel
	CompanyID    *uuid.UUID `gorm:"type:uuid;index:idx_users_company_id" json:"companyId"`
	DepartmentID *uuid.UUID `gorm:"type:uuid" json:"departmentId"`
	TeamID       *uuid.UUID `gorm:"type:uuid;index:idx_users_team_id" json:"teamId"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
}

func (User) TableName() string { return "users" }

// Location is a physical site where devices live
type Location struct {
	BaseModel
	CompanyID *uuid.UUID `gorm:"type:uuid;index:idx_locations_company_id" json:"companyId"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Address   string     `gorm:"type:text" json:"address"`
}

func (Location) TableName() string { return "locations" }

// Device is a tracked piece of hardware
type Device struct {
	BaseModel
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Type           DeviceType     `gorm:"type:varchar(20);not null;default:'OTHER'" json:"type"`
	Status         DeviceStatus   `gorm:"type:varchar(20);not null;default:'AVAILABLE';index:idx_devices_status" json:"status"`
	SerialNumber   string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_devices_serial_number" json:"serialNumber"`
	LocationID     *uuid.UUID     `gorm:"type:uuid;index:idx_devices_location_id" json:"locationId"`
	AssignedUserID *uuid.UUID     `gorm:"type:uuid;index:idx_devices_assigned_user_id" json:"assignedUserId"`
	Metadata       datatypes.JSON `json:"metadata" swaggertype:"object"`
}

func (Device) TableName() string { return "devices" }
