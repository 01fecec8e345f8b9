package dto

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"project-tracker-api/internal/domain"
)

// CreateCompanyRequest represents the request to create a company
type CreateCompanyRequest struct {
	Name   string `json:"name" binding:"required,min=2,max=255" example:"Acme Corp"`
	Domain string `json:"domain" binding:"omitempty,max=255" example:"acme.io"`
}

func (r *CreateCompanyRequest) ToModel(uuid.UUID) *domain.Company {
	return &domain.Company{Name: r.Name, Domain: r.Domain}
}

// UpdateCompanyRequest represents the request to update a company. All fields are optional.
type UpdateCompanyRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=255"`
	Domain *string `json:"domain" binding:"omitempty,max=255"`
}

func (r *UpdateCompanyRequest) ApplyTo(c *domain.Company) {
	setString(&c.Name, r.Name)
	setString(&c.Domain, r.Domain)
}

// CreateDepartmentRequest represents the request to create a department
type CreateDepartmentRequest struct {
	CompanyID uuid.UUID `json:"companyId" binding:"required"`
	Name      string    `json:"name" binding:"required,min=2,max=255" example:"Engineering"`
}

func (r *CreateDepartmentRequest) ToModel(uuid.UUID) *domain.Department {
	return &domain.Department{CompanyID: r.CompanyID, Name: r.Name}
}

type UpdateDepartmentRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=255"`
}

func (r *UpdateDepartmentRequest) ApplyTo(d *domain.Department) {
	setString(&d.Name, r.Name)
}

// CreateTeamRequest represents the request to create a team
type CreateTeamRequest struct {
	CompanyID    uuid.UUID  `json:"companyId" binding:"required"`
	DepartmentID *uuid.UUID `json:"departmentId"`
	Name         string     `json:"name" binding:"required,min=2,max=255" example:"Platform"`
}

func (r *CreateTeamRequest) ToModel(uuid.UUID) *domain.Team {
	return &domain.Team{CompanyID: r.CompanyID, DepartmentID: r.DepartmentID, Name: r.Name}
}

type UpdateTeamRequest struct {
	DepartmentID *uuid.UUID `json:"departmentId"`
	Name         *string    `json:"name" binding:"omitempty,min=2,max=255"`
}

func (r *UpdateTeamRequest) ApplyTo(t *domain.Team) {
	setUUID(&t.DepartmentID, r.DepartmentID)
	setString(&t.Name, r.Name)
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	CompanyID    *uuid.UUID `json:"companyId"`
	DepartmentID *uuid.UUID `json:"departmentId"`
	TeamID       *uuid.UUID `json:"teamId"`
	Email        string     `json:"email" binding:"required,email" example:"ada@acme.io"`
	Name         string     `json:"name" binding:"required,min=1,max=255" example:"Ada Lovelace"`
	Role         string     `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER" example:"MEMBER"`
}

func (r *CreateUserRequest) ToModel(uuid.UUID) *domain.User {
	return &domain.User{
		CompanyID:    r.CompanyID,
		DepartmentID: r.DepartmentID,
		TeamID:       r.TeamID,
		Email:        r.Email,
		Name:         r.Name,
		Role:         domain.UserRole(orDefault(r.Role, string(domain.UserRoleMember))),
	}
}

type UpdateUserRequest struct {
	DepartmentID *uuid.UUID `json:"departmentId"`
	TeamID       *uuid.UUID `json:"teamId"`
	Email        *string    `json:"email" binding:"omitempty,email"`
	Name         *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Role         *string    `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER"`
}

func (r *UpdateUserRequest) ApplyTo(u *domain.User) {
	setUUID(&u.DepartmentID, r.DepartmentID)
	setUUID(&u.TeamID, r.TeamID)
	setString(&u.Email, r.Email)
	setString(&u.Name, r.Name)
	if r.Role != nil {
		u.Role = domain.UserRole(*r.Role)
	}
}

// CreateLocationRequest represents the request to create a location
type CreateLocationRequest struct {
	CompanyID *uuid.UUID `json:"companyId"`
	Name      string     `json:"name" binding:"required,min=1,max=255" example:"Berlin HQ"`
	Address   string     `json:"address" binding:"omitempty,max=1000"`
}

func (r *CreateLocationRequest) ToModel(uuid.UUID) *domain.Location {
	return &domain.Location{CompanyID: r.CompanyID, Name: r.Name, Address: r.Address}
}

type UpdateLocationRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address *string `json:"address" binding:"omitempty,max=1000"`
}

func (r *UpdateLocationRequest) ApplyTo(l *domain.Location) {
	setString(&l.Name, r.Name)
	setString(&l.Address, r.Address)
}

// CreateDeviceRequest represents the request to register a device
type CreateDeviceRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=255" example:"MacBook Pro 14"`
	Type           string          `json:"type" binding:"omitempty,oneof=LAPTOP DESKTOP PHONE TABLET OTHER" example:"LAPTOP"`
	Status         string          `json:"status" binding:"omitempty,oneof=AVAILABLE ASSIGNED MAINTENANCE RETIRED" example:"AVAILABLE"`
	SerialNumber   string          `json:"serialNumber" binding:"required,max=255" example:"C02XK1ZZJGH5"`
	LocationID     *uuid.UUID      `json:"locationId"`
	AssignedUserID *uuid.UUID      `json:"assignedUserId"`
	Metadata       json.RawMessage `json:"metadata" swaggertype:"object"`
}

func (r *CreateDeviceRequest) ToModel(uuid.UUID) *domain.Device {
	return &domain.Device{
		Name:           r.Name,
		Type:           domain.DeviceType(orDefault(r.Type, string(domain.DeviceTypeOther))),
		Status:         domain.DeviceStatus(orDefault(r.Status, string(domain.DeviceStatusAvailable))),
		SerialNumber:   r.SerialNumber,
		LocationID:     r.LocationID,
		AssignedUserID: r.AssignedUserID,
		Metadata:       jsonOrNil(r.Metadata),
	}
}

type UpdateDeviceRequest struct {
	Name           *string         `json:"name" binding:"omitempty,min=1,max=255"`
	Type           *string         `json:"type" binding:"omitempty,oneof=LAPTOP DESKTOP PHONE TABLET OTHER"`
	Status         *string         `json:"status" binding:"omitempty,oneof=AVAILABLE ASSIGNED MAINTENANCE RETIRED"`
	LocationID     *uuid.UUID      `json:"locationId"`
	AssignedUserID *uuid.UUID      `json:"assignedUserId"`
	Metadata       json.RawMessage `json:"metadata" swaggertype:"object"`
}

func (r *UpdateDeviceRequest) ApplyTo(d *domain.Device) {
	setString(&d.Name, r.Name)
	if r.Type != nil {
		d.Type = domain.DeviceType(*r.Type)
	}
	if r.Status != nil {
		d.Status = domain.DeviceStatus(*r.Status)
	}
	setUUID(&d.LocationID, r.LocationID)
	setUUID(&d.AssignedUserID, r.AssignedUserID)
	if len(r.Metadata) > 0 {
		d.Metadata = datatypes.JSON(r.Metadata)
	}
}

func jsonOrNil(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setUUID(dst **uuid.UUID, v *uuid.UUID) {
	if v != nil {
		id := *v
		*dst = &id
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
