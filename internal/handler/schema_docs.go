package handler

import (
	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/dto"
)

// SchemaDocumentation references the entity and request types served through the
// generic resource routes so swag includes them in the definitions section.
type SchemaDocumentation struct {
	Company     domain.Company     `json:"company"`
	Department  domain.Department  `json:"department"`
	Team        domain.Team        `json:"team"`
	User        domain.User        `json:"user"`
	Location    domain.Location    `json:"location"`
	Device      domain.Device      `json:"device"`
	Project     domain.Project     `json:"project"`
	Epic        domain.Epic        `json:"epic"`
	Story       domain.Story       `json:"story"`
	Task        domain.Task        `json:"task"`
	Sprint      domain.Sprint      `json:"sprint"`
	BacklogItem domain.BacklogItem `json:"backlogItem"`
	Comment     domain.Comment     `json:"comment"`

	CreateProjectRequest     dto.CreateProjectRequest     `json:"createProjectRequest"`
	CreateTaskRequest        dto.CreateTaskRequest        `json:"createTaskRequest"`
	UpdateTaskRequest        dto.UpdateTaskRequest        `json:"updateTaskRequest"`
	CreateCommentRequest     dto.CreateCommentRequest     `json:"createCommentRequest"`
	CreateNotificationRequest dto.CreateNotificationRequest `json:"createNotificationRequest"`
	AttachmentResponse       dto.AttachmentResponse       `json:"attachmentResponse"`
}

// GetSchemaDocumentation is never routed; swag reads its annotations only.
// @Summary      Schema documentation (not a real endpoint)
// @Tags         internal
// @Produce      json
// @Success      200 {object} SchemaDocumentation
// @Router       /internal/schemas [get]
func GetSchemaDocumentation() {}
