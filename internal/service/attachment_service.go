package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker-api/internal/client"
	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/dto"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

const (
	// MaxFileSize defines the maximum allowed file size for uploads (50MB)
	MaxFileSize = 50 * 1024 * 1024
	// TempAttachmentTTL is how long an unconfirmed upload is kept
	TempAttachmentTTL = time.Hour
)

var (
	allowedImageTypes = map[string]bool{
		"image/jpeg":    true,
		"image/jpg":     true,
		"image/png":     true,
		"image/gif":     true,
		"image/webp":    true,
		"image/svg+xml": true,
		"image/heic":    true,
	}

	allowedDocTypes = map[string]bool{
		"application/pdf":               true,
		"text/plain":                    true,
		"text/markdown":                 true,
		"text/csv":                      true,
		"application/msword":            true,
		"application/vnd.ms-excel":      true,
		"application/vnd.ms-powerpoint": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
		"application/zip":              true,
		"application/x-zip-compressed": true,
		"application/json":             true,
	}

	allowedImageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true, ".heic": true,
	}

	allowedDocExtensions = map[string]bool{
		".pdf": true, ".txt": true, ".md": true, ".csv": true, ".doc": true, ".docx": true,
		".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true, ".zip": true, ".json": true,
	}
)

// EntityExists reports whether an attachable entity exists
type EntityExists func(ctx context.Context, kind domain.Kind, id uuid.UUID) (bool, error)

// AttachmentService implements the presigned upload flow
type AttachmentService interface {
	Presign(ctx context.Context, actor uuid.UUID, req *dto.PresignedURLRequest) (*dto.PresignedURLResponse, error)
	Confirm(ctx context.Context, actor uuid.UUID, id uuid.UUID, req *dto.ConfirmAttachmentRequest) (*dto.AttachmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AttachmentResponse, error)
	List(ctx context.Context, opts repository.ListOptions) ([]dto.AttachmentResponse, int64, error)
	Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error
	CleanupExpired(ctx context.Context) (int, error)
}

type attachmentServiceImpl struct {
	repo      repository.AttachmentRepository
	s3Client  client.S3ClientInterface
	exists    EntityExists
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttachmentService creates a new instance of AttachmentService
func NewAttachmentService(repo repository.AttachmentRepository, s3Client client.S3ClientInterface, exists EntityExists, pub events.Publisher, logger *zap.Logger) AttachmentService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &attachmentServiceImpl{
		repo:      repo,
		s3Client:  s3Client,
		exists:    exists,
		publisher: pub,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AttachmentFilters are the query parameters accepted when listing attachments
var AttachmentFilters = map[string]string{
	"entityType": "entity_type",
	"entityId":   "entity_id",
	"status":     "status",
	"uploadedBy": "uploaded_by",
}

func parseAttachableKind(s string) (domain.Kind, error) {
	kind := domain.Kind(strings.ToUpper(s))
	if !domain.IsAttachable(kind) {
		return "", response.NewValidationError("Invalid entity type", "Entity type must be PROJECT, EPIC, STORY, TASK or COMMENT")
	}
	return kind, nil
}

func validateFileType(fileName, contentType string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return response.NewValidationError("Invalid file name", "File must have an extension")
	}
	image := allowedImageTypes[contentType] && allowedImageExtensions[ext]
	doc := allowedDocTypes[contentType] && allowedDocExtensions[ext]
	if !image && !doc {
		return response.NewValidationError(
			"Unsupported file type",
			"Supported types: images (jpg, jpeg, png, gif, webp, svg, heic) and documents (pdf, txt, doc, docx, xls, xlsx, ppt, pptx, zip, json, md, csv)",
		)
	}
	return nil
}

// Presign validates the upload, signs a PUT URL and records a TEMP attachment
func (s *attachmentServiceImpl) Presign(ctx context.Context, actor uuid.UUID, req *dto.PresignedURLRequest) (*dto.PresignedURLResponse, error) {
	if req.FileSize <= 0 {
		return nil, response.NewValidationError("File size must be greater than 0", "")
	}
	if req.FileSize > MaxFileSize {
		return nil, response.NewValidationError("File size exceeds 50MB limit", "")
	}
	kind, err := parseAttachableKind(req.EntityType)
	if err != nil {
		return nil, err
	}
	if err := validateFileType(req.FileName, req.ContentType); err != nil {
		return nil, err
	}

	uploadURL, fileKey, err := s.s3Client.GeneratePresignedURL(ctx, kind.Plural(), req.FileName, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to generate presigned URL", zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to generate presigned URL", err.Error())
	}

	expiresAt := s.now().Add(TempAttachmentTTL)
	attachment := &domain.Attachment{
		EntityType:  kind,
		Status:      domain.AttachmentStatusTemp,
		FileName:    req.FileName,
		FileURL:     fileKey,
		FileSize:    req.FileSize,
		ContentType: req.ContentType,
		UploadedBy:  actor,
		ExpiresAt:   &expiresAt,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create attachment record", err.Error())
	}

	return &dto.PresignedURLResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		FileKey:      fileKey,
		ExpiresIn:    int(client.PresignExpiry.Seconds()),
	}, nil
}

// Confirm binds a TEMP upload to an existing entity and publishes ATTACHMENT_CREATED
func (s *attachmentServiceImpl) Confirm(ctx context.Context, actor uuid.UUID, id uuid.UUID, req *dto.ConfirmAttachmentRequest) (*dto.AttachmentResponse, error) {
	kind, err := parseAttachableKind(req.EntityType)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Attachment not found", id.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load attachment", err.Error())
	}
	if current.UploadedBy != actor {
		return nil, response.NewForbiddenError("You do not have permission to confirm this attachment", "")
	}
	if current.Status != domain.AttachmentStatusTemp {
		return nil, response.NewConflictError("Attachment already confirmed", id.String())
	}

	ok, err := s.exists(ctx, kind, req.EntityID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load "+kind.Label(), err.Error())
	}
	if !ok {
		return nil, response.NewValidationError(kind.Label()+" not found", req.EntityID.String())
	}

	confirmed, err := s.repo.Confirm(ctx, id, kind, req.EntityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewConflictError("Attachment already confirmed", id.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to confirm attachment", err.Error())
	}

	s.publish(ctx, events.ActionCreated, confirmed)
	resp := dto.NewAttachmentResponse(confirmed, s.s3Client.GetFileURL(confirmed.FileURL))
	return &resp, nil
}

func (s *attachmentServiceImpl) Get(ctx context.Context, id uuid.UUID) (*dto.AttachmentResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Attachment not found", id.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load attachment", err.Error())
	}
	resp := dto.NewAttachmentResponse(a, s.s3Client.GetFileURL(a.FileURL))
	return &resp, nil
}

func (s *attachmentServiceImpl) List(ctx context.Context, opts repository.ListOptions) ([]dto.AttachmentResponse, int64, error) {
	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, response.NewAppError(response.ErrCodeInternal, "Failed to list attachments", err.Error())
	}
	out := make([]dto.AttachmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.NewAttachmentResponse(a, s.s3Client.GetFileURL(a.FileURL)))
	}
	return out, total, nil
}

// Delete removes the object and the row. Only the uploader may delete.
// A storage failure is logged and the row is still removed so no record points at a lost file.
func (s *attachmentServiceImpl) Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Attachment not found", id.String())
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load attachment", err.Error())
	}
	if a.UploadedBy != actor {
		return response.NewForbiddenError("You do not have permission to delete this attachment", "")
	}

	if a.FileURL != "" {
		if err := s.s3Client.DeleteFile(ctx, a.FileURL); err != nil {
			s.logger.Warn("Failed to delete file from storage",
				zap.String("attachment_id", id.String()),
				zap.String("file_key", a.FileURL),
				zap.Error(err),
			)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete attachment", err.Error())
	}

	if a.Status == domain.AttachmentStatusConfirmed {
		s.publish(ctx, events.ActionDeleted, a)
	}
	return nil
}

// CleanupExpired removes TEMP uploads whose window has passed and returns how many rows went
func (s *attachmentServiceImpl) CleanupExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpiredTemp(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, a := range expired {
		if a.FileURL != "" {
			if err := s.s3Client.DeleteFile(ctx, a.FileURL); err != nil {
				s.logger.Warn("Failed to delete expired file from storage",
					zap.String("attachment_id", a.ID.String()),
					zap.String("file_key", a.FileURL),
					zap.Error(err),
				)
			}
		}
		ids = append(ids, a.ID)
	}

	if err := s.repo.DeleteBatch(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *attachmentServiceImpl) publish(ctx context.Context, action events.Action, a *domain.Attachment) {
	payload := events.Payload{
		"id":         a.ID.String(),
		"name":       a.FileName,
		"entityType": string(a.EntityType),
	}
	putID(payload, "entityId", a.EntityID)

	msg := events.NewMessage(domain.KindAttachment, action, payload)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}
