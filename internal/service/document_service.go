package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/mapper"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentService handles quotation document storage
type DocumentService struct {
	fileRepo      *repository.FileRepository
	quotationRepo *repository.QuotationRepository
	activityRepo  *repository.ActivityRepository
	storage       storage.Storage
	logger        *zap.Logger
}

func NewDocumentService(
	fileRepo *repository.FileRepository,
	quotationRepo *repository.QuotationRepository,
	activityRepo *repository.ActivityRepository,
	store storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		fileRepo:      fileRepo,
		quotationRepo: quotationRepo,
		activityRepo:  activityRepo,
		storage:       store,
		logger:        logger,
	}
}

// UploadToQuotation stores a document and attaches it to a quotation
func (s *DocumentService) UploadToQuotation(ctx context.Context, quotationID uuid.UUID, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	file := &domain.File{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		QuotationID: &quotation.ID,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Best effort cleanup of the orphaned blob
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned upload",
				zap.String("storagePath", storagePath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("fileID", file.ID.String()),
		zap.String("quotationID", quotation.ID.String()),
		zap.String("filename", filename),
		zap.Int64("size", size))

	s.logActivity(ctx, quotation.ID, "Document uploaded",
		fmt.Sprintf("Document '%s' was attached to the quotation", filename))

	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.FileDTO, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

// Download returns the document content along with its filename and
// content type
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrDocumentNotFound
		}
		return nil, "", "", fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download document: %w", err)
	}

	return reader, file.Filename, file.ContentType, nil
}

func (s *DocumentService) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]domain.FileDTO, error) {
	files, err := s.fileRepo.ListByQuotation(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.FileDTO, len(files))
	for i, file := range files {
		dtos[i] = mapper.ToFileDTO(&file)
	}

	return dtos, nil
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored document, removing record anyway",
			zap.String("storagePath", file.StoragePath),
			zap.Error(err))
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	if file.QuotationID != nil {
		s.logActivity(ctx, *file.QuotationID, "Document removed",
			fmt.Sprintf("Document '%s' was removed from the quotation", file.Filename))
	}

	return nil
}

func (s *DocumentService) logActivity(ctx context.Context, quotationID uuid.UUID, title, body string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetQuotation,
		TargetID:    quotationID,
		Title:       title,
		Body:        body,
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
