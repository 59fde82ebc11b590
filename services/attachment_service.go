package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/n11047500/Capstone-2024-sub000/utils"
)

// customOrderFolder is the S3 prefix for custom order uploads
const customOrderFolder = "custom-orders"

// StoredAttachment is a validated upload ready to be mailed.
// Key and URL are empty when no object storage is configured.
type StoredAttachment struct {
	Attachment
	Key string
	URL string
}

// AttachmentService validates and stores files sent with the custom order form
type AttachmentService interface {
	Store(ctx context.Context, fileHeader *multipart.FileHeader) (*StoredAttachment, error)
}

// S3AttachmentService keeps a copy of each attachment in S3 when a bucket is configured
type S3AttachmentService struct {
	s3Service S3Interface
}

var attachmentServiceInstance AttachmentService

// InitAttachmentService initializes the attachment service.
// A nil s3Service disables the S3 copy; files are still read for mailing.
func InitAttachmentService(s3Service S3Interface) AttachmentService {
	attachmentServiceInstance = &S3AttachmentService{
		s3Service: s3Service,
	}
	return attachmentServiceInstance
}

// GetAttachmentService returns the initialized attachment service instance
func GetAttachmentService() AttachmentService {
	return attachmentServiceInstance
}

// SetAttachmentService sets the attachment service instance (primarily for testing)
func SetAttachmentService(service AttachmentService) {
	attachmentServiceInstance = service
}

// Store validates the file, reads it, and uploads a copy when storage is enabled
func (s *S3AttachmentService) Store(ctx context.Context, fileHeader *multipart.FileHeader) (*StoredAttachment, error) {
	if err := utils.ValidateAttachment(fileHeader); err != nil {
		return nil, err
	}

	content, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return nil, err
	}

	stored := &StoredAttachment{
		Attachment: Attachment{
			Filename:    filepath.Base(fileHeader.Filename),
			ContentType: utils.ContentTypeFor(fileHeader.Filename),
			Content:     content,
		},
	}

	if s.s3Service == nil {
		return stored, nil
	}

	key, err := s.s3Service.PutObject(ctx, customOrderFolder, stored.Filename, stored.ContentType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to generate attachment URL: %w", err)
	}

	stored.Key = key
	stored.URL = url
	return stored, nil
}
