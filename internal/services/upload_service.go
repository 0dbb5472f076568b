package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/validator"
)

const (
	uploadURLLifetime   = 3600 * time.Second
	downloadURLLifetime = 7200 * time.Second

	profileKeyPrefix = "profile-pics/"
	taskKeyPrefix    = "fileuploads/"
)

// S3Presigner is the slice of s3.PresignClient the upload service needs
type S3Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type uploadService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	presigner S3Presigner
	bucket    string
}

func NewUploadService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, presigner S3Presigner, bucket string) UploadService {
	return &uploadService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		presigner: presigner,
		bucket:    bucket,
	}
}

// PresignUpload issues a time-limited PUT URL and, for task files, records
// the attachment in the ledger so tasks can reference it.
func (s *uploadService) PresignUpload(ctx context.Context, req *PresignUploadRequest, userID uint) (*PresignResponse, error) {
	if s.presigner == nil {
		return nil, ErrStorageUnavailable
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	prefix := taskKeyPrefix
	if req.Kind == "profile" {
		prefix = profileKeyPrefix
	}
	key := fmt.Sprintf("%s%s-%s", prefix, uuid.New().String(), req.FileName)

	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLLifetime
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	resp := &PresignResponse{
		Key:       key,
		URL:       presigned.URL,
		ExpiresIn: int64(uploadURLLifetime.Seconds()),
	}

	if req.Kind == "task" {
		attachment := &models.FileAttachment{
			Key:        key,
			FileName:   req.FileName,
			UploadedBy: userID,
			TaskID:     req.TaskID,
		}
		if err := s.repo.Attachment().Create(ctx, nil, attachment); err != nil {
			return nil, err
		}
		resp.FileID = attachment.ID
	}

	s.logger.Info("Upload URL issued", "key", key, "user_id", userID, "kind", req.Kind)

	return resp, nil
}

func (s *uploadService) PresignDownload(ctx context.Context, fileID uint) (*PresignResponse, error) {
	if s.presigner == nil {
		return nil, ErrStorageUnavailable
	}

	attachment, err := s.repo.Attachment().GetByID(ctx, nil, fileID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}

	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(attachment.Key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = downloadURLLifetime
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	return &PresignResponse{
		FileID:    attachment.ID,
		Key:       attachment.Key,
		URL:       presigned.URL,
		ExpiresIn: int64(downloadURLLifetime.Seconds()),
	}, nil
}
