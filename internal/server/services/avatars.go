package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	sc "github.com/dmitrijs2005/identitystore/internal/server/config"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const avatarUploadValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AvatarService hands out presigned S3 URLs for avatar images and records
// the uploaded object key on the user.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
}

func NewAvatarService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *AvatarService {
	return &AvatarService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		log:         log.With("module", "avatars"),
	}
}

func avatarKey(userID string) string {
	return fmt.Sprintf("avatar/%s/%v", userID, uuid.New())
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a fresh object key for userID and a PUT URL valid
// for 15 minutes. The key is not stored until SetAvatar is called.
func (s *AvatarService) PresignUpload(ctx context.Context, userID string) (string, string, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := avatarKey(userID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(avatarUploadValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// SetAvatar stores key as the user's avatar. Only keys under the user's own
// prefix are accepted.
func (s *AvatarService) SetAvatar(ctx context.Context, userID, key string) error {
	if !strings.HasPrefix(key, "avatar/"+userID+"/") {
		return fmt.Errorf("%w: avatar key %q does not belong to user", common.ErrorValidation, key)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	u.Avatar = &key
	if err := repo.Update(ctx, u); err != nil {
		return err
	}
	s.log.Info(ctx, "avatar updated", "user_id", userID, "key", key)
	return nil
}

// AvatarURL returns a presigned GET URL for the user's avatar, falling back
// to the default image.
func (s *AvatarService) AvatarURL(ctx context.Context, u *models.User) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := u.AvatarKey()

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.AvatarURLValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
