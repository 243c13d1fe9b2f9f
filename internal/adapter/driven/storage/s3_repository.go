package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/jonboulle/clockwork"
	"github.com/lestrrat-go/strftime"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/domain/repository"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
	"github.com/diillson/cloudability-export-go/internal/shared/validator"
)

// DefaultKeyPattern prefixes the file name when no object key is given.
const DefaultKeyPattern = "%Y-%m-%d-%H-%M-%S-"

// S3RepositoryImpl implementa o StorageRepository sobre o Amazon S3.
type S3RepositoryImpl struct {
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewS3Repository cria uma nova implementação do StorageRepository.
func NewS3Repository(clock clockwork.Clock, logger *zap.Logger) repository.StorageRepository {
	return &S3RepositoryImpl{clock: clock, logger: logger}
}

// Upload envia o arquivo local para o bucket. Sem endpoint customizado as
// credenciais são verificadas no STS antes da transferência.
func (r *S3RepositoryImpl) Upload(ctx context.Context, localPath string, spec entity.UploadSpec) (string, error) {
	if err := validator.Validate(spec); err != nil {
		return "", fmt.Errorf("%w: invalid upload settings: %w", types.ErrUpload, err)
	}

	key, err := r.objectKey(localPath, spec.Key)
	if err != nil {
		return "", err
	}

	cfg, err := r.getAWSConfig(ctx, spec)
	if err != nil {
		return "", err
	}

	if spec.Endpoint == "" {
		identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return "", classify("verifying credentials", err)
		}
		r.logger.Debug("aws credentials verified", zap.String("account", aws.ToString(identity.Account)))
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", types.ErrUpload, localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", types.ErrUpload, localPath, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if spec.Endpoint != "" {
			o.BaseEndpoint = aws.String(spec.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(spec.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return "", classify(fmt.Sprintf("uploading to s3://%s/%s", spec.Bucket, key), err)
	}

	r.logger.Info("file uploaded",
		zap.String("bucket", spec.Bucket),
		zap.String("key", key),
		zap.Int64("bytes", info.Size()))
	return spec.Bucket + "/" + key, nil
}

func (r *S3RepositoryImpl) getAWSConfig(ctx context.Context, spec entity.UploadSpec) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(spec.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spec.AccessKeyID, spec.SecretAccessKey, "")),
		config.WithSharedConfigFiles([]string{}),
		config.WithSharedCredentialsFiles([]string{}),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: loading aws config: %w", types.ErrUpload, err)
	}
	return cfg, nil
}

// objectKey devolve a chave informada ou gera uma com data e hora do envio.
func (r *S3RepositoryImpl) objectKey(localPath, key string) (string, error) {
	if key != "" {
		return key, nil
	}
	prefix, err := strftime.Format(DefaultKeyPattern, r.clock.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("%w: formatting object key: %w", types.ErrUpload, err)
	}
	return prefix + filepath.Base(localPath), nil
}

func classify(action string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%w: %s: bucket does not exist: %w", types.ErrUpload, action, err)
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidClientTokenId", "AccessDenied", "ExpiredToken":
			return fmt.Errorf("%w: %s: credentials rejected (%s): %w", types.ErrUpload, action, apiErr.ErrorCode(), err)
		}
	}
	return fmt.Errorf("%w: %s: %w", types.ErrUpload, action, err)
}
