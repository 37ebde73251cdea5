package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	sc "github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var csvHeader = []string{"category_id", "category_name", "total", "count"}

// ExportService writes category report snapshots to S3-compatible storage.
type ExportService struct {
	reports *ReportService
	config  *sc.Config
	log     logging.Logger
	now     func() time.Time
}

func NewExportService(reports *ReportService, config *sc.Config, log logging.Logger) *ExportService {
	return &ExportService{
		reports: reports,
		config:  config,
		log:     log.With("module", "export"),
		now:     utcNow,
	}
}

func (s *ExportService) storageKey(ownerID string) string {
	d := s.now()
	return fmt.Sprintf("reports/%s/%04d/%02d/%02d/%v.csv", ownerID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
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

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// ExportCategoryReport builds the same report as CategoryReport, uploads it
// as CSV and returns the object key and a presigned download URL valid for
// the configured export link TTL.
func (s *ExportService) ExportCategoryReport(ctx context.Context, ownerID, kind, start, end string) (string, string, error) {
	report, err := s.reports.CategoryReport(ctx, ownerID, kind, start, end)
	if err != nil {
		return "", "", err
	}

	body, err := renderCSV(report)
	if err != nil {
		return "", "", err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(ownerID)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	}); err != nil {
		return "", "", fmt.Errorf("upload report: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportLinkTTL))
	if err != nil {
		return "", "", fmt.Errorf("presign report: %w", err)
	}

	s.log.Info(ctx, "report exported", "owner", ownerID, "key", key, "rows", len(report.Rows))

	return key, req.URL, nil
}

func renderCSV(report *models.CategoryReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range report.Rows {
		rec := []string{r.CategoryID, r.CategoryName, r.Total.String(), strconv.FormatInt(r.Count, 10)}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
