/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package archive pkg/archive/s3.go copies pruned snapshot rows to an S3
// compatible bucket as newline-delimited JSON.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfreeman451/fleetwatch/pkg/models"
	"github.com/mfreeman451/fleetwatch/pkg/snapshot"
)

const (
	keyPrefix     = "snapshots"
	defaultRegion = "us-east-1"
	contentType   = "application/x-ndjson"
)

var (
	errMissingBucket = errors.New("archive bucket is required")
	errEmptyBatch    = errors.New("nothing to archive")
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
}

// objectStore is the subset of *minio.Client the archiver needs.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Archiver implements snapshot.Archiver on an S3 bucket.
type S3Archiver struct {
	store  objectStore
	config Config
	now    func() time.Time
}

var _ snapshot.Archiver = (*S3Archiver)(nil)

func NewS3Archiver(cfg Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, errMissingBucket
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	return &S3Archiver{store: mc, config: cfg, now: time.Now}, nil
}

// EnsureBucket creates the archive bucket if it does not exist.
func (a *S3Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.store.BucketExists(ctx, a.config.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.config.Bucket, err)
	}

	if exists {
		return nil
	}

	region := a.config.Region
	if region == "" {
		region = defaultRegion
	}

	if err := a.store.MakeBucket(ctx, a.config.Bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.config.Bucket, err)
	}

	log.Printf("archive: created bucket %s", a.config.Bucket)

	return nil
}

// Archive writes rows as one NDJSON object and returns its key.
func (a *S3Archiver) Archive(ctx context.Context, rows []models.StatusSnapshot) (string, error) {
	if len(rows) == 0 {
		return "", errEmptyBatch
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return "", fmt.Errorf("encode snapshot %d: %w", rows[i].ID, err)
		}
	}

	key := objectKey(a.now())

	_, err := a.store.PutObject(ctx, a.config.Bucket, key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s/%s: %w", a.config.Bucket, key, err)
	}

	log.Printf("archive: wrote %d snapshots to %s/%s", len(rows), a.config.Bucket, key)

	return key, nil
}

func objectKey(t time.Time) string {
	t = t.UTC()

	return fmt.Sprintf("%s/%04d/%02d/%02d/%s.ndjson", keyPrefix, t.Year(), int(t.Month()), t.Day(), uuid.NewString())
}
