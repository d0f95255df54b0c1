// Package s3store keeps each user's sync document as a snappy-compressed
// JSON object in S3 or an S3-compatible service. Store satisfies
// sync.RemoteStore.
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"

	"github.com/marcus/dmscreen/internal/models"
)

// Config configures the S3 backend
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // S3-compatible services such as MinIO
	// Static credentials are optional; the default AWS chain applies
	// otherwise.
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// objectAPI is the subset of the S3 client the store needs
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store is a RemoteStore backed by S3
type Store struct {
	api    objectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// New builds a store from cfg using the AWS default config chain
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}
	return newStore(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, cfg.Prefix, time.Now), nil
}

func newStore(api objectAPI, bucket, prefix string, now func() time.Time) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{api: api, bucket: bucket, prefix: prefix, now: now}
}

// Key returns the object key holding userID's document
func (s *Store) Key(userID string) string {
	return s.prefix + "users/" + userID + ".json.sz"
}

// Get implements sync.RemoteStore
func (s *Store) Get(ctx context.Context, userID string) (*models.SyncRecord, error) {
	resp, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(userID)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer resp.Body.Close()

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body: %w", err)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress document: %w", err)
	}
	var rec models.SyncRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	rec.Normalize()
	return &rec, nil
}

// Set implements sync.RemoteStore. The document is stamped with the local
// clock in UTC since S3 has no server-side field to stamp.
func (s *Store) Set(ctx context.Context, userID string, state models.GameState) (time.Time, error) {
	st := state.Clone()
	st.Normalize()
	rec := models.SyncRecord{GameState: st, LastSync: s.now().UTC()}
	data, err := json.Marshal(rec)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode document: %w", err)
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(s.Key(userID)),
		Body:            bytes.NewReader(snappy.Encode(nil, data)),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("x-snappy"),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("s3 put object: %w", err)
	}
	return rec.LastSync, nil
}
