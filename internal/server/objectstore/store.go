// Package objectstore talks to the S3-compatible bucket that holds policy
// documents. File bytes never pass through the server: it only hands out
// presigned URLs and checks for object presence.
package objectstore

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/policysignoff/internal/server/config"
)

// Store is what the file flow needs from object storage.
type Store interface {
	// PresignPut returns a URL that accepts one PUT of key with contentType,
	// plus the headers covered by the signature. The uploader must send them
	// unchanged.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, http.Header, error)
	// PresignGet returns a URL that serves key. A non-empty fileName is sent
	// back to the browser as the attachment name.
	PresignGet(ctx context.Context, key, fileName string, ttl time.Duration) (string, error)
	// Exists reports whether key is present in the bucket.
	Exists(ctx context.Context, key string) (bool, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// S3Store implements Store with aws-sdk-go-v2.
//
// Two clients are kept: the internal one talks to the store over the
// service network, the public one exists only to sign URLs for the host
// browsers will contact. A signature is bound to the host it was computed
// for, so signing against the internal address produces URLs that fail.
type S3Store struct {
	bucket   string
	internal *s3.Client
	presign  *s3.PresignClient
}

func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	internal := newS3ClientFromConfig(awsCfg, endpoint(cfg.S3BaseEndpoint))
	public := newS3ClientFromConfig(awsCfg, endpoint(cfg.PresignEndpoint()))

	return &S3Store{
		bucket:   cfg.S3Bucket,
		internal: internal,
		presign:  newS3PresignClient(public),
	}, nil
}

func endpoint(url string) func(*s3.Options) {
	return func(o *s3.Options) {
		o.BaseEndpoint = aws.String(url)
		o.UsePathStyle = true
	}
}

func (s *S3Store) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, http.Header, error) {
	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl), signHeader("Content-Type", contentType))
	if err != nil {
		return "", nil, err
	}
	return req.URL, req.SignedHeader, nil
}

// presignHeaderID names the middleware added by signHeader.
const presignHeaderID = "PolicySignoffSignedHeader"

// signHeader sets name on the outgoing request right before the presigner
// runs, so the header becomes part of X-Amz-SignedHeaders. A body-less
// PutObjectInput otherwise leaves Content-Type out of the signature.
func signHeader(name, value string) func(*s3.PresignOptions) {
	mw := middleware.FinalizeMiddlewareFunc(presignHeaderID,
		func(ctx context.Context, in middleware.FinalizeInput, next middleware.FinalizeHandler) (middleware.FinalizeOutput, middleware.Metadata, error) {
			if req, ok := in.Request.(*smithyhttp.Request); ok {
				req.Header.Set(name, value)
			}
			return next.HandleFinalize(ctx, in)
		})

	return func(o *s3.PresignOptions) {
		o.ClientOptions = append(o.ClientOptions, func(so *s3.Options) {
			so.APIOptions = append(so.APIOptions, func(stack *middleware.Stack) error {
				if err := stack.Finalize.Insert(mw, "PresignHTTPRequest", middleware.Before); err != nil {
					return stack.Finalize.Add(mw, middleware.Before)
				}
				return nil
			})
		})
	}
}

func (s *S3Store) PresignGet(ctx context.Context, key, fileName string, ttl time.Duration) (string, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if fileName != "" {
		in.ResponseContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	}

	req, err := presignGetObject(s.presign, ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := headObject(s.internal, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
