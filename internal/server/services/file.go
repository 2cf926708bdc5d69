package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/server/config"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/objectstore"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/policysignoff/internal/validate"
	"github.com/google/uuid"
)

// ObjectKeyPrefix is the logical folder for policy documents in the bucket.
const ObjectKeyPrefix = "policies/"

// FileService hands out presigned URLs for policy documents and keeps the
// file reference on the policy row.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       objectstore.Store
	validator   *validate.Validator
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store objectstore.Store, v *validate.Validator, cfg *config.Config) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		validator:   v,
		uploadTTL:   cfg.UploadURLValidityDuration,
		downloadTTL: cfg.DownloadURLValidityDuration,
	}
}

// NewObjectKey returns a fresh key keeping fileName's extension, lower-cased.
func NewObjectKey(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	return ObjectKeyPrefix + uuid.NewString() + "." + ext
}

// RequestUploadTarget issues a PUT URL for a new document of policyID and
// records the reference right away, before any bytes arrive. Only the
// policy's creator may attach a document.
func (s *FileService) RequestUploadTarget(ctx context.Context, userID, policyID int64, in UploadInput) (*models.UploadTarget, error) {
	repo := s.repomanager.Policies(s.db)

	p, err := repo.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != userID {
		return nil, common.ErrForbidden
	}

	in.FileName = strings.TrimSpace(in.FileName)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	key := NewObjectKey(in.FileName)
	url, signed, err := s.store.PresignPut(ctx, key, in.ContentType, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	if err := repo.SetFile(ctx, policyID, key, in.FileName); err != nil {
		return nil, fmt.Errorf("error recording file: %w", err)
	}

	return &models.UploadTarget{URL: url, Key: key, Headers: uploadHeaders(signed)}, nil
}

// uploadHeaders keeps the signed headers the uploader has to set itself.
// Host comes from the URL.
func uploadHeaders(signed http.Header) map[string]string {
	out := make(map[string]string, len(signed))
	for name := range signed {
		if strings.EqualFold(name, "Host") {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = signed.Get(name)
	}
	return out
}

// CompleteUpload confirms that the document of policyID reached the bucket.
// A missing object yields common.ErrNotFound and the reference stays pending.
func (s *FileService) CompleteUpload(ctx context.Context, userID, policyID int64) error {
	repo := s.repomanager.Policies(s.db)

	p, err := repo.GetByID(ctx, policyID)
	if err != nil {
		return err
	}
	if p.CreatedBy != userID {
		return common.ErrForbidden
	}
	if !p.HasFile() {
		return common.ErrNotFound
	}
	if p.FileStatus == models.FileStatusUploaded {
		return nil
	}

	ok, err := s.store.Exists(ctx, *p.FileKey)
	if err != nil {
		return fmt.Errorf("error checking object: %w", err)
	}
	if !ok {
		return common.ErrNotFound
	}

	if err := repo.MarkUploaded(ctx, policyID, *p.FileKey); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrConflict
		}
		return fmt.Errorf("error updating file status: %w", err)
	}
	return nil
}

// RequestDownloadTarget issues a GET URL for the document of policyID. Any
// authenticated user may download.
func (s *FileService) RequestDownloadTarget(ctx context.Context, policyID int64) (*models.DownloadTarget, error) {
	p, err := s.repomanager.Policies(s.db).GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if !p.HasFile() {
		return nil, common.ErrNotFound
	}

	var name string
	if p.FileName != nil {
		name = *p.FileName
	}

	url, err := s.store.PresignGet(ctx, *p.FileKey, name, s.downloadTTL)
	if err != nil {
		return nil, fmt.Errorf("error presigning download: %w", err)
	}
	return &models.DownloadTarget{URL: url, FileName: name}, nil
}
