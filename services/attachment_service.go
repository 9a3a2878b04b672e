package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"messenger/domain"
	"messenger/errors"
	"messenger/storage"

	"github.com/gabriel-vasile/mimetype"
)

// MaxAttachmentBytes is the per-file upload limit. A file of exactly this size
// is accepted; one byte more is rejected.
const MaxAttachmentBytes = 10 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
	".txt":  {},
}

// Upload is one incoming multipart file, fully read by the API layer.
type Upload struct {
	Name string
	Size int64
	Data []byte
}

type IAttachmentService interface {
	Store(uploads []Upload) ([]domain.FileRef, error)
	Retrieve(filename string) (io.ReadCloser, string, error)
}

type AttachmentService struct {
	store storage.IBlobStore
}

func NewAttachmentService(store storage.IBlobStore) IAttachmentService {
	return &AttachmentService{store: store}
}

// Store validates and persists the batch in upload order, and is only ever
// called as part of message creation. The first rejected file aborts the whole
// call before any message row exists; files written earlier in the batch stay
// on disk (no rollback, matching the observed system). The storage key is the
// original filename, so same-named uploads overwrite each other.
func (s *AttachmentService) Store(uploads []Upload) ([]domain.FileRef, error) {
	refs := make([]domain.FileRef, 0, len(uploads))
	for _, up := range uploads {
		if up.Size > MaxAttachmentBytes {
			return nil, fmt.Errorf("file %s too large: %w", up.Name, errors.ErrPayloadTooLarge)
		}
		ext := strings.ToLower(filepath.Ext(up.Name))
		if _, ok := allowedExtensions[ext]; !ok {
			return nil, fmt.Errorf("file %s: %w", up.Name, errors.ErrUnsupportedMediaType)
		}

		if err := s.store.Save(up.Name, up.Data); err != nil {
			return nil, err
		}
		refs = append(refs, domain.FileRef{
			Name: up.Name,
			URL:  "/files/" + up.Name,
		})
	}
	return refs, nil
}

// Retrieve opens a stored file and detects its content type. No access control
// applies here: any caller who knows a filename can fetch it. Inherited from
// the observed system and deliberately not fixed.
func (s *AttachmentService) Retrieve(filename string) (io.ReadCloser, string, error) {
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(s.store.Path(filename)); err == nil {
		contentType = mt.String()
	}

	reader, err := s.store.Open(filename)
	if err != nil {
		return nil, "", err
	}
	return reader, contentType, nil
}
