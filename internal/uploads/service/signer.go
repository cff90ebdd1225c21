package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	usersdomain "github.com/gezi-blog/backend/internal/users/domain"
)

const (
	maxFileSize = 10 * 1024 * 1024 // 10 MiB
	urlExpiry   = 5 * time.Minute
)

// allowedTypes maps accepted image content types to their key extension.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

var ErrInvalidUpload = errors.New("invalid upload request")

// Presigner produces a time-limited PUT URL for an object key.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, expires time.Duration) (string, error)
}

type UserStore interface {
	Get(ctx context.Context, uid string) (*usersdomain.User, error)
}

type SignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Key       string `json:"key"`
}

// UploadService hands out pre-signed upload URLs. The client PUTs the file
// straight to object storage; bytes never pass through this server.
type UploadService struct {
	eval          *access.Evaluator
	users         UserStore
	signer        Presigner
	publicBaseURL string
}

func NewUploadService(eval *access.Evaluator, users UserStore, signer Presigner, publicBaseURL string) *UploadService {
	return &UploadService{
		eval:          eval,
		users:         users,
		signer:        signer,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// SignUpload validates the request and returns a 5-minute PUT URL. Uses the
// same write gate as post creation: admin by token email, or a stored user
// that passes CanWritePost.
func (s *UploadService) SignUpload(ctx context.Context, identity *auth.Identity, fileName, contentType string, fileSize int64) (*SignedUpload, error) {
	if identity == nil {
		return nil, access.ErrForbidden
	}
	if !s.eval.IsAdmin(identity.Email) {
		user, err := s.users.Get(ctx, identity.UID)
		if errors.Is(err, usersdomain.ErrUserNotFound) {
			return nil, access.ErrForbidden
		}
		if err != nil {
			return nil, err
		}
		if !s.eval.CanWritePost(user.Viewer(s.eval)) {
			return nil, access.ErrForbidden
		}
	}

	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: content type %q not allowed", ErrInvalidUpload, contentType)
	}
	if fileSize <= 0 || fileSize > maxFileSize {
		return nil, fmt.Errorf("%w: file size must be between 1 byte and %d MB", ErrInvalidUpload, maxFileSize/1024/1024)
	}

	// Prefer the original extension when it matches a known image type.
	if nameExt := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), ".")); nameExt != "" {
		for _, known := range allowedTypes {
			if nameExt == known || (nameExt == "jpeg" && known == "jpg") {
				ext = known
				break
			}
		}
	}

	key := fmt.Sprintf("posts/%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	uploadURL, err := s.signer.PresignPut(ctx, key, contentType, fileSize, urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &SignedUpload{
		UploadURL: uploadURL,
		PublicURL: s.publicBaseURL + "/" + key,
		Key:       key,
	}, nil
}
