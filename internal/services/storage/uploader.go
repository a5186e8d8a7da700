package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ValidateOwnerID rejects owner ids that are empty or would change when used
// as a key prefix, so every owner maps to exactly one folder.
func ValidateOwnerID(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidOwner)
	}
	if sanitizeKeyPart(ownerID) != ownerID {
		return fmt.Errorf("%w: %q may only contain letters, digits, '.', '_' and '-'", ErrInvalidOwner, ownerID)
	}
	return nil
}

// Upload stores data under the owner's prefix and returns its public URL.
// The call either stores the whole object or nothing; it is never retried.
func (s *StorageService) Upload(ctx context.Context, ownerID, fileName string, data []byte, contentType string) (string, error) {
	_, url, err := s.upload(ctx, ownerID, fileName, data, contentType)
	return url, err
}

func (s *StorageService) upload(ctx context.Context, ownerID, fileName string, data []byte, contentType string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if err := ValidateOwnerID(ownerID); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	key := GenerateStorageKey(ownerID, fileName)
	if err := s.bucket.Put(key, data, contentType); err != nil {
		return "", "", fmt.Errorf("%w: failed to upload %s to supabase: %w", ErrUpload, key, err)
	}

	return key, s.bucket.PublicURL(key), nil
}

// Delete removes objects from the bucket.
func (s *StorageService) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.bucket.Remove(keys...); err != nil {
		return fmt.Errorf("failed to remove %s: %w", strings.Join(keys, ", "), err)
	}
	return nil
}

// GenerateStorageKey builds "<owner>/<name>_<unix>_<uuid8><ext>" with unsafe
// characters replaced, so two uploads of the same file never collide.
func GenerateStorageKey(ownerID, fileName string) string {
	base := filepath.Base(fileName)
	ext := strings.ToLower(filepath.Ext(base))
	name := sanitizeKeyPart(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "image"
	}

	timestamp := time.Now().Unix()
	id := uuid.New().String()[:8]

	return path.Join(ownerID, fmt.Sprintf("%s_%d_%s%s", name, timestamp, id, ext))
}

func sanitizeKeyPart(s string) string {
	return strings.Trim(unsafeKeyChars.ReplaceAllString(s, "-"), "-.")
}
