package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/phambaophuc/photo-normalizer/internal/models"
)

// UploadMultiple uploads files concurrently and returns their URLs in the
// order of files. It is all-or-nothing: when any upload fails, the files that
// did land are removed again and no URLs are returned.
func (s *StorageService) UploadMultiple(ctx context.Context, ownerID string, files []models.UploadFile) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	keys := make([]string, len(files))
	urls := make([]string, len(files))
	errors := make([]error, len(files))

	numWorkers := min(s.uploadWorkers, len(files))

	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				keys[i], urls[i], errors[i] = s.upload(ctx, ownerID, files[i].Filename, files[i].Data, files[i].ContentType)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	var failedUploads, stored []string
	var firstErr error
	for i, err := range errors {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failedUploads = append(failedUploads, fmt.Sprintf("%s: %v", files[i].Filename, err))
			continue
		}
		stored = append(stored, keys[i])
	}

	if len(failedUploads) == 0 {
		return urls, nil
	}

	err := fmt.Errorf("failed to upload %d of %d files: %s: %w",
		len(failedUploads), len(files), strings.Join(failedUploads, "; "), firstErr)

	// Roll back even if the caller's context is already done.
	if cleanupErr := s.Delete(context.WithoutCancel(ctx), stored...); cleanupErr != nil {
		return nil, fmt.Errorf("%w (cleanup: %v)", err, cleanupErr)
	}
	return nil, err
}
