package storage

import (
	"bytes"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
)

// Bucket is the object store holding normalized photos.
type Bucket interface {
	Put(key string, data []byte, contentType string) error
	PublicURL(key string) string
	Remove(keys ...string) error
	Ping() error
}

type supabaseBucket struct {
	client *storage_go.Client
	name   string
}

func NewSupabaseBucket(client *storage_go.Client, name string) Bucket {
	return &supabaseBucket{client: client, name: name}
}

func (b *supabaseBucket) Put(key string, data []byte, contentType string) error {
	upsert := false
	cacheControl := "31536000"
	_, err := b.client.UploadFile(b.name, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	return err
}

func (b *supabaseBucket) PublicURL(key string) string {
	return b.client.GetPublicUrl(b.name, key).SignedURL
}

func (b *supabaseBucket) Remove(keys ...string) error {
	_, err := b.client.RemoveFile(b.name, keys)
	return err
}

func (b *supabaseBucket) Ping() error {
	if _, err := b.client.ListFiles(b.name, "", storage_go.FileSearchOptions{}); err != nil {
		return fmt.Errorf("list %s: %v", b.name, err)
	}
	return nil
}
