package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("storage object not found")

type UploadResult struct {
	Namespace string
	Key       string
	Location  string
	ETag      string
}

// BlobStore - хранилище файлов, разбитое на пространства имен (бакеты csvs и videos).
type BlobStore interface {
	Upload(ctx context.Context, namespace, key, contentType string, reader io.Reader) (*UploadResult, error)

	Remove(ctx context.Context, namespace string, keys ...string) error

	// Open возвращает содержимое объекта; вызывающий закрывает reader.
	Open(ctx context.Context, namespace, key string) (io.ReadCloser, error)

	PublicURL(namespace, key string) string

	// ObjectFromURL разбирает публичную ссылку на объект этого хранилища.
	ObjectFromURL(rawURL string) (namespace, key string, ok bool)
}
