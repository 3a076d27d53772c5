package services

import (
	"context"
	"log/slog"
	"path"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/storage"
)

// --- Общие хелперы ---

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// blobRef извлекает бакет и ключ из ссылки на сохраненный файл сессии.
func blobRef(rawURL string) (namespace, key string, ok bool) {
	if rawURL == "" {
		return "", "", false
	}
	return storage.ParseObjectURL(rawURL, models.NamespaceCSV, models.NamespaceVideos)
}

// removeSessionBlobs удаляет файлы сессий по принципу best-effort: ошибки только логируются.
func removeSessionBlobs(ctx context.Context, blobs storage.BlobStore, logger *slog.Logger, sessions ...models.Session) {
	byNamespace := make(map[string][]string)
	for _, s := range sessions {
		if ns, key, ok := blobRef(derefString(s.KinoveaCSV)); ok {
			byNamespace[ns] = append(byNamespace[ns], key)
		}
	}
	for ns, keys := range byNamespace {
		if err := blobs.Remove(ctx, ns, keys...); err != nil {
			logger.WarnContext(ctx, "failed to remove session files from storage",
				slog.String("bucket", ns),
				slog.Any("keys", keys),
				slog.Any("error", err),
			)
		}
	}
}

// debugVideoID - для файлов из нашего бакета videos логируется только имя файла, иначе полный URL.
func debugVideoID(blobs storage.BlobStore, videoSource string) string {
	if ns, _, ok := blobs.ObjectFromURL(videoSource); ok && ns == models.NamespaceVideos {
		return path.Base(videoSource)
	}
	return videoSource
}
