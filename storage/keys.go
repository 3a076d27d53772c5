package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// GenerateKey строит имя объекта вида "{base}_{unix}{ext}".
// Уникальность обеспечивается только временной меткой (секунды).
func GenerateKey(filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := path.Ext(name)
	base := sanitizeKeyPart(strings.TrimSuffix(name, ext))
	if base == "" || base == "." {
		base = "upload"
	}
	return fmt.Sprintf("%s_%d%s", base, now.Unix(), sanitizeKeyPart(ext))
}

func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// BuildPublicURL returns "{base}/{namespace}/{key}".
func BuildPublicURL(publicBaseURL, namespace, key string) string {
	if publicBaseURL == "" || namespace == "" || key == "" {
		return ""
	}
	return strings.TrimRight(publicBaseURL, "/") + "/" + namespace + "/" + strings.TrimLeft(key, "/")
}

// ParseObjectURL извлекает бакет и ключ из публичной ссылки на объект.
// Берется последнее вхождение сегмента /csvs/ или /videos/.
func ParseObjectURL(rawURL string, namespaces ...string) (namespace, key string, ok bool) {
	best := -1
	for _, ns := range namespaces {
		marker := "/" + ns + "/"
		if idx := strings.LastIndex(rawURL, marker); idx > best {
			best = idx
			namespace = ns
			key = rawURL[idx+len(marker):]
		}
	}
	if best < 0 {
		return "", "", false
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", "", false
	}
	return namespace, key, true
}

// ParseStoredURL работает как ParseObjectURL, но только для ссылок под publicBaseURL.
// Чужие адреса с сегментом /videos/ (vimeo и т.п.) не считаются нашими объектами.
func ParseStoredURL(publicBaseURL, rawURL string, namespaces ...string) (namespace, key string, ok bool) {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" || !strings.HasPrefix(rawURL, base+"/") {
		return "", "", false
	}
	return ParseObjectURL(strings.TrimPrefix(rawURL, base), namespaces...)
}
