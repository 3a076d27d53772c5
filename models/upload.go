package models

import (
	"mime"
	"strings"
)

// Blob namespaces (buckets).
const (
	NamespaceCSV    = "csvs"
	NamespaceVideos = "videos"
)

// UploadKind is resolved once from the declared MIME type at upload entry.
type UploadKind int

const (
	UploadUnsupported UploadKind = iota
	UploadCSV
	UploadVideo
)

var videoContentTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/quicktime": {},
	"video/x-msvideo": {},
}

// ClassifyUpload maps a declared content type to an UploadKind.
// Media type parameters such as charset are ignored.
func ClassifyUpload(contentType string) UploadKind {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if mediaType == "text/csv" {
		return UploadCSV
	}
	if _, ok := videoContentTypes[mediaType]; ok {
		return UploadVideo
	}
	return UploadUnsupported
}

// Namespace returns the bucket for the kind, or "" for unsupported uploads.
func (k UploadKind) Namespace() string {
	switch k {
	case UploadCSV:
		return NamespaceCSV
	case UploadVideo:
		return NamespaceVideos
	default:
		return ""
	}
}

func (k UploadKind) String() string {
	switch k {
	case UploadCSV:
		return "csv"
	case UploadVideo:
		return "video"
	default:
		return "unsupported"
	}
}
