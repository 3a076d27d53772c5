package kinematics

import (
	"regexp"
	"strings"
)

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractYouTubeID returns the 11-character video id, or "" when none of the known link forms match.
func ExtractYouTubeID(url string) string {
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

func IsYouTubeURL(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

// EmbedURL решает, что показывать в плеере: embed-ссылку YouTube, прямую ссылку
// или предупреждение, если источник не воспроизводим.
func EmbedURL(videoSource string) (embed string, warning string) {
	if !strings.HasPrefix(videoSource, "http") {
		return "", "Local video file not found."
	}
	if IsYouTubeURL(videoSource) {
		id := ExtractYouTubeID(videoSource)
		if id == "" {
			return "", "Could not extract video ID. Check the YouTube link."
		}
		return "https://www.youtube.com/embed/" + id, ""
	}
	return videoSource, ""
}
