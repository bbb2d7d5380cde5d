package scanner

import (
	"path/filepath"
	"strings"
)

// VideoExtensions contains supported video file extensions.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".ts":   true,
	".wmv":  true,
	".mov":  true,
	".webm": true,
	".mpg":  true,
	".mpeg": true,
	".m2ts": true,
	".iso":  true,
}

// SubtitleExtensions are sidecar files named after the video they belong to.
var SubtitleExtensions = map[string]bool{
	".srt": true,
	".sub": true,
	".ass": true,
	".ssa": true,
	".vtt": true,
}

// SampleFileIndicators are strings that indicate a file is a sample or extra.
var SampleFileIndicators = []string{
	"sample",
	"trailer",
	"featurette",
}

// IsVideoFile checks if a filename has a video extension.
func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsSubtitleFile checks if a filename has a subtitle extension.
func IsSubtitleFile(filename string) bool {
	return SubtitleExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsSampleFile checks if a filename indicates it's a sample file.
func IsSampleFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, indicator := range SampleFileIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// isHiddenDir reports whether a directory should be skipped while walking.
func isHiddenDir(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") || strings.EqualFold(name, "@eaDir")
}
