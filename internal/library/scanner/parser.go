package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
)

const (
	minYear = 1900
	maxYear = 2100
)

// ParsedMedia represents a media file parsed from a filename.
type ParsedMedia struct {
	Title string `json:"title" yaml:"title"`
	// RawTitle is the file or folder name without extension, before cleaning.
	RawTitle     string `json:"rawTitle" yaml:"rawTitle"`
	Year         int    `json:"year,omitempty" yaml:"year,omitempty"`
	Season       int    `json:"season,omitempty" yaml:"season,omitempty"`   // 0 for movies
	Episode      int    `json:"episode,omitempty" yaml:"episode,omitempty"` // 0 for movies or season packs
	EndEpisode   int    `json:"endEpisode,omitempty" yaml:"endEpisode,omitempty"`
	IsSeasonPack bool   `json:"isSeasonPack,omitempty" yaml:"isSeasonPack,omitempty"`
	IsTV         bool   `json:"isTv" yaml:"isTv"`
	FilePath     string `json:"filePath" yaml:"filePath"`
	FileSize     int64  `json:"fileSize,omitempty" yaml:"fileSize,omitempty"`
}

// Query builds the search query for the parsed file.
func (p *ParsedMedia) Query(language string) ranking.Query {
	return ranking.Query{
		Title:    p.Title,
		Year:     p.Year,
		Season:   p.Season,
		Episode:  p.Episode,
		Language: language,
		RawTitle: p.RawTitle,
	}
}

// Regex patterns for parsing
var (
	// TV patterns: Show.S01E02 or Show.1x02
	tvPatternSE = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+[Ss](\d{1,2})[Ee](\d{1,3})(?:-?[Ee](\d{1,3}))?(?:[\.\s_-]+(.*))?$`)
	tvPatternX  = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+(\d{1,2})[xX](\d{1,3})(?:[\.\s_-]+(.*))?$`)

	// TV season pack pattern: Show.S01 or Show.Season.1
	tvPatternSeasonPack = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+(?:[Ss]|[Ss]eason[\.\s_-]*)(\d{1,2})(?:[\.\s_-]+.*)?$`)

	// Movie pattern: Title.Year or Title (Year)
	moviePatternParen = regexp.MustCompile(`^(.+?)\s*[\(\[](\d{4})[\)\]]`)
	moviePatternDot   = regexp.MustCompile(`^(.+?)[\.\s_-]+(\d{4})(?:[\.\s_-]+|$)`)

	// trailingYear matches a year token closing a title: "(1999)", "[1999]", ".1999", " 1999".
	trailingYear = regexp.MustCompile(`^(.+?)[\.\s_-]*[\(\[]?(\d{4})[\)\]]?$`)

	// junkPattern matches release tags that never belong to a title.
	junkPattern = regexp.MustCompile(`(?i)(?:^|[\.\s_\-\[\(])(2160p|1080[pi]|720p|576p|480p|4k|uhd|hdr10?|dv|blu-?ray|bdrip|brrip|bdremux|remux|web-?dl|webrip|web|hdtv|pdtv|dvdrip|dvdscr|dvd|xvid|divx|[xh]\.?26[45]|hevc|avc|aac|ac3|dts|truehd|atmos|proper|repack|extended|unrated|remastered|multi|truefrench|vostfr|vff|vf|subbed|dubbed)(?:$|[\.\s_\-\]\)])`)

	// Clean up patterns
	cleanupPattern = regexp.MustCompile(`[\.\s_-]+`)
	bracketPattern = regexp.MustCompile(`[\[\(\{][^\]\)\}]*[\]\)\}]`)
)

// ParseFilename parses a media filename into structured data.
func ParseFilename(filename string) *ParsedMedia {
	name := stripExtension(filename)

	parsed := &ParsedMedia{
		FilePath: filename,
		RawTitle: name,
	}

	// Episode files named only "S01E02.mkv" carry no title; ParsePath fills it.
	if match := bareEpisodeFile.FindStringSubmatch(name); match != nil {
		parsed.IsTV = true
		parsed.Season, _ = strconv.Atoi(match[1])
		parsed.Episode, _ = strconv.Atoi(match[2])
		if match[3] != "" {
			parsed.EndEpisode, _ = strconv.Atoi(match[3])
		}
		return parsed
	}

	// Try TV patterns first
	if match := tvPatternSE.FindStringSubmatch(name); match != nil {
		parsed.IsTV = true
		parsed.Title, parsed.Year = splitTitleYear(match[1])
		parsed.Season, _ = strconv.Atoi(match[2])
		parsed.Episode, _ = strconv.Atoi(match[3])
		if match[4] != "" {
			parsed.EndEpisode, _ = strconv.Atoi(match[4])
		}
		return parsed
	}

	if match := tvPatternX.FindStringSubmatch(name); match != nil {
		parsed.IsTV = true
		parsed.Title, parsed.Year = splitTitleYear(match[1])
		parsed.Season, _ = strconv.Atoi(match[2])
		parsed.Episode, _ = strconv.Atoi(match[3])
		return parsed
	}

	if match := tvPatternSeasonPack.FindStringSubmatch(name); match != nil {
		parsed.IsTV = true
		parsed.IsSeasonPack = true
		parsed.Title, parsed.Year = splitTitleYear(match[1])
		parsed.Season, _ = strconv.Atoi(match[2])
		return parsed
	}

	// Try movie patterns
	if match := moviePatternParen.FindStringSubmatch(name); match != nil {
		if year, _ := strconv.Atoi(match[2]); validYear(year) {
			parsed.Title = cleanTitle(match[1])
			parsed.Year = year
			return parsed
		}
	}

	if match := moviePatternDot.FindStringSubmatch(name); match != nil {
		if year, _ := strconv.Atoi(match[2]); validYear(year) && cleanTitle(match[1]) != "" {
			parsed.Title = cleanTitle(match[1])
			parsed.Year = year
			return parsed
		}
	}

	// Fallback: the filename up to the first release tag
	parsed.Title = cleanTitle(stripJunk(name))
	if parsed.Title == "" {
		parsed.Title = cleanTitle(name)
	}
	return parsed
}

// ExtractYear splits a trailing release year off a raw title such as
// "Heat 1995", "Heat.1995.1080p" or "Heat (1995)". ok is false when no
// plausible year closes the title.
func ExtractYear(raw string) (title string, year int, ok bool) {
	candidate := strings.TrimSpace(stripJunk(raw))
	match := trailingYear.FindStringSubmatch(candidate)
	if match == nil {
		return "", 0, false
	}
	year, _ = strconv.Atoi(match[2])
	if !validYear(year) {
		return "", 0, false
	}
	title = cleanTitle(match[1])
	if title == "" {
		return "", 0, false
	}
	return title, year, true
}

// splitTitleYear separates "Doctor Who 2005" into its title and year.
func splitTitleYear(raw string) (string, int) {
	if title, year, ok := ExtractYear(raw); ok {
		return title, year
	}
	return cleanTitle(raw), 0
}

// stripJunk cuts s at the first release tag.
func stripJunk(s string) string {
	if loc := junkPattern.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

func stripExtension(filename string) string {
	ext := filepath.Ext(filename)
	if IsVideoFile(filename) || IsSubtitleFile(filename) {
		return strings.TrimSuffix(filename, ext)
	}
	return filename
}

func validYear(year int) bool {
	return year >= minYear && year <= maxYear
}

// cleanTitle cleans up a parsed title by replacing separators with spaces.
func cleanTitle(title string) string {
	cleaned := bracketPattern.ReplaceAllString(title, " ")
	cleaned = cleanupPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// ParsePath tries to extract media info from a folder path.
// This is useful when the filename doesn't contain all information.
func ParsePath(fullPath string) *ParsedMedia {
	filename := filepath.Base(fullPath)
	parsed := ParseFilename(filename)

	dir := filepath.Dir(fullPath)
	folderName := filepath.Base(dir)

	switch {
	case !parsed.IsTV && parsed.Year == 0 && dir != "." && dir != string(filepath.Separator):
		// "The Matrix (1999)/The.Matrix.1080p.BluRay.mkv"
		folderParsed := ParseFilename(folderName)
		if folderParsed.Year != 0 && folderParsed.Title != "" {
			parsed.Year = folderParsed.Year
			parsed.Title = folderParsed.Title
			parsed.RawTitle = folderParsed.RawTitle
		}
	case parsed.IsTV && parsed.Title == "":
		// "Show/Season 1/S01E02.mkv": the show is two levels up
		showDir := folderName
		if seasonFolder.MatchString(folderName) {
			showDir = filepath.Base(filepath.Dir(dir))
		}
		parsed.Title, parsed.Year = splitTitleYear(showDir)
		parsed.RawTitle = showDir
	}

	parsed.FilePath = fullPath
	return parsed
}

var (
	seasonFolder    = regexp.MustCompile(`(?i)^(season|saison|staffel|s)[\s._-]*\d{1,2}$`)
	bareEpisodeFile = regexp.MustCompile(`(?i)^[Ss](\d{1,2})[Ee](\d{1,3})(?:-?[Ee](\d{1,3}))?`)
)
