package clean

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/go-scripts/scrape/internal/types"
)

const (
	UnknownType    = "Unknown"
	MissingContent = "Missing Content"

	// LanguageUndetected fills the Language column. No detection is done.
	LanguageUndetected = "Unknown"
)

// Header is the column order of the cleaned CSV
var Header = []string{"Data Type", "Content", "Content_Length", "Word_Count", "Contains_URL", "Contains_Arrow", "Language"}

// Row is one cleaned record with its derived features
type Row struct {
	DataType      string
	Content       string
	ContentLength int
	WordCount     int
	ContainsURL   bool
	ContainsArrow bool
	Language      string
}

// Record renders the row in Header order
func (r Row) Record() []string {
	return []string{
		r.DataType,
		r.Content,
		strconv.Itoa(r.ContentLength),
		strconv.Itoa(r.WordCount),
		pyBool(r.ContainsURL),
		pyBool(r.ContainsArrow),
		r.Language,
	}
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Stats counts what each cleaning step did
type Stats struct {
	Input      int
	Empty      int
	Filled     int
	Duplicates int
	Output     int
}

func (s Stats) String() string {
	return fmt.Sprintf("input=%d empty=%d filled=%d duplicates=%d output=%d",
		s.Input, s.Empty, s.Filled, s.Duplicates, s.Output)
}

var (
	disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\p{Z}.,!?\->]`)
	whitespaceRuns  = regexp.MustCompile(`[\s\v\p{Z}]+`)
	urlMarkers      = regexp.MustCompile(`(?i)http|www|\.com|\.org`)
)

// Clean normalizes raw rows. An empty cell counts as missing. Rows empty in
// both columns are dropped, the type is title-cased, content is stripped of
// anything but word characters, whitespace and `.,!?->`, missing content is
// filled with a placeholder and repeated (type, content) pairs keep only the
// first occurrence.
func Clean(rows []types.RawRow) ([]Row, Stats) {
	st := Stats{Input: len(rows)}

	type key struct{ dataType, content string }
	seen := make(map[key]struct{}, len(rows))
	out := make([]Row, 0, len(rows))

	for _, raw := range rows {
		if raw.DataType == "" && raw.Content == "" {
			st.Empty++
			continue
		}

		dataType := titleCase(strings.TrimSpace(raw.DataType))
		if dataType == "" {
			dataType = UnknownType
		}

		var content string
		if raw.Content == "" {
			content = placeholder(dataType)
			st.Filled++
		} else {
			content = normalizeContent(raw.Content)
		}

		k := key{dataType, content}
		if _, dup := seen[k]; dup {
			st.Duplicates++
			continue
		}
		seen[k] = struct{}{}

		out = append(out, features(dataType, content))
	}

	st.Output = len(out)
	return out, st
}

// titleCase capitalizes every word, treating underscores as word breaks
// ("list_item" becomes "List_Item").
func titleCase(s string) string {
	title := cases.Title(language.Und)
	parts := strings.Split(s, "_")
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, "_")
}

func normalizeContent(s string) string {
	s = strings.TrimSpace(s)
	s = disallowedChars.ReplaceAllString(s, "")
	return whitespaceRuns.ReplaceAllString(s, " ")
}

func placeholder(dataType string) string {
	if dataType == UnknownType {
		return MissingContent
	}
	return fmt.Sprintf("No %s content available", dataType)
}

func features(dataType, content string) Row {
	return Row{
		DataType:      dataType,
		Content:       content,
		ContentLength: utf8.RuneCountInString(content),
		WordCount:     types.WordCount(content),
		ContainsURL:   urlMarkers.MatchString(content),
		ContainsArrow: strings.Contains(content, "->"),
		Language:      LanguageUndetected,
	}
}
