package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/marquee-player/marquee/aniskip"
	"github.com/marquee-player/marquee/constant"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/util"
	"github.com/marquee-player/marquee/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"gopkg.in/yaml.v3"
)

// ErrUnsorted is returned for chapter documents whose starts are not ascending.
var ErrUnsorted = errors.New("chapters must be sorted ascending by start")

// tomlDocument wraps the chapter list, since a TOML document cannot be a bare array.
type tomlDocument struct {
	Chapters []Chapter `toml:"chapters"`
}

// ParseChapters decodes a chapter document, a JSON or YAML list of {start, title}, and validates it.
// TOML documents hold the list as [[chapters]] tables.
func ParseChapters(data []byte, format string) ([]Chapter, error) {
	var chapters []Chapter

	switch strings.ToLower(format) {
	case constant.FormatJSON:
		if err := json.Unmarshal(data, &chapters); err != nil {
			return nil, fmt.Errorf("parse json chapters: %w", err)
		}
	case constant.FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &chapters); err != nil {
			return nil, fmt.Errorf("parse yaml chapters: %w", err)
		}
	case constant.FormatTOML:
		var doc tomlDocument
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parse toml chapters: %w", err)
		}
		chapters = doc.Chapters
	default:
		return nil, fmt.Errorf("unknown chapter format %q", format)
	}

	if err := Validate(chapters); err != nil {
		return nil, err
	}

	return chapters, nil
}

// Validate checks that starts are finite, non-negative and ascending.
func Validate(chapters []Chapter) error {
	for i, c := range chapters {
		if !util.Finite(c.Start) || c.Start < 0 {
			return fmt.Errorf("chapter %d (%q): invalid start %v", i, c.Title, c.Start)
		}
		if i > 0 && c.Start < chapters[i-1].Start {
			return fmt.Errorf("chapter %d (%q) starts at %v before %v: %w", i, c.Title, c.Start, chapters[i-1].Start, ErrUnsorted)
		}
	}
	return nil
}

// Load reads the chapter document stored for a media file in the chapters directory.
// The document is looked up by the media file's stem, as json, yaml, yml or toml. No document yields no chapters.
func Load(media string) ([]Chapter, error) {
	stem := util.SanitizeFilename(util.FileStem(media))

	for _, ext := range []string{constant.FormatJSON, constant.FormatYAML, "yml", constant.FormatTOML} {
		path := filepath.Join(where.Chapters(), stem+"."+ext)

		exists, err := filesystem.API().Exists(path)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}

		data, err := filesystem.API().ReadFile(path)
		if err != nil {
			return nil, err
		}

		chapters, err := ParseChapters(data, ext)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return chapters, nil
	}

	return nil, nil
}

// ChaptersFromSkipTimes turns opening and ending intervals into chapter markers.
// Markers at or past a known duration are dropped, as are markers sharing a start with the previous one.
func ChaptersFromSkipTimes(times *aniskip.SkipTimes, duration float64) []Chapter {
	if times == nil || (!times.HasIntro && !times.HasOutro) {
		return nil
	}

	chapters := []Chapter{{Start: 0, Title: "Part A"}}

	if times.HasIntro {
		chapters = append(chapters,
			Chapter{Start: times.Opening.Start, Title: "Opening"},
			Chapter{Start: times.Opening.End, Title: "Part B"},
		)
	}

	if times.HasOutro {
		chapters = append(chapters,
			Chapter{Start: times.Ending.Start, Title: "Ending"},
			Chapter{Start: times.Ending.End, Title: "Preview"},
		)
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Start < chapters[j].Start
	})

	result := make([]Chapter, 0, len(chapters))
	for _, c := range chapters {
		if usable(duration) && c.Start >= duration {
			continue
		}

		// A later marker at the same start replaces the earlier one, e.g. an opening at 0 replaces "Part A".
		if n := len(result); n > 0 && math.Abs(result[n-1].Start-c.Start) < 0.5 {
			result[n-1] = c
			continue
		}

		result = append(result, c)
	}

	return result
}

// FindChapter returns the chapter whose title best matches query, case-insensitively.
func FindChapter(chapters []Chapter, query string) mo.Option[Chapter] {
	query = strings.TrimSpace(query)
	if query == "" {
		return mo.None[Chapter]()
	}

	titles := lo.Map(chapters, func(c Chapter, _ int) string {
		return c.Title
	})

	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	if len(ranks) == 0 {
		return mo.None[Chapter]()
	}

	sort.Stable(ranks)
	return mo.Some(chapters[ranks[0].OriginalIndex])
}

// ChapterSchema returns the JSON schema of a chapter document.
func ChapterSchema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.DoNotReference = true

	return reflector.Reflect([]Chapter{})
}
