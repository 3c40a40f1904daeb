package progress

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/marquee-player/marquee/aniskip"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

var lesson = []Chapter{
	{Start: 0, Title: "Intro"},
	{Start: 30, Title: "Setup"},
	{Start: 90, Title: "Advanced"},
}

func TestActiveChapter(t *testing.T) {
	Convey("Given three chapters", t, func() {
		Convey("The chapter with the greatest start not after t is active", func() {
			c, i, ok := ActiveChapter(lesson, 45)
			So(ok, ShouldBeTrue)
			So(c.Title, ShouldEqual, "Setup")
			So(i, ShouldEqual, 1)

			c, _, _ = ActiveChapter(lesson, 0)
			So(c.Title, ShouldEqual, "Intro")

			c, _, _ = ActiveChapter(lesson, 239)
			So(c.Title, ShouldEqual, "Advanced")
		})

		Convey("A chapter becomes active exactly at its start", func() {
			c, _, _ := ActiveChapter(lesson, 30)
			So(c.Title, ShouldEqual, "Setup")
		})

		Convey("Nothing is active before the first chapter or without chapters", func() {
			_, i, ok := ActiveChapter([]Chapter{{Start: 10, Title: "Late"}}, 5)
			So(ok, ShouldBeFalse)
			So(i, ShouldEqual, -1)

			_, _, ok = ActiveChapter(nil, 5)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSegments(t *testing.T) {
	Convey("Segments", t, func() {
		Convey("Each chapter spans to the next start or the end", func() {
			segments := Segments(lesson, 240)
			So(segments, ShouldHaveLength, 3)
			So(segments[0].Width, ShouldAlmostEqual, 30.0/240)
			So(segments[1].Left, ShouldAlmostEqual, 30.0/240)
			So(segments[1].Width, ShouldAlmostEqual, 60.0/240)
			So(segments[2].Width, ShouldAlmostEqual, 150.0/240)

			var total float64
			for _, s := range segments {
				total += s.Width
			}
			So(total, ShouldAlmostEqual, 1.0)
		})

		Convey("Unknown or empty durations yield nothing", func() {
			So(Segments(lesson, math.NaN()), ShouldBeNil)
			So(Segments(lesson, 0), ShouldBeNil)
			So(Segments(nil, 240), ShouldBeNil)
		})
	})
}

func TestBufferBars(t *testing.T) {
	Convey("BufferBars", t, func() {
		Convey("Ranges become percent geometry", func() {
			bars := BufferBars([]machine.BufferRange{{Start: 0, End: 10}, {Start: 50, End: 100}}, 200)
			So(bars, ShouldResemble, []Bar{{Left: 0, Width: 5}, {Left: 25, Width: 25}})
		})

		Convey("Unknown duration yields nothing", func() {
			So(BufferBars([]machine.BufferRange{{Start: 0, End: 10}}, math.NaN()), ShouldBeNil)
		})
	})
}

func TestDerive(t *testing.T) {
	Convey("Derive", t, func() {
		session := machine.NewSession()
		session.CurrentTime = 60
		session.Duration = 240
		session.Buffered = []machine.BufferRange{{Start: 0, End: 120}}

		d := Derive(session, lesson)
		So(d.HasChapter, ShouldBeTrue)
		So(d.Chapter.Title, ShouldEqual, "Setup")
		So(d.Segments, ShouldHaveLength, 3)
		So(d.Buffered, ShouldResemble, []Bar{{Left: 0, Width: 50}})
		So(d.Played, ShouldAlmostEqual, 0.25)

		Convey("Without a duration nothing is laid out", func() {
			d := Derive(machine.NewSession(), lesson)
			So(d.Segments, ShouldBeNil)
			So(d.Played, ShouldEqual, 0)
		})
	})
}

func TestParseChapters(t *testing.T) {
	Convey("ParseChapters", t, func() {
		Convey("Reads JSON", func() {
			chapters, err := ParseChapters([]byte(`[{"start":0,"title":"Intro"},{"start":30,"title":"Setup"}]`), "json")
			So(err, ShouldBeNil)
			So(chapters, ShouldResemble, lesson[:2])
		})

		Convey("Reads YAML", func() {
			doc := "- start: 0\n  title: Intro\n- start: 30\n  title: Setup\n- start: 90\n  title: Advanced\n"
			chapters, err := ParseChapters([]byte(doc), "yaml")
			So(err, ShouldBeNil)
			So(chapters, ShouldResemble, lesson)
		})

		Convey("Rejects unsorted input", func() {
			_, err := ParseChapters([]byte(`[{"start":30,"title":"B"},{"start":0,"title":"A"}]`), "json")
			So(errors.Is(err, ErrUnsorted), ShouldBeTrue)
		})

		Convey("Rejects negative starts and unknown formats", func() {
			_, err := ParseChapters([]byte(`[{"start":-1,"title":"A"}]`), "json")
			So(err, ShouldNotBeNil)

			_, err = ParseChapters([]byte(`[]`), "srt")
			So(err, ShouldNotBeNil)
		})

		Convey("Reads TOML chapter tables", func() {
			doc := "[[chapters]]\nstart = 0\ntitle = \"Intro\"\n\n[[chapters]]\nstart = 30\ntitle = \"Setup\"\n"
			chapters, err := ParseChapters([]byte(doc), "toml")
			So(err, ShouldBeNil)
			So(chapters, ShouldResemble, lesson[:2])
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Load", t, func() {
		Convey("Finds the document named after the media file", func() {
			path := filepath.Join(where.Chapters(), "lesson.yaml")
			err := filesystem.API().WriteFile(path, []byte("- start: 0\n  title: Intro\n"), 0o644)
			So(err, ShouldBeNil)

			chapters, err := Load("/videos/lesson.mp4")
			So(err, ShouldBeNil)
			So(chapters, ShouldResemble, []Chapter{{Start: 0, Title: "Intro"}})
		})

		Convey("Returns nothing when no document exists", func() {
			chapters, err := Load("/videos/missing.mp4")
			So(err, ShouldBeNil)
			So(chapters, ShouldBeNil)
		})
	})
}

func TestChaptersFromSkipTimes(t *testing.T) {
	Convey("ChaptersFromSkipTimes", t, func() {
		Convey("Opening and ending become markers", func() {
			times := &aniskip.SkipTimes{
				Opening:  aniskip.Interval{Start: 60, End: 150},
				Ending:   aniskip.Interval{Start: 1300, End: 1390},
				HasIntro: true,
				HasOutro: true,
			}

			chapters := ChaptersFromSkipTimes(times, 1420)
			So(chapters, ShouldResemble, []Chapter{
				{Start: 0, Title: "Part A"},
				{Start: 60, Title: "Opening"},
				{Start: 150, Title: "Part B"},
				{Start: 1300, Title: "Ending"},
				{Start: 1390, Title: "Preview"},
			})
			So(Validate(chapters), ShouldBeNil)
		})

		Convey("An opening at the start replaces the first marker and markers past the end are dropped", func() {
			times := &aniskip.SkipTimes{
				Opening:  aniskip.Interval{Start: 0, End: 90},
				Ending:   aniskip.Interval{Start: 1300, End: 1420},
				HasIntro: true,
				HasOutro: true,
			}

			chapters := ChaptersFromSkipTimes(times, 1420)
			So(chapters, ShouldResemble, []Chapter{
				{Start: 0, Title: "Opening"},
				{Start: 90, Title: "Part B"},
				{Start: 1300, Title: "Ending"},
			})
		})

		Convey("No intervals yield no chapters", func() {
			So(ChaptersFromSkipTimes(nil, 100), ShouldBeNil)
			So(ChaptersFromSkipTimes(&aniskip.SkipTimes{}, 100), ShouldBeNil)
		})
	})
}

func TestFindChapter(t *testing.T) {
	Convey("FindChapter", t, func() {
		So(FindChapter(lesson, "adv").MustGet().Title, ShouldEqual, "Advanced")
		So(FindChapter(lesson, "SETUP").MustGet().Start, ShouldEqual, 30)
		So(FindChapter(lesson, "zzz").IsPresent(), ShouldBeFalse)
		So(FindChapter(lesson, " ").IsPresent(), ShouldBeFalse)
	})
}

func TestChapterSchema(t *testing.T) {
	Convey("ChapterSchema describes a list of chapters", t, func() {
		schema := ChapterSchema()
		So(schema, ShouldNotBeNil)
		So(schema.Type, ShouldEqual, "array")
		So(schema.Items, ShouldNotBeNil)
	})
}
