package util

import (
	"math"
	"os"
	"testing"

	"github.com/marquee-player/marquee/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("file__name.txt"), ShouldEqual, "file_name.txt")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.txt"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
		So(FileStem("https://cdn.example.com/live/master.m3u8?token=a.b"), ShouldEqual, "master")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5.0, 0, 1), ShouldEqual, 1)
		So(Clamp(-2.0, 0, 1), ShouldEqual, 0)
		So(Clamp(0.25, 0, 1), ShouldEqual, 0.25)
		So(Clamp(7, 0, 10), ShouldEqual, 7)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(fs.MkdirAll("/tmp/marquee/frames", os.ModePerm), ShouldBeNil)
		So(fs.WriteFile("/tmp/marquee/frames/a.png", []byte{1}, 0o644), ShouldBeNil)

		So(Delete("/tmp/marquee"), ShouldBeNil)
		exists, _ := fs.Exists("/tmp/marquee/frames/a.png")
		So(exists, ShouldBeFalse)

		So(Delete("/tmp/missing"), ShouldNotBeNil)
	})
}

func TestFormatSeconds(t *testing.T) {
	Convey("FormatSeconds", t, func() {
		So(FormatSeconds(0), ShouldEqual, "0:00")
		So(FormatSeconds(65.9), ShouldEqual, "1:05")
		So(FormatSeconds(3725), ShouldEqual, "1:02:05")
		So(FormatSeconds(math.NaN()), ShouldEqual, "--:--")
		So(FormatSeconds(-1), ShouldEqual, "--:--")
	})
}
