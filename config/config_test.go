package config

import (
	"errors"
	"testing"

	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should register every defined key", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("Should keep float defaults typed", func() {
			_ = Setup()
			So(viper.GetFloat64(key.GesturePinchIn), ShouldEqual, 1.2)
			So(viper.GetInt(key.GestureDoubleTapWindow), ShouldEqual, 300)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("gesture.double_tap_ms")
			So(result, ShouldEqual, "gesture_double_tap_ms")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Field", t, func() {
		f := Default[key.ScrubQuality]

		Convey("Env should carry the application prefix", func() {
			So(f.Env(), ShouldEqual, "MARQUEE_SCRUB_QUALITY")
		})

		Convey("typeName should report the default's type", func() {
			So(f.typeName(), ShouldEqual, "int")
			pinch := Default[key.GesturePinchOut]
			So(pinch.typeName(), ShouldEqual, "float64")
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Lookup", t, func() {
		Convey("Should return registered fields", func() {
			f, err := Lookup(key.ScrubWidth)
			So(err, ShouldBeNil)
			So(f.Value, ShouldEqual, 160)
		})

		Convey("Should suggest the closest key on a typo", func() {
			_, err := Lookup("scrub.widht")
			var unknown *UnknownKeyError
			So(errors.As(err, &unknown), ShouldBeTrue)
			So(unknown.Closest, ShouldEqual, key.ScrubWidth)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Should convert to the default's type", func() {
			rate := Default[key.PlayerRate]
			v, err := rate.Parse([]string{"1.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 1.5)

			autoplay := Default[key.PlayerAutoplay]
			v, err = autoplay.Parse([]string{"false"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)
		})

		Convey("Should reject values of the wrong type", func() {
			width := Default[key.ScrubWidth]
			_, err := width.Parse([]string{"wide"})
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject values out of range", func() {
			quality := Default[key.ScrubQuality]
			_, err := quality.Parse([]string{"101"})
			So(err, ShouldNotBeNil)

			rate := Default[key.PlayerRate]
			_, err = rate.Parse([]string{"0"})
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject unknown options", func() {
			easing := Default[key.FlipEasing]
			_, err := easing.Parse([]string{"bounce"})
			So(err, ShouldNotBeNil)

			v, err := easing.Parse([]string{"ease-out"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "ease-out")
		})

		Convey("Should require a value", func() {
			rate := Default[key.PlayerRate]
			_, err := rate.Parse(nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Write", t, func() {
		filesystem.SetMemMapFs()
		So(Setup(), ShouldBeNil)

		viper.Set(key.ScrubWidth, 240)
		So(Write(), ShouldBeNil)

		exists, err := filesystem.API().Exists(Path())
		So(err, ShouldBeNil)
		So(exists, ShouldBeTrue)

		Convey("Remove should delete the file", func() {
			So(Remove(), ShouldBeNil)
			exists, _ := filesystem.API().Exists(Path())
			So(exists, ShouldBeFalse)
		})
	})
}
