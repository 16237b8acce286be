package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		var buf bytes.Buffer
		So(InitWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info level", func() {
			Get().Info(ctx, "command dispatched", String("command", "moveUp"), Int("frame", 3))

			Convey("Then the record carries message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "command dispatched")
				So(out, ShouldContainSubstring, "command=moveUp")
				So(out, ShouldContainSubstring, "frame=3")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When debug is logged at the default level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")

			Convey("Then debug records are written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
				So(Level(), ShouldEqual, slog.LevelDebug)
			})
		})

		Convey("When a named logger logs an error", func() {
			Named("engine").Error(ctx, "failed", Error(errors.New("boom")))

			Convey("Then the component and error are included", func() {
				So(buf.String(), ShouldContainSubstring, "component=engine")
				So(buf.String(), ShouldContainSubstring, "error=boom")
			})
		})

		Convey("When an unknown level is set", func() {
			err := SetLevelString("verbose")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestNop(t *testing.T) {
	Convey("Nop discards records without panicking", t, func() {
		l := Nop().Named("x")
		So(func() { l.Error(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
