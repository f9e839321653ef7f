package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DrOst98/fc-koeln-dashboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "prediction served",
					logger.String("player", "x"),
					logger.Float64("score", 61.2),
					logger.Int("top_n", 3),
				)
			}, ShouldNotPanic)
		})

		Convey("Then Named returns a scoped logger", func() {
			l := logger.Named("similarity")
			So(l, ShouldNotBeNil)
			So(func() {
				l.Warn(context.Background(), "empty result", logger.Error(errors.New("no comparable transfers")))
			}, ShouldNotPanic)
		})

		Convey("Then Sync never fails", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then known levels parse", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("INFO"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString("error"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
		})

		Convey("Then unknown levels fail", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
