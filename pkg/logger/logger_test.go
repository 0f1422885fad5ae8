package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given a fresh logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		So(Get(), ShouldNotBeNil)
		So(Named("test"), ShouldNotBeNil)

		Convey("When the format is unknown", func() {
			So(Init(WithFormat("xml")), ShouldNotBeNil)
		})

		Convey("When the level is unknown", func() {
			So(Init(WithLevel("loud")), ShouldNotBeNil)
		})
	})
}

func TestJSONOutput(t *testing.T) {
	Convey("Given a json logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Named("scoring").Info(ctx, "scored",
				String("game_id", "G1"),
				Int64("record_id", 7),
				Bool("no_data", false),
			)

			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)

			Convey("Then every field is present", func() {
				So(line["msg"], ShouldEqual, "scored")
				So(line["logger"], ShouldEqual, "scoring")
				So(line["game_id"], ShouldEqual, "G1")
				So(line["record_id"], ShouldEqual, 7.0)
				So(line["no_data"], ShouldEqual, false)
				So(line["request_id"], ShouldEqual, "req-1")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters a message", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(strings.Contains(out, "hidden"), ShouldBeFalse)
				So(out, ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}
