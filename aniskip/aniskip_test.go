package aniskip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marquee-player/marquee/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func serve(status int, body string) (*Client, func()) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))

	return &Client{BaseURL: server.URL, HTTP: server.Client()}, server.Close
}

func TestSkipTimes(t *testing.T) {
	Convey("SkipTimes", t, func() {
		ctx := context.Background()

		Convey("Should read opening and ending intervals", func() {
			client, stop := serve(http.StatusOK, `{
				"found": true,
				"results": [
					{"interval": {"start_time": 60.5, "end_time": 150.5}, "skip_type": "op"},
					{"interval": {"start_time": 1300, "end_time": 1390}, "skip_type": "ed"}
				]
			}`)
			defer stop()

			times, err := client.SkipTimes(ctx, 1535, 1)
			So(err, ShouldBeNil)
			So(times, ShouldResemble, &SkipTimes{
				Opening:  Interval{Start: 60.5, End: 150.5},
				Ending:   Interval{Start: 1300, End: 1390},
				HasIntro: true,
				HasOutro: true,
			})
		})

		Convey("Should return nil when nothing is found", func() {
			client, stop := serve(http.StatusOK, `{"found": false, "results": []}`)
			defer stop()

			times, err := client.SkipTimes(ctx, 999999999, 1)
			So(err, ShouldBeNil)
			So(times, ShouldBeNil)
		})

		Convey("Should degrade gracefully on server errors", func() {
			client, stop := serve(http.StatusInternalServerError, "")
			defer stop()

			times, err := client.SkipTimes(ctx, 1, 1)
			So(err, ShouldBeNil)
			So(times, ShouldBeNil)
		})

		Convey("Should fail on malformed responses", func() {
			client, stop := serve(http.StatusOK, `{"found": tru`)
			defer stop()

			_, err := client.SkipTimes(ctx, 1, 1)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSkipTimesStructure(t *testing.T) {
	Convey("SkipTimes", t, func() {
		Convey("Zero value should have HasIntro and HasOutro as false", func() {
			var st SkipTimes
			So(st.HasIntro, ShouldBeFalse)
			So(st.HasOutro, ShouldBeFalse)
			So(st.Opening.Start, ShouldEqual, 0)
			So(st.Ending.End, ShouldEqual, 0)
		})
	})
}

func TestCached(t *testing.T) {
	Convey("Cached", t, func() {
		ctx := context.Background()
		hits := 0
		found := true

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			if !found {
				_, _ = w.Write([]byte(`{"found": false, "results": []}`))
				return
			}
			_, _ = w.Write([]byte(`{"found": true, "results": [{"interval": {"start_time": 10, "end_time": 100}, "skip_type": "op"}]}`))
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL, HTTP: server.Client()}

		Convey("Should ask the service once per episode", func() {
			first, err := client.Cached(ctx, 9001, 3)
			So(err, ShouldBeNil)
			second, err := client.Cached(ctx, 9001, 3)
			So(err, ShouldBeNil)

			So(hits, ShouldEqual, 1)
			So(second, ShouldResemble, first)
			So(second.Opening, ShouldResemble, Interval{Start: 10, End: 100})
		})

		Convey("Should not remember episodes without data", func() {
			found = false
			_, _ = client.Cached(ctx, 9002, 1)
			times, err := client.Cached(ctx, 9002, 1)

			So(err, ShouldBeNil)
			So(times, ShouldBeNil)
			So(hits, ShouldEqual, 2)
		})
	})
}
