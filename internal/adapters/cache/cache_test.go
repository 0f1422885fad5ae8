package cache_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/netstats/internal/adapters/cache"
	"github.com/okian/netstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleScore(id string) model.GameScore {
	s := model.GameScore{GameID: id, Source: model.SourceComputed}
	s.Quarters[0] = model.Tally{For: 8, Against: 6}
	s.Final = s.SumQuarters()
	return s
}

func TestKeys(t *testing.T) {
	Convey("Given batch keys", t, func() {
		Convey("Then order and duplicates do not matter", func() {
			So(cache.BatchKey([]string{"b", "a", "b"}), ShouldEqual, cache.BatchKey([]string{"a", "b"}))
			So(cache.BatchKey([]string{"a"}), ShouldNotEqual, cache.GameKey("a"))
		})
	})
}

func TestScoreCache(t *testing.T) {
	Convey("Given a score cache over a memory backend", t, func() {
		ctx := context.Background()
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		mem := cache.NewMemory(time.Minute, cache.WithClock(func() time.Time { return now }))
		c := cache.NewScoreCache(mem)

		Convey("When nothing is stored", func() {
			got, err := c.Get(ctx, "G1")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})

		Convey("When a score is stored", func() {
			So(c.Set(ctx, sampleScore("G1")), ShouldBeNil)
			got, err := c.Get(ctx, "G1")

			Convey("Then it comes back tagged as cached", func() {
				So(err, ShouldBeNil)
				So(got.Final, ShouldResemble, model.Tally{For: 8, Against: 6})
				So(got.Source, ShouldEqual, model.SourceCache)
			})

			Convey("Then it expires after the ttl", func() {
				now = now.Add(time.Minute)
				got, err := c.Get(ctx, "G1")
				So(err, ShouldBeNil)
				So(got, ShouldBeNil)
				So(mem.Len(), ShouldEqual, 0)
			})

			Convey("Then it can be invalidated", func() {
				So(c.Invalidate(ctx, "G1"), ShouldBeNil)
				got, _ := c.Get(ctx, "G1")
				So(got, ShouldBeNil)
			})
		})

		Convey("When a batch is stored", func() {
			scores := []model.GameScore{sampleScore("G1"), sampleScore("G2")}
			So(c.SetBatch(ctx, []string{"G2", "G1"}, scores), ShouldBeNil)

			Convey("Then the same set in any order hits", func() {
				got, ok, err := c.GetBatch(ctx, []string{"G1", "G2"})
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(got, ShouldHaveLength, 2)
				So(got[1].Source, ShouldEqual, model.SourceCache)
			})

			Convey("Then a different set misses", func() {
				_, ok, err := c.GetBatch(ctx, []string{"G1"})
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an entry is corrupt", func() {
			So(mem.Set(ctx, cache.GameKey("G9"), []byte("{not json")), ShouldBeNil)
			_, err := c.Get(ctx, "G9")
			So(errors.Is(err, cache.ErrCorruptEntry), ShouldBeTrue)
		})
	})

	Convey("Given a nop backend", t, func() {
		c := cache.NewScoreCache(cache.Nop{})
		So(c.Set(context.Background(), sampleScore("G1")), ShouldBeNil)
		got, err := c.Get(context.Background(), "G1")
		So(err, ShouldBeNil)
		So(got, ShouldBeNil)
		So(c.Close(), ShouldBeNil)
	})
}

func TestRedis(t *testing.T) {
	url := os.Getenv("NETSTATS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("NETSTATS_TEST_REDIS_URL not set")
	}
	Convey("Given a redis backend", t, func() {
		ctx := context.Background()
		r, err := cache.NewRedis(ctx, url, time.Minute)
		So(err, ShouldBeNil)
		c := cache.NewScoreCache(r)
		defer func() { _ = c.Close() }()

		So(c.Set(ctx, sampleScore("redis-G1")), ShouldBeNil)
		got, err := c.Get(ctx, "redis-G1")
		So(err, ShouldBeNil)
		So(got.Final.For, ShouldEqual, 8)
		So(c.Invalidate(ctx, "redis-G1"), ShouldBeNil)
	})

	Convey("Given an unparseable url", t, func() {
		_, err := cache.NewRedis(context.Background(), "http://nope", time.Minute)
		So(err, ShouldNotBeNil)
	})
}
