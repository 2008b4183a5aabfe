package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/repository"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

func TestMemoryStore_Snapshots(t *testing.T) {
	Convey("Given an empty in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		ts := time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)

		Convey("When no snapshot has been saved", func() {
			Convey("Then Exists should be false", func() {
				ok, err := store.Exists(ctx, scores.Race, ts)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})

			Convey("And LatestSnapshot should report not found", func() {
				_, err := store.LatestSnapshot(ctx, scores.Race)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And LatestRecords should be empty without error", func() {
				recs, err := store.LatestRecords(ctx, scores.Race, "mapA")
				So(err, ShouldBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When saving a snapshot", func() {
			snap := model.NewSnapshot(scores.Race, ts, ts.Add(time.Hour))
			snap.AppendRecord("mapA", 0, model.Entry{Rank: 1, Score: 40110, Login: "ayoub"})
			snap.AppendRecord("mapB", 0, model.Entry{Rank: 1, Score: 39000, Login: "carlos"})
			So(store.Save(ctx, snap), ShouldBeNil)

			Convey("Then the key becomes visible to Exists", func() {
				ok, err := store.Exists(ctx, scores.Race, ts)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("And saving the same (category, createdAt) again conflicts", func() {
				dup := model.NewSnapshot(scores.Race, ts, ts.Add(2*time.Hour))
				So(errors.Is(store.Save(ctx, dup), repository.ErrConflict), ShouldBeTrue)
				So(store.SnapshotCount(scores.Race), ShouldEqual, 1)
			})

			Convey("And the same timestamp under another category does not conflict", func() {
				other := model.NewSnapshot(scores.Puzzle, ts, ts.Add(time.Hour))
				So(store.Save(ctx, other), ShouldBeNil)
			})

			Convey("And LatestRecords filters by map", func() {
				recs, err := store.LatestRecords(ctx, scores.Race, "mapA")
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Player.Login, ShouldEqual, "ayoub")
			})

			Convey("And mutating the saved snapshot afterwards does not leak in", func() {
				snap.Records[0].Score = 1
				recs, err := store.LatestRecords(ctx, scores.Race, "mapA")
				So(err, ShouldBeNil)
				So(recs[0].Score, ShouldEqual, 40110)
			})
		})

		Convey("When several snapshots exist for a category", func() {
			older := model.NewSnapshot(scores.Race, ts, ts)
			older.AppendRecord("mapA", 0, model.Entry{Rank: 1, Score: 41000, Login: "ayoub"})
			newer := model.NewSnapshot(scores.Race, ts.Add(24*time.Hour), ts.Add(24*time.Hour))
			newer.AppendRecord("mapA", 0, model.Entry{Rank: 1, Score: 40110, Login: "ayoub"})

			// Insert out of order: the store keeps them sorted by CreatedAt.
			So(store.Save(ctx, newer), ShouldBeNil)
			So(store.Save(ctx, older), ShouldBeNil)

			Convey("Then LatestSnapshot returns the most recent one", func() {
				latest, err := store.LatestSnapshot(ctx, scores.Race)
				So(err, ShouldBeNil)
				So(latest.CreatedAt, ShouldEqual, ts.Add(24*time.Hour))
			})

			Convey("And LatestRecords reads from the most recent snapshot with data", func() {
				recs, err := store.LatestRecords(ctx, scores.Race, "mapA")
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Score, ShouldEqual, 40110)
			})
		})

		Convey("When the most recent snapshot has no records for a map", func() {
			withData := model.NewSnapshot(scores.Race, ts, ts)
			withData.AppendRecord("mapA", 0, model.Entry{Rank: 1, Score: 40110, Login: "ayoub"})
			empty := model.NewSnapshot(scores.Race, ts.Add(24*time.Hour), ts.Add(24*time.Hour))
			empty.NoChanges = true

			So(store.Save(ctx, withData), ShouldBeNil)
			So(store.Save(ctx, empty), ShouldBeNil)

			Convey("Then LatestRecords falls back to the older snapshot", func() {
				recs, err := store.LatestRecords(ctx, scores.Race, "mapA")
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Score, ShouldEqual, 40110)
			})
		})
	})
}

func TestMemoryStore_Directory(t *testing.T) {
	Convey("Given an in-memory directory", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When resolving players twice with a nickname change", func() {
			So(store.ResolvePlayers(ctx, []model.PlayerRef{{Login: "ayoub", Nickname: "Ayoub"}}), ShouldBeNil)
			So(store.ResolvePlayers(ctx, []model.PlayerRef{{Login: "ayoub", Nickname: "$f00Ayoub"}}), ShouldBeNil)

			Convey("Then resolution should not fail and later saves still work", func() {
				So(store.ResolvePlayers(ctx, nil), ShouldBeNil)
			})
		})

		Convey("When resolving a player with an empty nickname after a named one", func() {
			So(store.ResolvePlayers(ctx, []model.PlayerRef{{Login: "benny", Nickname: "Benny"}}), ShouldBeNil)

			Convey("Then the empty nickname should not clobber the stored one", func() {
				So(store.ResolvePlayers(ctx, []model.PlayerRef{{Login: "benny", Nickname: ""}}), ShouldBeNil)
			})
		})

		Convey("When resolving maps", func() {
			refs := []model.MapRef{
				{UID: "RaceA1", Name: "Race A-1", Mode: scores.LowerIsBetter},
				{UID: "StuntsA1", Name: "Stunts A-1", Mode: scores.HigherIsBetter},
			}

			Convey("Then the upsert should accept new and repeated references", func() {
				So(store.ResolveMaps(ctx, refs), ShouldBeNil)
				So(store.ResolveMaps(ctx, refs), ShouldBeNil)
			})
		})
	})
}
