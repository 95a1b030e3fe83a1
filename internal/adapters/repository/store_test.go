package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar-custom.json")
	return NewFileStore(path, WithLogger(logger.Nop())), path
}

func TestFileStoreLenientLoad(t *testing.T) {
	Convey("Given a file store", t, func() {
		store, path := newTestStore(t)
		ctx := context.Background()

		Convey("When the file does not exist", func() {
			events, err := store.Load(ctx)

			Convey("Then it loads an empty collection", func() {
				So(err, ShouldBeNil)
				So(events, ShouldNotBeNil)
				So(events, ShouldBeEmpty)
			})
		})

		for name, content := range map[string]string{
			"empty":       "",
			"whitespace":  "  \n\t",
			"invalid":     "{not json",
			"object":      `{"id":"a","title":"T"}`,
			"null":        "null",
			"number":      "42",
			"wrong types": `[{"id": 1}]`,
		} {
			Convey("When the file is "+name, func() {
				So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)
				events, err := store.Load(ctx)

				Convey("Then it degrades to an empty collection", func() {
					So(err, ShouldBeNil)
					So(events, ShouldBeEmpty)
				})
			})
		}

		Convey("When the file repeats an id", func() {
			content := `[{"id":"a","title":"first","start":"S"},{"id":"b","title":"B","start":"S"},{"id":"a","title":"second","start":"S"}]`
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)
			events, err := store.Load(ctx)

			Convey("Then the first record with that id wins", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
				So(events[0].Title, ShouldEqual, "first")
				So(events[1].ID, ShouldEqual, "b")
			})
		})
	})
}

func TestFileStoreSave(t *testing.T) {
	Convey("Given a file store with two events", t, func() {
		store, path := newTestStore(t)
		ctx := context.Background()
		events := []model.CustomEvent{
			{ID: "a", Title: "Gym", Start: "2024-06-01T10:00:00Z", Category: "perso", BackgroundColor: "#3b82f6", BorderColor: "#3b82f6"},
			{ID: "b", Title: "Dentist", Start: "2024-06-02T09:00:00Z", End: "2024-06-02T09:30:00Z"},
		}
		So(store.Save(ctx, events), ShouldBeNil)

		Convey("Then loading returns the same content in order", func() {
			got, err := store.Load(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, events)
		})

		Convey("Then save(load()) leaves the content unchanged", func() {
			first, _ := store.Load(ctx)
			So(store.Save(ctx, first), ShouldBeNil)
			second, _ := store.Load(ctx)
			So(second, ShouldResemble, first)
		})

		Convey("Then no temp file is left next to the collection", func() {
			entries, err := os.ReadDir(filepath.Dir(path))
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Name(), ShouldEqual, "calendar-custom.json")
		})

		Convey("When the final rename fails", func() {
			store.file.rename = func(string, string) error { return errors.New("disk says no") }
			err := store.Save(ctx, []model.CustomEvent{{ID: "c", Title: "Lost", Start: "S"}})

			Convey("Then the error is a persist failure", func() {
				So(errors.Is(err, ErrPersist), ShouldBeTrue)
			})

			Convey("And the previous content is still loaded", func() {
				got, _ := store.Load(ctx)
				So(got, ShouldResemble, events)
			})

			Convey("And the temp file is cleaned up", func() {
				entries, _ := os.ReadDir(filepath.Dir(path))
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When saving an empty collection", func() {
			So(store.Save(ctx, nil), ShouldBeNil)

			Convey("Then the file holds an empty array", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "[]\n")
			})
		})
	})
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	Convey("Given a store path below missing directories", t, func() {
		path := filepath.Join(t.TempDir(), "public", "data", "calendar-custom.json")
		store := NewFileStore(path, WithLogger(logger.Nop()), WithFileMode(0o600))

		Convey("When saving", func() {
			So(store.Save(context.Background(), []model.CustomEvent{{ID: "a", Title: "T", Start: "S"}}), ShouldBeNil)

			Convey("Then the directories and file exist with the configured mode", func() {
				info, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
				So(store.Path(), ShouldEqual, path)
			})
		})
	})
}

func TestSnapshotStore(t *testing.T) {
	Convey("Given a fixtures snapshot store", t, func() {
		path := filepath.Join(t.TempDir(), "calendar-barcelona.json")
		snap := NewSnapshotStore(model.SourceFixtures, path, WithLogger(logger.Nop()))
		ctx := context.Background()

		Convey("When nothing was fetched yet", func() {
			got, err := snap.Load(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
			So(snap.Source(), ShouldEqual, model.SourceFixtures)
		})

		Convey("When a snapshot is replaced twice", func() {
			first := []model.MatchEvent{{Title: "A vs B", Start: "2024-06-01T20:00:00+02:00"}}
			second := []model.MatchEvent{
				{Title: "C vs D", Start: "2024-06-08T20:00:00+02:00", Team1: model.Team{ID: 529, Name: "C"}},
				{Title: "E vs F", Start: "2024-06-15T20:00:00+02:00"},
			}
			So(snap.Replace(ctx, first), ShouldBeNil)
			So(snap.Replace(ctx, second), ShouldBeNil)

			Convey("Then only the latest snapshot is visible", func() {
				got, err := snap.Load(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, second)
			})
		})
	})
}
