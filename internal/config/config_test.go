package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/agenda/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it follows the Barcelona and LEC setup", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FootballTeamID, convey.ShouldEqual, 529)
			convey.So(cfg.FootballNext, convey.ShouldEqual, 50)
			convey.So(cfg.Timezone, convey.ShouldEqual, "Europe/Paris")
			convey.So(cfg.EsportsTeamCodes, convey.ShouldResemble, []string{"G2", "KC"})
			convey.So(cfg.RefreshCron, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then file names resolve under the data dir", func() {
			convey.So(cfg.CustomEventsPath(), convey.ShouldEqual, filepath.Join("public", "calendar-custom.json"))
			convey.So(cfg.FixturesPath(), convey.ShouldEqual, filepath.Join("public", "calendar-barcelona.json"))
			convey.So(cfg.SchedulePath(), convey.ShouldEqual, filepath.Join("public", "calendar-esport.json"))
		})

		convey.Convey("Then absolute file names are kept", func() {
			abs := filepath.Join(t.TempDir(), "custom.json")
			cfg.CustomEventsFile = abs
			convey.So(cfg.CustomEventsPath(), convey.ShouldEqual, abs)
		})

		convey.Convey("Then the upstream timeout is in milliseconds", func() {
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("Then an unknown timezone falls back to UTC", func() {
			cfg.Timezone = "Mars/Olympus"
			convey.So(cfg.Location(), convey.ShouldEqual, time.UTC)
		})
	})
}
