package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Overland-East-Bay/club-portal-api/internal/platform/config"
)

var envKeys = []string{
	"CLUBHUB_CONFIG", "CLUBHUB_ADDR", "CLUBHUB_AUTH_MODE", "CLUBHUB_STORAGE_BACKEND",
	"CLUBHUB_JWT_ISSUER", "CLUBHUB_JWT_AUDIENCE", "CLUBHUB_JWT_JWKS_URL", "CLUBHUB_JWT_CLOCK_SKEW",
	"CLUBHUB_SESSION_CACHE_SIZE", "CLUBHUB_SEED_DEMO",
}

func clearEnv() {
	for _, k := range envKeys {
		_ = os.Unsetenv(k)
	}
}

func setenv(k, v string) { _ = os.Setenv(k, v) }

func TestLoad(t *testing.T) {
	t.Cleanup(clearEnv)

	convey.Convey("Given the config loader", t, func() {
		// Every leaf path re-runs this block, so start from a clean environment.
		clearEnv()

		convey.Convey("When only dev auth is configured", func() {
			setenv("CLUBHUB_AUTH_MODE", "dev")

			cfg, err := config.Load()

			convey.Convey("Then the defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.StorageMemory)
				convey.So(cfg.SessionCacheSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.MutationTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.JWT().ClockSkew, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When env vars override defaults", func() {
			setenv("CLUBHUB_AUTH_MODE", "jwt")
			setenv("CLUBHUB_JWT_ISSUER", "https://issuer.test")
			setenv("CLUBHUB_JWT_AUDIENCE", "club-portal")
			setenv("CLUBHUB_JWT_JWKS_URL", "https://issuer.test/jwks")
			setenv("CLUBHUB_JWT_CLOCK_SKEW", "5s")
			setenv("CLUBHUB_SESSION_CACHE_SIZE", "42")
			setenv("CLUBHUB_SEED_DEMO", "true")

			cfg, err := config.Load()

			convey.Convey("Then they are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.JWT().Issuer, convey.ShouldEqual, "https://issuer.test")
				convey.So(cfg.JWT().ClockSkew, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.SessionCacheSize, convey.ShouldEqual, 42)
				convey.So(cfg.SeedDemo, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			body := "addr: \":9999\"\nauth_mode: dev\nstorage_backend: postgres\ndatabase_url: postgres://localhost/clubs\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			setenv("CLUBHUB_CONFIG", path)
			setenv("CLUBHUB_ADDR", ":7000")

			cfg, err := config.Load()

			convey.Convey("Then env still wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.StoragePostgres)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://localhost/clubs")
			})
		})

		convey.Convey("When jwt auth lacks its settings", func() {
			setenv("CLUBHUB_AUTH_MODE", "jwt")

			_, err := config.Load()

			convey.Convey("Then it is rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When postgres has no database url", func() {
			setenv("CLUBHUB_AUTH_MODE", "dev")
			setenv("CLUBHUB_STORAGE_BACKEND", "postgres")

			_, err := config.Load()

			convey.Convey("Then it is rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
