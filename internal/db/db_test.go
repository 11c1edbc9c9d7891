package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/config"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance", "kasse.db")

	gdb, err := OpenSQLite(path)
	require.NoError(t, err)

	assertSingleActiveEvent(t, gdb)
}

func TestOpen_SQLiteDriver(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	gdb, err := Open(&config.AppConfig{
		Database: &config.DatabaseConfig{Driver: "sqlite"},
		SQLite:   &config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "kasse.db")},
	})
	require.NoError(t, err)

	assert.True(t, gdb.Migrator().HasTable(&dao.Event{}))
	assert.True(t, gdb.Migrator().HasTable(&dao.ShotLog{}))
}

// TestOpenPostgres runs the schema against a real postgres container. It is
// skipped when no docker daemon is reachable.
func TestOpenPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=kasse",
			"POSTGRES_PASSWORD=kasse",
			"POSTGRES_DB=kasse",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(120)

	url := fmt.Sprintf("postgres://kasse:kasse@%s/kasse?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var gdb *gorm.DB
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		var err error
		gdb, err = OpenPostgresWithURL(url)
		return err
	})
	require.NoError(t, err)

	assertSingleActiveEvent(t, gdb)

	ctx := context.Background()
	teams := dao.NewTeamDAO(gdb)
	event, err := dao.NewEventDAO(gdb).Insert(ctx, dao.Event{Name: "pg", ShotcounterEnabled: true})
	require.NoError(t, err)

	_, err = teams.Insert(ctx, dao.Team{EventID: event.ID, Name: "Alpha"})
	require.NoError(t, err)
	_, err = teams.Insert(ctx, dao.Team{EventID: event.ID, Name: "Alpha"})
	assert.ErrorIs(t, err, dao.ErrTeamNameExists)
}

func assertSingleActiveEvent(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	// the partial index rejects a second active row even without the dao
	first := dao.Event{Name: "a"}
	second := dao.Event{Name: "b"}
	require.NoError(t, gdb.Create(&first).Error)
	require.NoError(t, gdb.Create(&second).Error)

	require.NoError(t, gdb.Model(&first).Update("is_active", true).Error)
	assert.Error(t, gdb.Model(&second).Update("is_active", true).Error)
}
