package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"outreach/internal/config"
	"outreach/internal/db"
	"outreach/internal/engine"
	"outreach/internal/migrate"
)

// Workspace is an opened workspace: its database, config and engine.
type Workspace struct {
	Dir    string
	DB     *sql.DB
	Config *config.Config
	Engine engine.Engine
}

// Open migrates the workspace database, reads outreach.yml and seeds the
// default state if nothing has been saved yet.
func Open(ctx context.Context, dir string) (*Workspace, error) {
	if dir == "" {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	eng := engine.New(conn, cfg)
	if _, err := eng.EnsureSeeded(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &Workspace{Dir: dir, DB: conn, Config: cfg, Engine: eng}, nil
}

func (w *Workspace) Close() error {
	if w == nil || w.DB == nil {
		return nil
	}
	return w.DB.Close()
}

// LoadEnv reads KEY=value pairs from the workspace .env file into the
// process environment. Variables already set win. A missing file is not an
// error.
func LoadEnv(dir string) error {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Init writes a default outreach.yml unless one exists and opens the
// workspace. It reports whether the config file was created.
func Init(ctx context.Context, dir string) (*Workspace, bool, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, false, err
	}
	created := false
	path := config.Path(dir)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
			return nil, false, fmt.Errorf("write config: %w", err)
		}
		created = true
	} else if err != nil {
		return nil, false, err
	}
	ws, err := Open(ctx, dir)
	if err != nil {
		return nil, false, err
	}
	return ws, created, nil
}
