// Command migrate applies the portal's schema migrations.
// Usage: go run ./cmd/migrate [-path dir] up|down|steps N|force V|version
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"clientportal/internal/config"
)

const usage = "Usage: migrate [-path dir] up|down|steps N|force V|version"

// migrator is the part of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
}

type command struct {
	name string
	arg  int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir := flag.String("path", cfg.DB.MigrationsPath, "directory holding the migration files")
	flag.Usage = func() { fmt.Fprintln(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		flag.Usage()
		return err
	}

	m, err := migrate.New(sourceURL(*dir), cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	msg, err := apply(m, cmd)
	if err != nil {
		return err
	}
	log.Println(msg)
	return nil
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}
	cmd := command{name: args[0]}
	switch cmd.name {
	case "up", "down", "version":
		return cmd, nil
	case "steps", "force":
		if len(args) < 2 {
			return command{}, fmt.Errorf("%s requires a number argument", cmd.name)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("invalid %s argument %q: %w", cmd.name, args[1], err)
		}
		cmd.arg = n
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command: %s", cmd.name)
	}
}

// sourceURL turns a migrations directory into a file source URL. Relative
// directories are resolved against the working directory.
func sourceURL(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir)
}

func apply(m migrator, cmd command) (string, error) {
	switch cmd.name {
	case "up":
		if err := ignoreNoChange(m.Up()); err != nil {
			return "", fmt.Errorf("migration up failed: %w", err)
		}
		return "migrations applied successfully", nil
	case "down":
		if err := ignoreNoChange(m.Down()); err != nil {
			return "", fmt.Errorf("migration down failed: %w", err)
		}
		return "migrations reverted successfully", nil
	case "steps":
		if err := ignoreNoChange(m.Steps(cmd.arg)); err != nil {
			return "", fmt.Errorf("migration steps failed: %w", err)
		}
		return fmt.Sprintf("applied %d migration steps", cmd.arg), nil
	case "force":
		if err := m.Force(cmd.arg); err != nil {
			return "", fmt.Errorf("force version failed: %w", err)
		}
		return fmt.Sprintf("forced version %d", cmd.arg), nil
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return "version: none", nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to get version: %w", err)
		}
		return fmt.Sprintf("version: %d, dirty: %v", version, dirty), nil
	}
	return "", fmt.Errorf("unknown command: %s", cmd.name)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
