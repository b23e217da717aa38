// Command migrate manages the storefront schema.
//
//	migrate up
//	migrate step -1
//	migrate create add_order_notes
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/jossiefancies/storefront/internal/infrastructure/logger"
	"github.com/jossiefancies/storefront/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type command struct {
	args  string
	help  string
	needs int
	// offline commands never connect to the database
	offline func(dir string, args []string, log *zap.Logger) error
	run     func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var commands = map[string]command{
	"up":   {help: "Apply all pending migrations", run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }},
	"down": {help: "Roll back every migration", run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }},
	"step": {args: "<n>", help: "Apply n migrations, negative n rolls back", needs: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("step count: %w", err)
		}
		return m.Steps(n)
	}},
	"goto": {args: "<version>", help: "Migrate up or down to version", needs: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		return m.GoTo(uint(v))
	}},
	"version": {help: "Show the applied version", run: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		s, err := m.Status()
		if err != nil {
			return err
		}
		log.Info("Schema status", zap.String("status", s.String()))
		return nil
	}},
	"force": {args: "<version>", help: "Record version without migrating (clears dirty)", needs: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		return m.Force(v)
	}},
	"create": {args: "<name>", help: "Write the next up/down file pair", needs: 1, offline: func(dir string, args []string, log *zap.Logger) error {
		mf, err := migration.CreateMigration(dir, args[0])
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	}},
	"list": {help: "List migration files", offline: func(dir string, _ []string, _ *zap.Logger) error {
		files, err := migration.ListMigrations(dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	}},
}

var order = []string{"up", "down", "step", "goto", "version", "force", "create", "list"}

func main() {
	dir := flag.String("path", "", "migrations directory (default ./migrations)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}
	if len(args) < cmd.needs {
		fmt.Fprintf(os.Stderr, "usage: migrate %s %s\n", name, cmd.args)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout", TimeFormat: "15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	path, err := filepath.Abs(migrationsDir(*dir))
	if err != nil {
		log.Fatal("Resolve migrations directory", zap.Error(err))
	}
	log = log.With(zap.String("command", name), zap.String("path", path))

	if cmd.offline != nil {
		err = cmd.offline(path, args, log)
	} else {
		err = online(path, func(m *migration.Migrator) error { return cmd.run(m, args, log) }, log)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

func online(dir string, fn func(*migration.Migrator) error, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("connect %s@%s/%s: %w", cfg.Database.User, cfg.Database.Host, cfg.Database.DBName, err)
	}
	m, err := migration.New(db, dir, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	return errors.Join(fn(m), m.Close())
}

// migrationsDir prefers the flag, then ./migrations, then the repository
// root relative to a binary built into bin/
func migrationsDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	candidates := []string{"migrations"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", "migrations"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "migrations"
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: migrate [flags] <command> [args]")
	fmt.Fprintln(out, "\ncommands:")
	for _, name := range order {
		c := commands[name]
		fmt.Fprintf(out, "  %-18s %s\n", name+" "+c.args, c.help)
	}
	fmt.Fprintln(out, "\nflags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nThe database is read from config.yaml and STOREFRONT_DATABASE_* variables.")
}
