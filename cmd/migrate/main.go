// Command migrate applies the embedded SQLite migrations and reports or
// rolls back schema versions.
//
//	DB_PATH=sewa.db migrate            # apply pending, print versions
//	DB_PATH=sewa.db migrate -rollback 1
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"sewa/internal/config"
	"sewa/internal/db"
	"sewa/internal/logger"
)

func main() {
	path := flag.String("db", "", "SQLite path; defaults to DB_PATH")
	rollback := flag.Int("rollback", 0, "number of migrations to roll back")
	flag.Parse()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if _, err := logger.Init(cfg.Env); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	if *path == "" {
		*path = cfg.Database.Path
	}
	if err := run(*path, *rollback, os.Stdout); err != nil {
		logger.L().Fatal("migrate failed", zap.String("db", *path), zap.Error(err))
	}
}

// run opens path (applying pending migrations), rolls back n versions and
// prints the versions that remain applied.
func run(path string, n int, out io.Writer) error {
	if n < 0 {
		return fmt.Errorf("rollback count must not be negative, got %d", n)
	}
	d, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer d.Close()
	for i := 0; i < n; i++ {
		if err := db.RollbackLast(d); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		logger.L().Info("rolled back migration", zap.Int("step", i+1))
	}
	versions, err := db.AppliedVersions(d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "applied versions: %v\n", versions)
	return err
}
