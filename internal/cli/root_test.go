package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Ilakiancs/StockSage/internal/config"
)

func TestVersionCommandSkipsDependencyInit(t *testing.T) {
	dir := t.TempDir()

	rootCmd := NewRootCmd(config.Default(), zerolog.Nop())
	rootCmd.SetArgs([]string{"version", "--config", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}

	dbPath := filepath.Join(dir, "stocksage.db")
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Errorf("version command created the database at %s (stat err = %v)", dbPath, err)
	}
}
