package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/infrastructure/sqlite"
	"github.com/zjrosen/spanmark/internal/log"
)

var errNoDocument = errors.New("no document given: pass a file or set document in the config")

// resolveDocument returns the absolute path of the document to work on:
// the first argument, else the configured document.
func resolveDocument(args []string) (string, error) {
	path := cfg.Document
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return "", errNoDocument
	}
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", fmt.Errorf("resolving document path: %w", err)
	}
	return abs, nil
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-chosen document
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

// loadDocument reads and tokenizes path.
func loadDocument(path string) (document.Document, error) {
	text, err := readDocument(path)
	if err != nil {
		return document.Document{}, err
	}
	return document.New(text), nil
}

// openRepository opens the annotation store selected by store.
func openRepository(store config.StoreConfig) (annotations.Repository, error) {
	switch store.Driver {
	case config.DriverMemory:
		log.Debug(log.CatDB, "using in-memory annotation store")
		return annotations.NewMemoryRepository(), nil
	case config.DriverSQLite, "":
		path := expandHome(store.Path)
		if path == "" {
			path = config.DefaultStorePath()
		}
		db, err := sqlite.NewDB(path)
		if err != nil {
			return nil, fmt.Errorf("opening annotation store: %w", err)
		}
		return db.AnnotationRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", store.Driver)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
