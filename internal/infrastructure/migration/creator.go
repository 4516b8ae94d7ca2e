package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// versionWidth matches 000001_posting_schema
const versionWidth = 6

var migrationHeader = template.Must(template.New("migration").Parse(
	`-- Migration: {{.Name}}{{if .Rollback}} (Rollback){{end}}
-- Created: {{.Created}}
-- Description: {{if .Rollback}}Rollback for {{end}}{{.Description}}
{{- if not .Rollback}}
--
-- Ledger tables are append-only: add columns, never rewrite rows.
{{- end}}

`))

var (
	nameDisallowed = regexp.MustCompile(`[^a-z0-9\s_-]`)
	nameSeparators = regexp.MustCompile(`[\s_-]+`)
)

// MigrationFile is a freshly written up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next numbered up/down pair into dir, creating
// the directory when needed.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}
	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}

	version := fmt.Sprintf("%0*d", versionWidth, nextVersion(existing))
	base := filepath.Join(dir, version+"_"+sanitizeName(name))
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	created := time.Now().Format(time.RFC3339)
	if err := writeHeader(mf.UpPath, mf, created, false); err != nil {
		return nil, err
	}
	if err := writeHeader(mf.DownPath, mf, created, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeHeader(path string, mf *MigrationFile, created string, rollback bool) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return migrationHeader.Execute(f, struct {
		*MigrationFile
		Created  string
		Rollback bool
	}{mf, created, rollback})
}

// sanitizeName lowercases name and joins its words with single underscores,
// dropping anything that is not a letter or digit.
func sanitizeName(name string) string {
	s := nameDisallowed.ReplaceAllString(strings.ToLower(name), "")
	return strings.Trim(nameSeparators.ReplaceAllString(s, "_"), "_")
}

// ListMigrations returns the base names of the up migrations in dir, sorted.
// A missing directory has no migrations.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if base, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok && !e.IsDir() && base != "" {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}

// nextVersion returns one past the highest numeric version prefix.
func nextVersion(baseNames []string) int {
	highest := 0
	for _, name := range baseNames {
		prefix, _, _ := strings.Cut(name, "_")
		if n, err := strconv.Atoi(prefix); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}
