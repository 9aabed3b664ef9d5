package clustergen

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ExportFileName is the name of the exported spec document
const ExportFileName = "generation_specs.json"

// EncodeSpecs writes the spec store as one JSON object keyed by cluster id, indented with
// two spaces
func EncodeSpecs(w io.Writer, specs map[ClusterID]GenerationSpec) error {
	if specs == nil {
		specs = map[ClusterID]GenerationSpec{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(specs); err != nil {
		return fmt.Errorf("failed to encode specs: %w", err)
	}
	return nil
}

// WriteSpecs writes generation_specs.json into dir and returns its path
func WriteSpecs(dir string, specs map[ClusterID]GenerationSpec) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	var buf bytes.Buffer
	if err := EncodeSpecs(&buf, specs); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write specs file: %w", err)
	}
	logger.Info("💾 Specs exported", zap.String("path", path), zap.Int("clusters", len(specs)))
	return path, nil
}

// initExportDB opens the SQLite snapshot database and creates its table
func initExportDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS generation_specs (
		cluster_id TEXT PRIMARY KEY,
		approach TEXT NOT NULL,
		spec_json TEXT NOT NULL,
		exported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_approach ON generation_specs(approach);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
		return nil, err
	}

	return db, nil
}

// ExportSpecsSQLite replaces the snapshot stored at path with specs
func ExportSpecsSQLite(path string, specs map[ClusterID]GenerationSpec) error {
	db, err := initExportDB(path)
	if err != nil {
		return fmt.Errorf("failed to initialize export database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("DELETE FROM generation_specs"); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	ids := make([]ClusterID, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	insertSQL := `
	INSERT INTO generation_specs (cluster_id, approach, spec_json)
	VALUES (?, ?, ?)
	`
	for _, id := range ids {
		spec := specs[id]
		specJSON, err := json.Marshal(spec)
		if err != nil {
			return fmt.Errorf("failed to marshal spec for cluster %s: %w", id, err)
		}
		if _, err := tx.Exec(insertSQL, id.String(), string(spec.Approach), string(specJSON)); err != nil {
			return fmt.Errorf("failed to insert spec for cluster %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	logger.Info("🗄️  Specs snapshot written", zap.String("path", path), zap.Int("clusters", len(ids)))
	return nil
}

// LoadSpecsSQLite reads a snapshot written by ExportSpecsSQLite
func LoadSpecsSQLite(path string) (map[ClusterID]GenerationSpec, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	rows, err := db.Query("SELECT cluster_id, spec_json FROM generation_specs")
	if err != nil {
		return nil, fmt.Errorf("failed to query specs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn("Failed to close rows", zap.Error(err))
		}
	}()

	specs := make(map[ClusterID]GenerationSpec)
	for rows.Next() {
		var rawID, specJSON string
		if err := rows.Scan(&rawID, &specJSON); err != nil {
			return nil, err
		}
		id, ok := ParseClusterID(rawID)
		if !ok {
			return nil, fmt.Errorf("snapshot row has an empty cluster id")
		}
		var spec GenerationSpec
		if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
			return nil, fmt.Errorf("failed to parse spec for cluster %s: %w", rawID, err)
		}
		specs[id] = spec
	}
	return specs, rows.Err()
}
