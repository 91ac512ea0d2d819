package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// AliasMarkerFile mirrors the marker file name used by folder-based aliases.
const AliasMarkerFile = "alias.json"

// AliasDocument is the on-disk alias shape used by fixtures.
type AliasDocument struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// WriteAliasDir creates <parent>/<dirName>.alias/alias.json and returns
// the folder path.
func WriteAliasDir(t *testing.T, parent, dirName, name, target string) string {
	t.Helper()
	dir := filepath.Join(parent, dirName+".alias")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	WriteAliasFile(t, filepath.Join(dir, AliasMarkerFile), name, target)
	return dir
}

// WriteAliasFile writes an alias document to path.
func WriteAliasFile(t *testing.T, path, name, target string) {
	t.Helper()
	data, err := json.MarshalIndent(AliasDocument{Name: name, Target: target}, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadAliasFile reads an alias document from path.
func ReadAliasFile(t *testing.T, path string) AliasDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc AliasDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}
