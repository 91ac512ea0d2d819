package types

import (
	"context"
	"encoding/json"
)

// PluginMetadata is the static descriptor a host uses for discovery and display.
type PluginMetadata struct {
	ID          PluginID `json:"id"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
}

// StructureKind describes how an artifact is laid out on disk.
type StructureKind string

const (
	// StructureStandalone is a single file.
	StructureStandalone StructureKind = "standalone"
	// StructureFolderBased is a folder recognized by a marker file it contains.
	StructureFolderBased StructureKind = "folder_based"
)

// FileStructure describes the on-disk shape of a file type.
type FileStructure struct {
	Kind StructureKind `json:"kind"`
	// MarkerFile is the fixed file name that identifies a folder-based artifact.
	MarkerFile string `json:"marker_file,omitempty"`
	// TemplateStructure lists extra paths created alongside the marker file.
	TemplateStructure []string `json:"template_structure,omitempty"`
}

// FileTypeDefinition declares a file shape a plugin's editors can open.
type FileTypeDefinition struct {
	ID             FileTypeID      `json:"id"`
	Extension      string          `json:"extension"`
	DisplayName    string          `json:"display_name"`
	Icon           string          `json:"icon,omitempty"`
	Color          uint32          `json:"color,omitempty"`
	Structure      FileStructure   `json:"structure"`
	DefaultContent json.RawMessage `json:"default_content,omitempty"`
	Categories     []string        `json:"categories,omitempty"`
}

// EditorMetadata declares an editor and the file types it supports.
type EditorMetadata struct {
	ID                 EditorID     `json:"id"`
	DisplayName        string       `json:"display_name"`
	SupportedFileTypes []FileTypeID `json:"supported_file_types"`
}

// Supports reports whether the editor declares the given file type.
func (m EditorMetadata) Supports(ft FileTypeID) bool {
	for _, s := range m.SupportedFileTypes {
		if s == ft {
			return true
		}
	}
	return false
}

// EditorPlugin is the entry point a host invokes.
type EditorPlugin interface {
	Metadata() PluginMetadata
	FileTypes() []FileTypeDefinition
	Editors() []EditorMetadata

	// CreateEditor builds an editor for filePath. The host receives a shared
	// display handle and a non-owning control handle; the plugin keeps
	// ownership of everything backing them.
	CreateEditor(ctx context.Context, editorID EditorID, filePath string, rc RenderContext) (DisplayView, EditorInstance, error)

	OnLoad(ctx context.Context)
	OnUnload(ctx context.Context) int
}
