package domain

import "time"

// ManifestFileName is written last into a staged package; its presence marks a complete package.
const ManifestFileName = "ferry-manifest.json"

// Manifest describes a finished package.
type Manifest struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Libs        []string       `json:"libs"`
	Files       []ManifestFile `json:"files"`
	ToolchainID string         `json:"toolchain_id,omitzero"`
	Revision    string         `json:"revision,omitzero"`
	Digest      string         `json:"digest"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
}

// ManifestFile is one packaged file, relative to the package root.
type ManifestFile struct {
	Path     string   `json:"path"`
	Category Category `json:"category"`
	Digest   string   `json:"digest"`
}

// BuildRecord is stored after every successful run.
type BuildRecord struct {
	Package     string    `json:"package"`
	Version     string    `json:"version"`
	Revision    string    `json:"revision,omitzero"`
	ToolchainID string    `json:"toolchain_id"`
	Digest      string    `json:"digest"`
	PackageDir  string    `json:"package_dir"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
