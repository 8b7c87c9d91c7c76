package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FormatJSON selects JSON encoding for snapshot metadata.
	FormatJSON = "json"
	// FormatYAML selects YAML encoding for snapshot metadata.
	FormatYAML = "yaml"

	metadataJSONFileNameConstant         = "metadata.json"
	metadataYAMLFileNameConstant         = "metadata.yaml"
	defaultSnapshotNamePrefixConstant    = "dev-config-snapshot-"
	snapshotTimestampLayoutConstant      = "20060102-150405"
	metadataTimestampLayoutConstant      = time.RFC3339
	metadataFilePermissionsConstant      = 0o644
	snapshotDirectoryPermissionsConstant = 0o755

	unsupportedFormatTemplateConstant = "unsupported metadata format %q"
	metadataMissingTemplateConstant   = "no metadata file found in %s"
	metadataEncodeTemplateConstant    = "encode metadata: %w"
	metadataWriteTemplateConstant     = "write metadata: %w"
	metadataReadTemplateConstant      = "read metadata: %w"
	metadataDecodeTemplateConstant    = "decode metadata: %w"
)

// Options records the invocation options a snapshot was captured with.
type Options struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Format  string   `json:"format" yaml:"format"`
	Verbose bool     `json:"verbose" yaml:"verbose"`
}

// Metadata describes a captured snapshot.
type Metadata struct {
	SnapshotName string   `json:"snapshot_name" yaml:"snapshot_name"`
	CreatedAt    string   `json:"created_at" yaml:"created_at"`
	Options      Options  `json:"options" yaml:"options"`
	Providers    []string `json:"providers" yaml:"providers"`
}

// NewMetadata assembles metadata for a capture run started at the supplied time.
func NewMetadata(snapshotName string, createdAt time.Time, options Options, providerNames []string) Metadata {
	return Metadata{
		SnapshotName: snapshotName,
		CreatedAt:    createdAt.Format(metadataTimestampLayoutConstant),
		Options:      options,
		Providers:    providerNames,
	}
}

// DefaultSnapshotName synthesizes a snapshot name from the supplied time.
func DefaultSnapshotName(referenceTime time.Time) string {
	return defaultSnapshotNamePrefixConstant + referenceTime.Format(snapshotTimestampLayoutConstant)
}

// WriteMetadata persists metadata into the snapshot directory using the
// requested format.
func WriteMetadata(snapshotDirectory string, metadata Metadata, format string) error {
	var (
		encodedMetadata  []byte
		metadataFileName string
		encodingError    error
	)
	switch format {
	case FormatYAML:
		encodedMetadata, encodingError = yaml.Marshal(metadata)
		metadataFileName = metadataYAMLFileNameConstant
	case FormatJSON, "":
		encodedMetadata, encodingError = json.MarshalIndent(metadata, "", "  ")
		encodedMetadata = append(encodedMetadata, '\n')
		metadataFileName = metadataJSONFileNameConstant
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}
	if encodingError != nil {
		return fmt.Errorf(metadataEncodeTemplateConstant, encodingError)
	}
	metadataPath := filepath.Join(snapshotDirectory, metadataFileName)
	if writeError := os.WriteFile(metadataPath, encodedMetadata, metadataFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(metadataWriteTemplateConstant, writeError)
	}
	return nil
}

// LoadMetadata reads metadata from a snapshot directory, accepting either the
// JSON or the YAML form.
func LoadMetadata(snapshotDirectory string) (Metadata, error) {
	jsonPath := filepath.Join(snapshotDirectory, metadataJSONFileNameConstant)
	if metadataContent, readError := os.ReadFile(jsonPath); readError == nil {
		var metadata Metadata
		if decodeError := json.Unmarshal(metadataContent, &metadata); decodeError != nil {
			return Metadata{}, fmt.Errorf(metadataDecodeTemplateConstant, decodeError)
		}
		return metadata, nil
	} else if !os.IsNotExist(readError) {
		return Metadata{}, fmt.Errorf(metadataReadTemplateConstant, readError)
	}
	yamlPath := filepath.Join(snapshotDirectory, metadataYAMLFileNameConstant)
	if metadataContent, readError := os.ReadFile(yamlPath); readError == nil {
		var metadata Metadata
		if decodeError := yaml.Unmarshal(metadataContent, &metadata); decodeError != nil {
			return Metadata{}, fmt.Errorf(metadataDecodeTemplateConstant, decodeError)
		}
		return metadata, nil
	} else if !os.IsNotExist(readError) {
		return Metadata{}, fmt.Errorf(metadataReadTemplateConstant, readError)
	}
	return Metadata{}, fmt.Errorf(metadataMissingTemplateConstant, snapshotDirectory)
}
