package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// MetadataFileName is the session file written next to fetched media.
const MetadataFileName = "metadata.json"

// SessionMetadata is what a fetch remembers for the split that follows it.
type SessionMetadata struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Title  string `json:"title"`

	// Source is the fetched audio file.
	Source string `json:"source,omitempty"`

	// Cover is the fetched thumbnail, empty if none was found.
	Cover string `json:"cover,omitempty"`
}

// SaveMetadata writes meta to dir/metadata.json.
func SaveMetadata(dir string, meta *SessionMetadata) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, MetadataFileName), data, 0644)
}

// LoadMetadata reads dir/metadata.json. It returns nil and no error when the
// file does not exist.
func LoadMetadata(dir string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
