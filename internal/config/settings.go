package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/splitmix/internal/audio"
	ioutils "github.com/handiism/splitmix/internal/io"
	"github.com/handiism/splitmix/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	OutputPath      string `json:"output_path"`
	WorkDir         string `json:"work_dir"`
	Bitrate         int    `json:"bitrate"`
	ContinueOnError bool   `json:"continue_on_error"`

	// External tools
	FFmpegPath string `json:"ffmpeg_path"`
	YtDLPPath  string `json:"ytdlp_path"`

	// File naming
	CoverArtFileNameFormat string `json:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `json:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `json:"cover_art_in_folder_max_size"`
	CoverArtInTagsResize    bool `json:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `json:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG    bool `json:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Tag settings. Artist, album, title and track number are always
	// written; ModifyTags only covers album artist and comments.
	ModifyTags bool `json:"modify_tags"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		OutputPath:      filepath.Join(homeDir, "Music", "splitmix", "{artist}", "{album}"),
		WorkDir:         filepath.Join(os.TempDir(), "splitmix"),
		Bitrate:         audio.DefaultBitrate,
		ContinueOnError: true,

		FFmpegPath: "ffmpeg",
		YtDLPPath:  "yt-dlp",

		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",

		SaveCoverArtInFolder:    false,
		SaveCoverArtInTags:      true,
		CoverArtInFolderResize:  false,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    false,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,
	}
}

// Load reads settings from a JSON file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "splitmix.json"
	}
	return filepath.Join(dir, "splitmix", "settings.json")
}

// OutputDir expands the {artist} and {album} placeholders of OutputPath.
// Placeholder values are sanitized so they cannot add path segments, and cut
// to the file name length limit.
func (s *Settings) OutputDir(meta model.Metadata) string {
	segment := func(v string) string {
		return ioutils.TruncateFileName(ioutils.SanitizeFileName(v), ioutils.MaxFileNameBytes)
	}
	r := strings.NewReplacer(
		"{artist}", segment(meta.Artist),
		"{album}", segment(meta.Album),
	)
	return filepath.Clean(r.Replace(s.OutputPath))
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		CoverArtFileNameFormat: s.CoverArtFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

// ToTagConfig converts settings to the tagger configuration.
func (s *Settings) ToTagConfig() *audio.TagConfig {
	cfg := audio.DefaultTagConfig()
	cfg.ModifyTags = s.ModifyTags
	return cfg
}
