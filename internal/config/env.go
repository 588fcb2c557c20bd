package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SPLITMIX_"

// LoadEnv collects SPLITMIX_* variables from the given .env files and the
// process environment. Missing files are skipped. Process variables win over
// file values, and earlier files win over later ones.
func LoadEnv(files ...string) (map[string]string, error) {
	env := make(map[string]string)

	for i := len(files) - 1; i >= 0; i-- {
		values, err := godotenv.Read(files[i])
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", files[i], err)
		}
		for k, v := range values {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}

	return env, nil
}

// ApplyEnv overrides settings from SPLITMIX_* values. Unknown keys are ignored.
//
//	SPLITMIX_OUTPUT_PATH=/music/{artist}/{album}
//	SPLITMIX_BITRATE=192
//	SPLITMIX_CONTINUE_ON_ERROR=false
func (s *Settings) ApplyEnv(env map[string]string) error {
	for key, value := range env {
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok {
			continue
		}

		var err error
		switch name {
		case "OUTPUT_PATH":
			s.OutputPath = value
		case "WORK_DIR":
			s.WorkDir = value
		case "FFMPEG_PATH":
			s.FFmpegPath = value
		case "YTDLP_PATH":
			s.YtDLPPath = value
		case "PLAYLIST_FORMAT":
			s.PlaylistFormat = strings.ToLower(value)
		case "BITRATE":
			s.Bitrate, err = strconv.Atoi(value)
		case "CONTINUE_ON_ERROR":
			s.ContinueOnError, err = strconv.ParseBool(value)
		case "CREATE_PLAYLIST":
			s.CreatePlaylist, err = strconv.ParseBool(value)
		case "SAVE_COVER_ART_IN_FOLDER":
			s.SaveCoverArtInFolder, err = strconv.ParseBool(value)
		case "SAVE_COVER_ART_IN_TAGS":
			s.SaveCoverArtInTags, err = strconv.ParseBool(value)
		case "MODIFY_TAGS":
			s.ModifyTags, err = strconv.ParseBool(value)
		}
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, value, err)
		}
	}
	return nil
}
