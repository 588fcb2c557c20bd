// Package audio provides the audio side of a split run: decoding the source
// recording, encoding slices to MP3, writing ID3 tags and generating
// playlists.
//
// # Decoding
//
// A Decoder buffers a whole recording into a read-only Source:
//
//	src, err := audio.NewDecoder("ffmpeg").Decode(ctx, "input.wav")
//	defer src.Release()
//	slice, err := src.Slice(90000, 300000) // [1:30, 5:00)
//
// WAV, MP3, FLAC and Ogg Vorbis are decoded natively with beep; other
// containers go through ffmpeg.
//
// # Encoding
//
// FFmpegEncoder pipes PCM into ffmpeg and writes constant bitrate MP3:
//
//	enc := audio.NewFFmpegEncoder("ffmpeg", 320)
//	err := enc.Encode(slice, src.Format(), "01 - Intro.mp3")
//
// # ID3 Tagging
//
// The Tagger writes text frames first, then attaches the cover picture in a
// second pass:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.WriteTags(path, audio.TrackTags{Metadata: meta, Title: "Intro", Index: 1, Total: 3})
//	err = tagger.EmbedCover(path, cover)
//
// ReadTags reads them back with an independent parser.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
// Supported formats: M3U (optionally extended), PLS, WPL, ZPL.
package audio
