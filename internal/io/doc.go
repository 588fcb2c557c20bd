// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File copying, moving and writing
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Cover art resizing, format conversion and type detection
//
// # File Operations
//
//	// Move a downloaded file into place
//	err := ioutils.MoveFile(ctx, "/tmp/temp_audio.wav", "/data/input.wav")
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Filename Sanitization
//
// Use SanitizeFileName to strip invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song Part 12"
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
//	mime, err := ioutils.DetectImageMIME(jpeg) // "image/jpeg"
package ioutils
