package webserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"

	"arffstats/internal/folder"
	"arffstats/internal/source"
)

// MaxFormSize limits in-memory form data to 1MB, larger uploads spill to disk
const MaxFormSize = 1024 * 1024

var (
	ErrInvalidUpload   = errors.New("invalid upload")
	ErrInvalidFileName = errors.New("invalid file name")
)

// ValidateFileUpload validates uploaded dataset files for security
func ValidateFileUpload(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if strings.TrimSpace(header.Filename) == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidUpload)
	}

	if header.Size > maxSize {
		return fmt.Errorf("%w: file too large: %d bytes (max %d)", ErrInvalidUpload, header.Size, maxSize)
	}

	if strings.Contains(header.Filename, "..") || strings.ContainsAny(header.Filename, `/\`) {
		return fmt.Errorf("%w: filename contains path traversal characters", ErrInvalidUpload)
	}

	if !hasAllowedExtension(header.Filename) {
		return fmt.Errorf("%w: invalid file type %q (allowed: %v)", ErrInvalidUpload, header.Filename, allowedExtensions())
	}

	if source.DetectCompression(header.Filename) != source.CompressionNone {
		return nil
	}

	// Uncompressed uploads must look like text
	buffer := make([]byte, 512)

	n, err := file.Read(buffer)
	if err != nil && n == 0 && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: cannot read file content", ErrInvalidUpload)
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("%w: cannot rewind file content", ErrInvalidUpload)
	}

	for _, b := range buffer[:n] {
		// Allow printable ASCII, newlines, carriage returns, and tabs
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			return fmt.Errorf("%w: file contains invalid characters (not a text file)", ErrInvalidUpload)
		}
	}

	return nil
}

// ResolveUserID picks the explicit user id if given, otherwise the one encoded in the file name
func ResolveUserID(explicit, filename string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		for _, r := range explicit {
			if r < '0' || r > '9' {
				return "", fmt.Errorf("%w: user id %q must be numeric", ErrInvalidFileName, explicit)
			}
		}

		return explicit, nil
	}

	userID, ok := folder.MatchName(filename)
	if !ok {
		return "", fmt.Errorf("%w: %q does not match <digits>.arff", ErrInvalidFileName, filename)
	}

	return userID, nil
}

func hasAllowedExtension(filename string) bool {
	for ext := range source.Extensions {
		if strings.HasSuffix(filename, ".arff"+ext) {
			return true
		}
	}

	return false
}

// allowedExtensions returns the allowed extensions for error messages
func allowedExtensions() []string {
	exts := make([]string, 0, len(source.Extensions))
	for ext := range source.Extensions {
		exts = append(exts, ".arff"+ext)
	}

	sort.Strings(exts)

	return exts
}
