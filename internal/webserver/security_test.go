package webserver

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurity(t *testing.T) {
	t.Run("ValidateFileUpload", func(t *testing.T) {
		tests := []struct {
			name        string
			filename    string
			content     string
			maxSize     int64
			expectError bool
			errorMatch  string
		}{
			{
				name:     "valid arff file",
				filename: "7.arff",
				content:  "@attribute WordCount numeric\n@data\n0 5\n",
			},
			{
				name:     "empty arff file",
				filename: "7.arff",
				content:  "",
			},
			{
				name:     "compressed file skips text check",
				filename: "7.arff.gz",
				content:  "\x1f\x8b\x08\x00",
			},
			{
				name:        "invalid extension",
				filename:    "7.exe",
				content:     "content",
				expectError: true,
				errorMatch:  "invalid file type",
			},
			{
				name:        "path traversal filename",
				filename:    "7..arff",
				content:     "content",
				expectError: true,
				errorMatch:  "path traversal",
			},
			{
				name:        "whitespace only filename",
				filename:    "   ",
				content:     "content",
				expectError: true,
				errorMatch:  "cannot be empty",
			},
			{
				name:        "binary content",
				filename:    "7.arff",
				content:     "\x00\x01\x02\x03",
				expectError: true,
				errorMatch:  "invalid characters",
			},
			{
				name:        "too large",
				filename:    "7.arff",
				content:     "@data\n0 1\n",
				maxSize:     4,
				expectError: true,
				errorMatch:  "file too large",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var b bytes.Buffer

				writer := multipart.NewWriter(&b)
				part, err := writer.CreateFormFile("file", tt.filename)
				require.NoError(t, err)
				_, err = part.Write([]byte(tt.content))
				require.NoError(t, err)
				require.NoError(t, writer.Close())

				req := httptest.NewRequest("POST", "/", &b)
				req.Header.Set("Content-Type", writer.FormDataContentType())
				require.NoError(t, req.ParseMultipartForm(MaxFormSize))

				file, header, err := req.FormFile("file")
				require.NoError(t, err)
				defer file.Close()

				maxSize := tt.maxSize
				if maxSize == 0 {
					maxSize = 1024
				}

				err = ValidateFileUpload(file, header, maxSize)
				if tt.expectError {
					require.Error(t, err)
					assert.ErrorIs(t, err, ErrInvalidUpload)
					assert.Contains(t, err.Error(), tt.errorMatch)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})

	t.Run("ResolveUserID", func(t *testing.T) {
		tests := []struct {
			name        string
			explicit    string
			filename    string
			expected    string
			expectError bool
		}{
			{"from filename", "", "42.arff", "42", false},
			{"from compressed filename", "", "42.arff.zst", "42", false},
			{"explicit wins", "17", "42.arff", "17", false},
			{"explicit trimmed", " 17 ", "data.arff", "17", false},
			{"non numeric explicit", "abc", "42.arff", "", true},
			{"filename without id", "", "data.arff", "", true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				userID, err := ResolveUserID(tt.explicit, tt.filename)
				if tt.expectError {
					assert.ErrorIs(t, err, ErrInvalidFileName)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, tt.expected, userID)
			})
		}
	})
}
