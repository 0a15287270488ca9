package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDriveID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"file path link", "https://drive.google.com/file/d/1AbC-xyz_9/view?usp=sharing", "1AbC-xyz_9", true},
		{"file path link without trailing segment", "https://drive.google.com/file/d/1AbC", "1AbC", true},
		// Cutting at '?' goes beyond "up to the next slash"; share links often
		// end in /d/<id>?usp=sharing.
		{"file path link with query", "https://drive.google.com/file/d/1AbC?usp=sharing", "1AbC", true},
		{"open link", "https://drive.google.com/open?id=XYZ123&authuser=0", "XYZ123", true},
		{"uc link", "https://drive.google.com/uc?export=download&id=XYZ123", "XYZ123", true},
		{"raw id", "  1AbC-xyz_9  ", "1AbC-xyz_9", true},
		{"non drive url is kept verbatim", "https://example.com/video.mp4", "https://example.com/video.mp4", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"drive url without id", "https://drive.google.com/drive/folders", "", false},
		{"empty file segment", "https://drive.google.com/file/d//view", "", false},
		{"empty id value", "https://drive.google.com/open?id=&x=1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractDriveID(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestExtractDriveID_FileSegmentStopsAtSlash(t *testing.T) {
	for _, id := range []string{"a", "1Q2w3E4r", "with-dash_and_underscore"} {
		got, ok := ExtractDriveID("https://drive.google.com/file/d/" + id + "/preview/extra")
		assert.True(t, ok)
		assert.Equal(t, id, got)
	}
}

func TestExtractDriveID_IDParamStopsAtAmpersand(t *testing.T) {
	for _, id := range []string{"a", "1Q2w3E4r", "with-dash_and_underscore"} {
		got, ok := ExtractDriveID("https://drive.google.com/open?id=" + id + "&resourcekey=0-abc")
		assert.True(t, ok)
		assert.Equal(t, id, got)
	}
}
