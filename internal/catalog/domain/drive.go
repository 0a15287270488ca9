package domain

import "strings"

// ExtractDriveID pulls a Google Drive file id out of a sharing link, or
// returns text itself when it does not look like a Drive URL.
//
//	https://drive.google.com/file/d/<id>/view   -> <id>
//	https://drive.google.com/open?id=<id>&x=y   -> <id>
//	<id>                                       -> <id>
func ExtractDriveID(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if !strings.Contains(text, "drive.google.com") {
		return text, true
	}

	if _, rest, ok := strings.Cut(text, "/file/d/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		// Drive ids never contain '?', a bare .../d/<id>?usp=sharing link is common
		id, _, _ = strings.Cut(id, "?")
		return id, id != ""
	}

	if _, rest, ok := strings.Cut(text, "id="); ok {
		id, _, _ := strings.Cut(rest, "&")
		if id != "" {
			return id, true
		}
	}

	return "", false
}
