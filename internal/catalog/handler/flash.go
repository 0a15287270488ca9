package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashCookieName = "catalog_flash"
	flashMaxAge     = 60 * time.Second
	flashMaxQueued  = 5
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

// addFlash queues a message in the flash cookie, on top of anything already
// queued by this request or an earlier redirect.
func addFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	flashes := append(readFlashes(r), Flash{Kind: kind, Message: message})
	if len(flashes) > flashMaxQueued {
		flashes = flashes[len(flashes)-flashMaxQueued:]
	}

	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(raw)

	// Later handlers in the same request see the queued message.
	r.AddCookie(&http.Cookie{Name: flashCookieName, Value: value})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(flashMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the queued messages and clears the cookie.
func popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	var cookie *http.Cookie
	for _, c := range r.Cookies() {
		if c.Name == flashCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
