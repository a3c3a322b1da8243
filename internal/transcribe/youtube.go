// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcribe

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoVideoID is returned when a URL carries no YouTube video id.
var ErrNoVideoID = errors.New("no YouTube video id in URL")

// IsURL reports whether input should be treated as a remote video rather
// than a local audio file.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http")
}

// ParseVideoID extracts the video id from a youtube.com/watch?v=<id> URL or a
// youtu.be/<id> short link.
func ParseVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoVideoID, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if id == "" || strings.Contains(id, "/") {
			return "", fmt.Errorf("%w: %s", ErrNoVideoID, rawURL)
		}
		return id, nil
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoVideoID, rawURL)
}
