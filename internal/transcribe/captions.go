// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/research-ingest/internal/httputil"
	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	defaultYouTubeURL = "https://www.youtube.com"
	playerMarker      = "ytInitialPlayerResponse"
)

// ErrNoCaptions is returned when a video has no caption track.
var ErrNoCaptions = errors.New("no captions available")

// CaptionSource fetches the published captions of a video.
type CaptionSource interface {
	Fetch(ctx context.Context, videoID string) ([]types.Segment, error)
}

// CaptionsClient reads caption tracks from the YouTube watch page.
type CaptionsClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewCaptionsClient creates a client from cfg. An empty baseURL means
// youtube.com.
func NewCaptionsClient(cfg types.HTTPConfig, baseURL string) *CaptionsClient {
	if baseURL == "" {
		baseURL = defaultYouTubeURL
	}
	return &CaptionsClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	Captions struct {
		Renderer struct {
			Tracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type timedText struct {
	Entries []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
}

func (c *CaptionsClient) header() http.Header {
	h := http.Header{"Accept-Language": {"en-US,en;q=0.9"}}
	if c.userAgent != "" {
		h.Set("User-Agent", c.userAgent)
	}
	return h
}

// Fetch returns the caption entries for videoID, preferring a manually
// authored track over automatic speech recognition.
func (c *CaptionsClient) Fetch(ctx context.Context, videoID string) ([]types.Segment, error) {
	page, err := httputil.Get(ctx, c.client, c.baseURL+"/watch?v="+url.QueryEscape(videoID), c.header())
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return nil, err
	}
	track, ok := pickTrack(tracks)
	if !ok {
		return nil, ErrNoCaptions
	}

	trackURL, err := c.resolveTrackURL(track.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetching %s captions (%s) for %s", track.LanguageCode, trackKind(track), videoID)

	body, err := httputil.Get(ctx, c.client, trackURL, c.header())
	if err != nil {
		return nil, fmt.Errorf("fetching captions: %w", err)
	}
	return parseTimedText(body)
}

// captionTracks locates the inline player response on the watch page and
// returns its caption tracks.
func captionTracks(page []byte) ([]captionTrack, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing watch page: %w", err)
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, playerMarker) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, ErrNoCaptions
	}

	i := strings.Index(script, playerMarker)
	j := strings.Index(script[i:], "{")
	if j < 0 {
		return nil, ErrNoCaptions
	}

	// The decoder stops after the first complete value, ignoring the
	// trailing script.
	var pr playerResponse
	if err := json.NewDecoder(strings.NewReader(script[i+j:])).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding player response: %w", err)
	}
	return pr.Captions.Renderer.Tracks, nil
}

func pickTrack(tracks []captionTrack) (captionTrack, bool) {
	for _, t := range tracks {
		if t.Kind != "asr" && t.BaseURL != "" {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.BaseURL != "" {
			return t, true
		}
	}
	return captionTrack{}, false
}

func trackKind(t captionTrack) string {
	if t.Kind == "asr" {
		return "generated"
	}
	return "manual"
}

// resolveTrackURL makes relative track URLs absolute and drops the fmt
// parameter so the default timedtext XML is returned.
func (c *CaptionsClient) resolveTrackURL(raw string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid caption track URL: %w", err)
	}
	u := base.ResolveReference(ref)
	q := u.Query()
	q.Del("fmt")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseTimedText(body []byte) ([]types.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("decoding captions: %w", err)
	}

	segments := make([]types.Segment, 0, len(tt.Entries))
	for _, e := range tt.Entries {
		text := strings.TrimSpace(html.UnescapeString(e.Text))
		if text == "" {
			continue
		}
		dur := e.Dur
		segments = append(segments, types.Segment{
			Text:     text,
			Start:    e.Start,
			Duration: &dur,
			End:      e.Start + e.Dur,
		})
	}
	return segments, nil
}

// joinSegments renders the transcript text as the segment texts joined by a
// single space.
func joinSegments(segments []types.Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}
