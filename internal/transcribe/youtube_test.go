package transcribe

import (
	"errors"
	"testing"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=XYZ123", "XYZ123", false},
		{"https://youtube.com/watch?v=XYZ123&t=42s", "XYZ123", false},
		{"https://www.youtube.com/watch?list=PL1&v=abc_-9", "abc_-9", false},
		{"https://youtu.be/XYZ123", "XYZ123", false},
		{"https://youtu.be/XYZ123?si=share", "XYZ123", false},
		{"https://www.youtube.com/channel/UC123", "", true},
		{"https://youtu.be/", "", true},
		{"http://example.com/video", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseVideoID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrNoVideoID) {
					t.Fatalf("err = %v, want ErrNoVideoID", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseVideoID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://youtu.be/x") || !IsURL("http://x") {
		t.Error("http(s) inputs must be URLs")
	}
	if IsURL("episode.mp3") || IsURL("/tmp/http.mp3") {
		t.Error("local paths must not be URLs")
	}
}
