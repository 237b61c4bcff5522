package ingest

import "testing"

func TestExtractPlaylistID(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://www.youtube.com/playlist?list=PLabc123", want: "PLabc123"},
		{in: "https://www.youtube.com/watch?v=vid&list=PLabc123&index=4", want: "PLabc123"},
		{in: "PLabc123", want: "PLabc123"},
		{in: "https://www.youtube.com/watch?v=vid", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ExtractPlaylistID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ExtractPlaylistID(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractPlaylistID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractPlaylistID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/playlist?list=PLabc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ExtractVideoID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ExtractVideoID(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractVideoID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalPlaylistURL(t *testing.T) {
	got := CanonicalPlaylistURL("https://www.youtube.com/watch?v=vid&list=PLabc123")
	want := "https://www.youtube.com/playlist?list=PLabc123"
	if got != want {
		t.Fatalf("CanonicalPlaylistURL = %q, want %q", got, want)
	}
}
