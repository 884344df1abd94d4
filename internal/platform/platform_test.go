package platform

import "testing"

func TestParseAcceptsAliases(t *testing.T) {
	cases := []struct {
		input string
		want  Platform
	}{
		{"facebook", Facebook},
		{"Facebook", Facebook},
		{"  twitter ", Twitter},
		{"x", Twitter},
		{"X (Twitter)", Twitter},
		{"LinkedIn", LinkedIn},
		{"tiktok", TikTok},
		{"instagram", Instagram},
		{"snapchat", Snapchat},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.input)
		if !ok {
			t.Fatalf("Parse(%q) not recognized", tc.input)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "  ", "myspace", "face book"} {
		if _, ok := Parse(input); ok {
			t.Fatalf("Parse(%q) unexpectedly succeeded", input)
		}
	}
}

func TestCharLimits(t *testing.T) {
	cases := []struct {
		platform Platform
		want     int
	}{
		{Facebook, 2200},
		{Twitter, 280},
		{LinkedIn, 3000},
		{TikTok, 150},
		{Snapchat, 100},
		{Platform("unknown"), DefaultCharLimit},
	}
	for _, tc := range cases {
		if got := tc.platform.CharLimit(); got != tc.want {
			t.Fatalf("%s char limit = %d, want %d", tc.platform, got, tc.want)
		}
	}
}

func TestSupportsMedia(t *testing.T) {
	for _, p := range []Platform{Facebook, Twitter, LinkedIn, Instagram} {
		if !p.SupportsMedia() {
			t.Fatalf("%s should support media", p)
		}
	}
	for _, p := range []Platform{TikTok, Snapchat} {
		if p.SupportsMedia() {
			t.Fatalf("%s should not support media", p)
		}
	}
}

func TestValidMediaPath(t *testing.T) {
	valid := []string{"photo.jpg", "dir/photo.PNG", " banner.jpg "}
	for _, path := range valid {
		if !ValidMediaPath(path) {
			t.Fatalf("ValidMediaPath(%q) = false, want true", path)
		}
	}
	invalid := []string{"clip.mp4", "photo.jpeg", "photo", ""}
	for _, path := range invalid {
		if ValidMediaPath(path) {
			t.Fatalf("ValidMediaPath(%q) = true, want false", path)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := Twitter.DisplayName(); got != "X (Twitter)" {
		t.Fatalf("Twitter display name = %q", got)
	}
	if got := Platform("custom").DisplayName(); got != "custom" {
		t.Fatalf("unknown display name = %q", got)
	}
}
