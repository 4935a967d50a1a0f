package platform

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   Platform
		wantOK bool
	}{
		{name: "short youtube", in: "https://youtu.be/x", want: YouTube, wantOK: true},
		{name: "www youtube", in: "https://www.youtube.com/watch?v=x", want: YouTube, wantOK: true},
		{name: "mobile youtube", in: "https://m.youtube.com/watch?v=x", want: YouTube, wantOK: true},
		{name: "instagram", in: "https://instagram.com/p/x", want: Instagram, wantOK: true},
		{name: "tiktok", in: "https://www.tiktok.com/@u/video/1", want: TikTok, wantOK: true},
		{name: "upper case host", in: "https://WWW.TIKTOK.COM/@u/video/1", want: TikTok, wantOK: true},
		{name: "unsupported host", in: "https://example.com/recipe", wantOK: false},
		{name: "not a url", in: "not a url", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "scheme without host", in: "https://", wantOK: false},
		{name: "relative path", in: "/watch?v=x", wantOK: false},
		{name: "no slashes after scheme", in: "http:youtube.com/watch", want: YouTube, wantOK: true},
		{name: "single slash after scheme", in: "https:/www.instagram.com/p/x", want: Instagram, wantOK: true},
		{name: "triple slash after scheme", in: "https:///tiktok.com/@u/video/1", want: TikTok, wantOK: true},
		{name: "backslashes after scheme", in: `https:\\youtu.be/x`, want: YouTube, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://example.com", want: true},
		{in: "https://www.youtube.com/watch?v=x", want: true},
		{in: "mailto:someone@example.com", want: true},
		{in: "not a url", want: false},
		{in: "example.com", want: false},
		{in: "http://", want: false},
		{in: "http:youtube.com/watch", want: true},
		{in: "http:", want: false},
		{in: "https:///", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.in); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if p, ok := Parse(" TikTok "); !ok || p != TikTok {
		t.Fatalf("Parse(TikTok) = %q, %v", p, ok)
	}
	if _, ok := Parse("manual"); ok {
		t.Fatalf("manual must not parse as a scrape platform")
	}
	if !Manual.ValidSource() {
		t.Fatalf("manual must be a valid recipe source")
	}
}
