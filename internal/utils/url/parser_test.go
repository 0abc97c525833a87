package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolve(t *testing.T) {
	base := "https://www.example.com/jobs/search?q=go"

	cases := []struct {
		href string
		want string
	}{
		{"/partner/jobListing.htm?id=7", "https://www.example.com/partner/jobListing.htm?id=7"},
		{"https://other.example.com/x", "https://other.example.com/x"},
		{"detail.htm", "https://www.example.com/jobs/detail.htm"},
	}
	for _, c := range cases {
		if got := ResolveURL(base, c.href); got != c.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", c.href, got, c.want)
		}
	}
}
