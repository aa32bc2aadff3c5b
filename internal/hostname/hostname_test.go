package hostname

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{
			name:    "plain com domain",
			domain:  "okulum.com",
			wantErr: false,
		},
		{
			name:    "hyphenated subdomain of platform base",
			domain:  "cumhuriyet-lisesi.i-ep.app",
			wantErr: false,
		},
		{
			name:    "digits allowed",
			domain:  "okul42.example.org",
			wantErr: false,
		},
		{
			name:    "trailing dot is tolerated",
			domain:  "okulum.com.",
			wantErr: false,
		},
		{
			name:    "uppercase rejected",
			domain:  "UPPERCASE.com",
			wantErr: true,
		},
		{
			name:    "leading hyphen rejected",
			domain:  "-leadinghyphen.com",
			wantErr: true,
		},
		{
			name:    "underscore rejected",
			domain:  "no_dots",
			wantErr: true,
		},
		{
			name:    "single label rejected",
			domain:  "nodots",
			wantErr: true,
		},
		{
			name:    "empty rejected",
			domain:  "",
			wantErr: true,
		},
		{
			name:    "IPv4 rejected",
			domain:  "192.168.1.1",
			wantErr: true,
		},
		{
			name:    "numeric TLD rejected",
			domain:  "okulum.c1",
			wantErr: true,
		},
		{
			name:    "bare public suffix rejected",
			domain:  "co.uk",
			wantErr: true,
		},
		{
			name:    "empty label rejected",
			domain:  "okulum..com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.domain)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v; wantErr %v", tt.domain, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{"ornek-okul", false},
		{"okul42", false},
		{"a", false},
		{"", true},
		{"-okul", true},
		{"okul-", true},
		{"Okul", true},
		{"ornek.okul", true},
		{"ornek_okul", true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v; wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		base     string
		expected string
	}{
		{
			name:     "label under base",
			label:    "ornek-okul",
			base:     "i-ep.app",
			expected: "ornek-okul.i-ep.app",
		},
		{
			name:     "empty label is base",
			label:    "",
			base:     "i-ep.app",
			expected: "i-ep.app",
		},
		{
			name:     "@ is base",
			label:    "@",
			base:     "i-ep.app",
			expected: "i-ep.app",
		},
		{
			name:     "already qualified",
			label:    "ornek-okul.i-ep.app",
			base:     "i-ep.app",
			expected: "ornek-okul.i-ep.app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose(tt.label, tt.base); got != tt.expected {
				t.Errorf("Compose(%q, %q) = %q; want %q", tt.label, tt.base, got, tt.expected)
			}
		})
	}
}

func TestWWW(t *testing.T) {
	if got := WWW("ornek-okul.i-ep.app"); got != "www.ornek-okul.i-ep.app" {
		t.Errorf("WWW() = %q", got)
	}
}
