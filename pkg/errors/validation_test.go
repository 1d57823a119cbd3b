package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid simple", id: "job-1", wantErr: false},
		{name: "valid with dots", id: "job.one", wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "too long", id: strings.Repeat("a", 129), wantErr: true},
		{name: "control character", id: "job\x01", wantErr: true},
		{name: "path traversal", id: "../etc/passwd", wantErr: true},
		{name: "double slash", id: "a//b", wantErr: true},
		{name: "backslash", id: "a\\b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNode) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidNode)
			}
		})
	}
}

func TestValidateNodeIDSlug(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid slug", id: "skill-group-1", wantErr: false},
		{name: "valid numeric start", id: "1st-job", wantErr: false},
		{name: "uppercase rejected", id: "Job-1", wantErr: true},
		{name: "leading hyphen rejected", id: "-job", wantErr: true},
		{name: "dots rejected", id: "job.1", wantErr: true},
		{name: "empty", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeIDSlug(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeIDSlug(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		wantErr bool
	}{
		{name: "valid", label: "Senior Software Engineer", wantErr: false},
		{name: "valid with tab", label: "a\tb", wantErr: false},
		{name: "empty", label: "", wantErr: true},
		{name: "whitespace only", label: "   ", wantErr: true},
		{name: "too long", label: strings.Repeat("x", 201), wantErr: true},
		{name: "newline rejected", label: "a\nb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.label)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://example.com/api", wantErr: false},
		{name: "http", url: "http://localhost:8080", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "ftp", url: "ftp://example.com", wantErr: true},
		{name: "scheme-less", url: "example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "jane@example.com", wantErr: false},
		{name: "subdomain", email: "jane@mail.example.co.uk", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "no at", email: "janeexample.com", wantErr: true},
		{name: "no domain dot", email: "jane@localhost", wantErr: true},
		{name: "spaces", email: "jane doe@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}
