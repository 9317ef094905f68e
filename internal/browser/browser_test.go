package browser

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://open.fda.gov/apis/drug/enforcement/", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"", true},
	}

	for _, tt := range tests {
		err := validate(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("validate(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("validate(%q): unexpected error: %v", tt.url, err)
		}
	}
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	if err := Open("file:///etc/passwd"); err == nil {
		t.Error("expected Open to reject file:// URL")
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs int
	}{
		{"darwin", "open", 1},
		{"linux", "xdg-open", 1},
		{"freebsd", "xdg-open", 1},
		{"windows", "rundll32", 2},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, "https://example.com")
		if name != tt.wantName {
			t.Errorf("command(%q) = %q, want %q", tt.goos, name, tt.wantName)
		}
		if len(args) != tt.wantArgs || args[len(args)-1] != "https://example.com" {
			t.Errorf("command(%q) args = %v", tt.goos, args)
		}
	}
}
