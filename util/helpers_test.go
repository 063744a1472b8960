package util

import (
	"testing"
)

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("BUILDCAT_TEST_VAR", "from-env")

	if got := GetEnvDefault("BUILDCAT_TEST_VAR", "fallback"); got != "from-env" {
		t.Errorf("Expected from-env, got %s", got)
	}
	if got := GetEnvDefault("BUILDCAT_TEST_VAR_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   \t\n", true},
		{"non-empty", "stable", false},
		{"padded", "  stable  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.input); got != tt.want {
				t.Errorf("IsEmpty(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got := IsNotEmpty(tt.input); got == tt.want {
				t.Errorf("IsNotEmpty(%q) = %v, want %v", tt.input, got, !tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	branches := []string{"stable", "daily", "lts"}

	if !Contains(branches, "daily") {
		t.Error("Expected Contains to find daily")
	}
	if Contains(branches, "experimental") {
		t.Error("Expected Contains to miss experimental")
	}
	if Contains(nil, "stable") {
		t.Error("Expected Contains on nil slice to be false")
	}
}

func TestGetStringOrDefault(t *testing.T) {
	if got := GetStringOrDefault("", "main"); got != "main" {
		t.Errorf("Expected main, got %s", got)
	}
	if got := GetStringOrDefault("lts", "main"); got != "lts" {
		t.Errorf("Expected lts, got %s", got)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "stable", "stable"},
		{"natural key pipes", "4.3.0|daily|cb886aba06d5", "4.3.0_daily_cb886aba06d5"},
		{"spaces and slashes", " linux/x86 64 ", "linux-x86-64"},
		{"brackets stripped", "feed[0](a)", "feed0a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeKey(tt.input); got != tt.want {
				t.Errorf("SanitizeKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"branch prefix", "main-v12.0.1376-g7ac6f3", "12.0.1376-g7ac6f3"},
		{"feed prefix", "daily-v4.3.0", "4.3.0"},
		{"bare v prefix unchanged", "v1.2.3", "v1.2.3"},
		{"plain triple unchanged", "4.3.0", "4.3.0"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanVersion(tt.input); got != tt.want {
				t.Errorf("CleanVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBuildVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain triple", "4.3.0", "4.3.0", false},
		{"v prefix", "v1.2.3", "1.2.3", false},
		{"partial version", "4.3", "4.3.0", false},
		{"branch prefix", "daily-v4.3.1", "4.3.1", false},
		{"display label", "4.3.0 Release Candidate", "4.3.0-release.candidate", false},
		{"single label", "4.2.1 Alpha", "4.2.1-alpha", false},
		{"git suffix", "main-v12.0.1376-g7ac6f3", "12.0.1376-g7ac6f3", false},
		{"padded", "  3.6.14  ", "3.6.14", false},
		{"empty", "", "", true},
		{"garbage", "not a version", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseBuildVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %s", tt.input, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to parse %q: %v", tt.input, err)
			}
			if v.String() != tt.want {
				t.Errorf("ParseBuildVersion(%q) = %s, want %s", tt.input, v, tt.want)
			}
		})
	}
}
