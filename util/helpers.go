// Package util provides helpers for build version parsing, feed
// configuration and extracting metadata from the environment.
package util

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// IsNotEmpty checks if a string is not empty
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// Contains checks if a string slice contains an item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetStringOrDefault returns value or default if empty
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// ============================================================================
// Version Parsing Functions
// ============================================================================

var versionPrefixPattern = regexp.MustCompile(`^.*?-v(\d+)`)

// CleanVersion removes branch or product prefixes from version strings
// Examples:
//   - "main-v12.0.1376-g7ac6f3" -> "12.0.1376-g7ac6f3"
//   - "daily-v4.3.0" -> "4.3.0"
//   - "v1.2.3" -> "v1.2.3" (unchanged)
func CleanVersion(version string) string {
	if version == "" {
		return version
	}
	if versionPrefixPattern.MatchString(version) {
		matches := versionPrefixPattern.FindStringSubmatch(version)
		if len(matches) > 1 {
			cleaned := versionPrefixPattern.ReplaceAllString(version, matches[1])
			return cleaned
		}
	}
	return version
}

// ParseBuildVersion parses the version labels build farms publish into a
// semantic version. Handles plain triples ("4.3.0"), "v" prefixes, partial
// versions ("4.3") and display strings with a trailing variant label, which
// becomes the prerelease ("4.3.0 Release Candidate" -> 4.3.0-release.candidate).
func ParseBuildVersion(version string) (*semver.Version, error) {
	raw := strings.TrimSpace(CleanVersion(version))
	if raw == "" {
		return nil, fmt.Errorf("empty version string")
	}
	raw = strings.TrimPrefix(raw, "v")

	fields := strings.Fields(raw)
	base := fields[0]
	if len(fields) > 1 && !strings.ContainsAny(base, "-+") {
		label := strings.ToLower(strings.Join(fields[1:], "."))
		base = base + "-" + label
	}

	v, err := semver.NewVersion(base)
	if err != nil {
		return nil, fmt.Errorf("unparseable build version %q: %w", version, err)
	}
	return v, nil
}
