package registry

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	depRE    = regexp.MustCompile(`^([a-zA-Z0-9_-]+)`)
	markerRE = regexp.MustCompile(`;\s*(.+)`)
	skipRE   = regexp.MustCompile(`extra|dev|test`)

	// nameVersionRE splits "<name>-<version>" stems. The name may contain
	// dotted or dashed words as long as each continuation starts with a letter,
	// which is what separates "asv" in "asv-1.0" from the version digits.
	nameVersionRE = regexp.MustCompile(`(?i)^([a-z0-9_]+([.-][a-z_][a-z0-9_]*)*)-([a-z0-9_.+-]+)`)

	// runtimeTagRE matches a trailing "-pyX.Y" runtime tag.
	runtimeTagRE = regexp.MustCompile(`-py(\d\.?\d?)`)
)

// NormalizeName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// ParseCredentials splits credentials from a network location string.
// The part before the last "@" holds the credentials; within it, everything
// after the first ":" is the password. Both parts are percent-decoded.
// If netloc carries no credentials, user and password are empty.
func ParseCredentials(netloc string) (user, password, host string) {
	host = netloc
	i := strings.LastIndex(netloc, "@")
	if i < 0 {
		return "", "", host
	}

	prefix := netloc[:i]
	host = netloc[i+1:]
	user = prefix
	if j := strings.Index(prefix, ":"); j >= 0 {
		user = prefix[:j]
		password = prefix[j+1:]
	}
	user = unquote(user)
	password = unquote(password)
	return user, password, host
}

// EnsureSlash returns s with a trailing slash appended if not already present.
func EnsureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// SplitFilename splits a distribution filename stem into project name,
// version, and optional runtime tag:
//
//	SplitFilename("baklabel-1.0.3-2729-py3.2", "")  // "baklabel", "1.0.3-2729", "3.2", true
//
// When the project name is known, pass it to resolve ambiguous stems where
// the version itself contains dashes (e.g. "asv_files-dev-20120501-01" with
// project "asv_files"). Returns ok=false if the stem has no recognizable
// name-version split.
func SplitFilename(filename, project string) (name, version, runtime string, ok bool) {
	filename = strings.ReplaceAll(unquote(filename), " ", "-")

	if m := runtimeTagRE.FindStringSubmatchIndex(filename); m != nil {
		runtime = filename[m[2]:m[3]]
		filename = filename[:m[0]]
	}

	// A known project name must be followed by a non-word separator, which
	// is skipped; the rest is the version.
	if project != "" && len(filename) > len(project)+1 &&
		strings.HasPrefix(filename, project) && !isWordChar(filename[len(project)]) {
		return project, filename[len(project)+1:], runtime, true
	}

	if m := nameVersionRE.FindStringSubmatch(filename); m != nil {
		return m[1], m[3], runtime, true
	}
	return "", "", "", false
}

// extractRequires pulls normalized dependency names out of requirement
// specifiers, skipping extras, dev, and test markers.
func extractRequires(requires []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range requires {
		if m := markerRE.FindStringSubmatch(req); len(m) > 1 && skipRE.MatchString(m[1]) {
			continue
		}
		if m := depRE.FindStringSubmatch(req); len(m) > 1 {
			dep := NormalizeName(m[1])
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

// fileRuntime extracts the runtime tag from a distribution filename,
// stripping the archive extension first.
func fileRuntime(filename, project string) string {
	stem := filename
	for _, ext := range []string{".whl", ".egg", ".zip", ".tar.gz", ".tar.bz2", ".tar.xz", ".tar"} {
		if strings.HasSuffix(stem, ext) {
			stem = strings.TrimSuffix(stem, ext)
			break
		}
	}
	if _, _, runtime, ok := SplitFilename(stem, project); ok {
		return runtime
	}
	return ""
}

func unquote(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func isWordChar(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
