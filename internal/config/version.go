package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseEngineVersion parses a Docker Engine version string. Engines before
// 20.10 used zero-padded months ("19.03.15") and, until 18.09, an edition
// suffix ("17.06.2-ce"); both are normalized before semver parsing.
func ParseEngineVersion(raw string) (*semver.Version, error) {
	v := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	core, rest := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, rest = v[:i], v[i:]
	}
	if lower := strings.ToLower(rest); strings.HasPrefix(lower, "-ce") || strings.HasPrefix(lower, "-ee") {
		rest = strings.TrimPrefix(rest[3:], "-")
		if rest != "" && rest[0] != '+' {
			rest = "-" + rest
		}
	}

	parts := strings.Split(core, ".")
	for i, p := range parts {
		if len(p) > 1 {
			p = strings.TrimLeft(p, "0")
			if p == "" {
				p = "0"
			}
		}
		parts[i] = p
	}
	return semver.NewVersion(strings.Join(parts, ".") + rest)
}
