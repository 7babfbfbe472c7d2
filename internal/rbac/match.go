package rbac

import "strings"

// segments splits a path on "/" after trimming leading and trailing slashes.
// The root path has zero segments.
func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// MatchPath reports whether a request path satisfies a permission pattern.
// Paths match when they are equal, or when both split into the same number
// of segments and every pattern segment either equals the request segment or
// is a ":param" placeholder matching any non-empty segment.
func MatchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}
	want := segments(pattern)
	got := segments(path)
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

// stripPrefix removes prefix from path when it is a whole leading segment
// sequence: "/api/brand" loses "/api", "/apiary" does not.
func stripPrefix(path, prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return path
	}
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):]
	}
	return path
}
