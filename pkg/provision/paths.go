package provision

import "strings"

// EnsureTrailingSlash returns p with a trailing "/" appended when it has
// none. Applying it twice yields the same result as applying it once.
func EnsureTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// TrimTrailingSlash returns p with all trailing "/" characters stripped.
// Idempotent.
func TrimTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return strings.TrimRight(p, "/")
	}
	return p
}

// SyncSourcePath formats a source directory path for the sync tool.
// With contents true the result ends with a slash, meaning "copy what is
// inside the directory"; with contents false the trailing slash is
// stripped, meaning "copy the directory itself". This mirrors rsync's
// source trailing-slash rule, where getting the slash wrong changes what
// lands at the destination.
func SyncSourcePath(p string, contents bool) string {
	if contents {
		return EnsureTrailingSlash(p)
	}
	return TrimTrailingSlash(p)
}

// ParseBool reports whether value is the string "true", the string
// "True", or the boolean true. Every other input, including "1", "yes"
// and "TRUE", is false. The narrow enumeration is kept on purpose for
// compatibility with existing configuration inputs.
func ParseBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True"
	default:
		return false
	}
}
