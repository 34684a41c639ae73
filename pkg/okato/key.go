package okato

import "strings"

// KeySeparator joins the four code segments of a hierarchical key.
const KeySeparator = "-"

// emptySegment marks an unused level in the OKATO code.
const emptySegment = KeySeparator + "000"

// ComposeKey joins the four code segments and drops every "-000" segment.
// The removal is not anchored to the end of the key: a "-000" inside the key
// is removed as well.
func ComposeKey(region, area, place, district string) string {
	key := strings.Join([]string{region, area, place, district}, KeySeparator)
	return strings.ReplaceAll(key, emptySegment, "")
}

// ParentKey drops the last segment of key together with any trailing
// separators. A key without a separator is a root and has the empty parent
// key.
func ParentKey(key string) string {
	i := strings.LastIndex(key, KeySeparator)
	if i < 0 {
		return ""
	}
	return strings.TrimRight(key[:i], KeySeparator)
}
