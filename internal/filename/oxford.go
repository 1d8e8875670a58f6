package filename

import "strings"

// Oxfordize joins names for display with a serial comma:
// "A", "A and B", "A, B, and C".
func Oxfordize(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}
