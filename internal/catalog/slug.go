// internal/catalog/slug.go
package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugLen bounds synthesized item identifiers. Identity is scoped to one
// rendered list, so slugs need to be stable UI keys, not globally unique.
const MaxSlugLen = 64

// Slugify turns free text into a bounded identifier: Unicode-normalized,
// lowercased, whitespace collapsed to hyphens, everything outside
// [a-z0-9-_.] stripped. The result is never empty; input that slugs to
// nothing (e.g. fully non-Latin names) falls back to a timestamp.
// Idempotent on its own output.
func Slugify(s string) string {
	decomposed := strings.ToLower(norm.NFKD.String(s))

	var b strings.Builder
	pendingSep := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining marks left over from decomposition
		case unicode.IsSpace(r) || r == '-':
			if b.Len() > 0 {
				pendingSep = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.':
			if pendingSep {
				b.WriteByte('-')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}

	out := b.String()
	if len(out) > MaxSlugLen {
		out = strings.TrimRight(out[:MaxSlugLen], "-")
	}
	if out == "" {
		out = fmt.Sprintf("itm_%d", time.Now().Unix())
	}
	return out
}

// itemID synthesizes a stable identifier for a row the backend supplied
// without one. The positional index keeps identical names distinct within
// one normalization pass.
func itemID(category, subcategory, name string, index int) string {
	return fmt.Sprintf("%s_%d", Slugify(category+" "+subcategory+" "+name), index)
}
