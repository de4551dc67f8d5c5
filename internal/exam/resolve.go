package exam

import (
	"strconv"
	"strings"
)

// ComposeSlug builds the catalog slug "<provider>-<examCode>". Both parts are
// lower-cased and underscores folded to hyphens before composition.
func ComposeSlug(provider, code string) string {
	return slugPart(provider) + "-" + slugPart(code)
}

func slugPart(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

// ResolveTest finds the practice test addressed by ref. The lookup order is
// significant: slug, then stored id, then 1-based position in the list.
func ResolveTest(tests []PracticeTest, ref string) (PracticeTest, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return PracticeTest{}, false
	}
	for _, t := range tests {
		if t.Slug != "" && strings.EqualFold(t.Slug, ref) {
			return t, true
		}
	}
	for _, t := range tests {
		if t.ID == ref {
			return t, true
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tests) {
		return tests[n-1], true
	}
	return PracticeTest{}, false
}

// PlaceholderTest synthesizes a test record from the exam's own metadata so
// a missing test row does not block the pre-test screen.
func PlaceholderTest(def Definition, ref string) PracticeTest {
	name := def.Title
	if name == "" {
		name = "Practice Test"
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil && n > 0 {
		name += " - Practice Test " + strconv.Itoa(n)
	}
	return PracticeTest{
		ID:          ref,
		Name:        name,
		Duration:    def.Duration,
		Difficulty:  def.Difficulty,
		Synthesized: true,
	}
}

// letteredFields are the fallback option slots some banks use instead of a list.
var letteredFields = [...]string{"A", "B", "C", "D", "E", "F"}

// OptionsFromLetters synthesizes options from up to six lettered fields,
// keeping A–F order and skipping blank slots.
func OptionsFromLetters(fields map[string]string) []Option {
	out := make([]Option, 0, len(letteredFields))
	for _, l := range letteredFields {
		if text := strings.TrimSpace(fields[l]); text != "" {
			out = append(out, Option{Label: l, Text: text})
		}
	}
	return out
}
