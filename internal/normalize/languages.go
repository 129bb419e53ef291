package normalize

import "strings"

// Languages maps a comma-separated language list to canonical labels.
// Matching is a case-insensitive prefix match, so "English (UK)" counts as
// English. Unknown languages are dropped, duplicates collapse to the first
// occurrence.
func (v Vocabulary) Languages(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return v.LanguageList(strings.Split(raw, ","))
}

func (v Vocabulary) LanguageList(parts []string) string {
	out := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)

	for _, p := range parts {
		p = strings.ToLower(CleanSpace(p))

		var label string
		switch {
		case strings.HasPrefix(p, "english"):
			label = v.English
		case strings.HasPrefix(p, "russian"):
			label = v.Russian
		default:
			continue
		}

		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}

	return strings.Join(out, ", ")
}

func Languages(raw string) string { return Default.Languages(raw) }
