package normalize

import "strings"

const (
	IconPSPlus  = "psplus"
	IconEAPlay  = "eaplay"
	IconUbisoft = "ubisoft"
	IconGTAPlus = "gtaplus"
)

// iconPriority decides which service an "Included" label refers to when a
// product carries several subscription icons.
var iconPriority = []string{IconPSPlus, IconEAPlay, IconUbisoft, IconGTAPlus}

var serviceNames = map[string]string{
	IconPSPlus:  "PS Plus",
	IconEAPlay:  "EA Play",
	IconUbisoft: "Ubisoft+",
	IconGTAPlus: "GTA+",
}

func ServiceName(icon string) string {
	return serviceNames[icon]
}

// ResolveSubscription replaces the generic "Included" label with the
// display name of the highest priority service among icons. Other labels
// are returned as is.
func ResolveSubscription(label string, icons []string) string {
	if !strings.EqualFold(CleanSpace(label), "included") {
		return label
	}
	for _, want := range iconPriority {
		for _, got := range icons {
			if got == want {
				return serviceNames[want]
			}
		}
	}
	return label
}

// JoinIcons merges icon lists, keeping discovery order and dropping repeats.
func JoinIcons(lists ...[]string) []string {
	out := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)
	for _, l := range lists {
		for _, ic := range l {
			ic = strings.TrimSpace(ic)
			if ic == "" {
				continue
			}
			if _, ok := seen[ic]; ok {
				continue
			}
			seen[ic] = struct{}{}
			out = append(out, ic)
		}
	}
	return out
}
