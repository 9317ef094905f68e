package recall

import (
	"fmt"
	"strings"
)

// Unknown is the placeholder for any field the API left out.
const Unknown = "Unknown"

const (
	ClassI   = "Class I"
	ClassII  = "Class II"
	ClassIII = "Class III"

	// All is the filter option that keeps every record.
	All = "All"
)

// Record is one drug recall enforcement report, reduced to the fields the
// dashboard charts.
type Record struct {
	Product        string
	Classification string
	Reason         string
	Year           string
}

// Classes returns the FDA severity tiers, most severe first.
func Classes() []string {
	return []string{ClassI, ClassII, ClassIII}
}

// FilterOptions returns the selector options in display order.
func FilterOptions() []string {
	return []string{All, ClassI, ClassII, ClassIII}
}

var filterAliases = map[string]string{
	"":    All,
	"all": All,
	"1":   ClassI,
	"i":   ClassI,
	"2":   ClassII,
	"ii":  ClassII,
	"3":   ClassIII,
	"iii": ClassIII,
}

// ParseFilter maps user input such as "ii", "3" or "class i" to a filter option.
func ParseFilter(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSpace(strings.TrimPrefix(key, "class"))
	if opt, ok := filterAliases[key]; ok {
		return opt, nil
	}
	for _, opt := range FilterOptions() {
		if strings.EqualFold(opt, strings.TrimSpace(s)) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown classification %q (valid: %s)", s, strings.Join(FilterOptions(), ", "))
}
