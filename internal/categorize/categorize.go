package categorize

import (
	"strings"

	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

// Canonical categories, in the order their rules are evaluated.
const (
	Sterility      = "Lack of sterility assurance"
	Adverse        = "Adverse reactions"
	Temperature    = "Temperature deviation"
	Labeling       = "Labeling errors"
	Potency        = "Incorrect potency"
	Unapproved     = "Marketed without approved NDA/ANDA"
	Microbial      = "Microbial contamination"
	ProcessControl = "Lack of process control and Manufacturing defects"
)

type rule struct {
	category string
	keywords []string
}

// Order is priority. The process control rule is the catch-all and stays last.
var rules = []rule{
	{Sterility, []string{"sterility"}},
	{Adverse, []string{"adverse reaction"}},
	{Temperature, []string{"temperature"}},
	{Labeling, []string{
		"label", "labeling", "mislabel", "mislabeling", "misbranding", "misbranded",
		"packaging error", "packaging mix", "wrong packaging", "incorrect packaging",
		"package mix-up", "packaging mix-up",
	}},
	{Potency, []string{"potency", "strength", "superpotent", "subpotent", "Potential"}},
	{Unapproved, []string{
		"marketed without", "without an approved", "unapproved", "NDA", "ANDA",
		"without approved NDA", "without approved ANDA", "no NDA", "no ANDA",
	}},
	{Microbial, []string{"microbial contamination", "bacterial contamination", "Microbial", "Bacterial"}},
	{ProcessControl, []string{
		"CGMP", "manufacturing defect", "quality", "recalled by a supplier", "recalled by a su",
		"packaging defect", "tablet defect", "foreign particle", "foreign matter", "Precipitate",
		"lack of processing control", "stability", "color variation", "foreign tablet", "foreign",
		"dissolution", "disintegration", "impurities", "impurity", "specification", "SOP", "particulate ",
		"OOS", "out-of-specification", "content uniformity", "uniformity", "pH", "moisture",
		"degradation product", "nitrosamine", "NDMA", "NDEA", "heavy metal", "residue", "imprinted",
		"defective container", "container defect", "leaking container", "container closure", "Crystallization",
		"chemical contamination", "cross-contamination", "metal", "glass", "Particle", "Cross contamination", "Discoloration",
	}},
}

// Keywords are matched case-insensitively; lower them once.
func init() {
	for i := range rules {
		for j, kw := range rules[i].keywords {
			rules[i].keywords[j] = strings.ToLower(kw)
		}
	}
}

// Categories returns the canonical categories in rule order.
func Categories() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.category
	}
	return out
}

// IsCanonical reports whether s is one of the eight canonical categories.
func IsCanonical(s string) bool {
	for _, r := range rules {
		if r.category == s {
			return true
		}
	}
	return false
}

// Reason returns the canonical category for a free-text recall reason. The
// first rule with a keyword contained in the reason wins; a reason matching no
// rule is returned unchanged.
func Reason(reason string) string {
	lower := strings.ToLower(reason)
	for _, r := range rules {
		if r.matches(lower) {
			return r.category
		}
	}
	return reason
}

func (r rule) matches(lower string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Apply rewrites the Reason of every record in place and returns how many
// records changed.
func Apply(records []recall.Record) int {
	changed := 0
	for i := range records {
		cat := Reason(records[i].Reason)
		if cat != records[i].Reason {
			records[i].Reason = cat
			changed++
		}
	}
	return changed
}
