// Package badge evaluates badge eligibility over cumulative profiles.
//
// Eligibility is determined purely by predicates over cumulative fields
// and is monotonic per badge: once granted, a badge is never revoked.
package badge

import "github.com/takepoint/coordinator/internal/domain/stats"

// Rule is one badge with its eligibility predicate.
type Rule struct {
	Name     string
	Info     string
	Eligible func(p *stats.Profile) bool
}

// rules is the badge rule table.
var rules = []Rule{
	{
		Name: "pacifist",
		Info: "Reached 100,000 score without dealing damage",
		Eligible: func(p *stats.Profile) bool {
			return p.Score >= 100_000 && p.DamageDealt == 0
		},
	},
}

// Rules returns the rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// GrantEligible appends every newly-eligible badge to the profile with
// the given grant timestamp, skipping badges already held. Returns the
// badges granted by this call.
func GrantEligible(p *stats.Profile, now int64) []stats.Badge {
	var granted []stats.Badge
	for _, rule := range rules {
		if p.HasBadge(rule.Name) || !rule.Eligible(p) {
			continue
		}
		b := stats.Badge{Name: rule.Name, Info: rule.Info, Timestamp: now}
		p.Badges = append(p.Badges, b)
		granted = append(granted, b)
	}
	return granted
}
