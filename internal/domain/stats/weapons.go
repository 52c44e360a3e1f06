// Package stats folds per-match deltas into cumulative player profiles.
package stats

// WeaponID selects the second weapon slot of a match. The pistol is the
// default, always-available weapon and accrues unconditionally.
type WeaponID int

// The fixed weapon enumeration. Ids are wire values reported by game
// servers.
const (
	WeaponPistol WeaponID = iota
	WeaponAssault
	WeaponSniper
	WeaponShotgun
)

var weaponNames = [...]string{"pistol", "assault", "sniper", "shotgun"}

// Name returns the profile slot key for id. The lookup may legitimately
// miss: a reserved id has no corresponding slot.
func (id WeaponID) Name() (string, bool) {
	if id < 0 || int(id) >= len(weaponNames) {
		return "", false
	}
	return weaponNames[id], true
}

// WeaponNames returns the slot keys of the full enumeration.
func WeaponNames() []string {
	out := make([]string, len(weaponNames))
	copy(out, weaponNames[:])
	return out
}

// perkNames maps 1-based perk ids to profile counters.
var perkNames = [...]string{"barrier", "health", "gas", "frag", "turret", "sd"}

// PerkName returns the profile key for a 1-based perk id.
func PerkName(id int) (string, bool) {
	if id < 1 || id > len(perkNames) {
		return "", false
	}
	return perkNames[id-1], true
}
