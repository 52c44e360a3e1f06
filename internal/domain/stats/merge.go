package stats

import (
	"math"

	"github.com/takepoint/coordinator/internal/domain/funfact"
)

// FactSink receives the fun-fact increments emitted by a merge. The
// funfact.Set satisfies it.
type FactSink interface {
	Increment(name string, amount float64)
}

type nopSink struct{}

func (nopSink) Increment(string, float64) {}

// Merge folds one match delta into the cumulative profile, mutating it
// in place, and emits fun-fact increments to facts. now is the merge
// instant in epoch milliseconds.
//
// All raw counters are additive. Derived ratios are recomputed after the
// merge with zero-denominator guards that retain the prior value. The
// pistol slot accrues unconditionally; the chosen weapon slot accrues
// only when it exists in the profile; an unknown or missing slot is
// skipped, never fatal.
func Merge(p *Profile, d *Delta, now int64, facts FactSink) {
	if facts == nil {
		facts = nopSink{}
	}

	p.Score += d.Score
	facts.Increment(funfact.ScoreGained, float64(d.Score))
	p.TimePlayed += d.TimeAlive
	if p.TimePlayed > 0 {
		p.SPM = round2(float64(p.Score) / (float64(p.TimePlayed) / 60000))
	}
	p.PointsTaken += d.PointsTaken
	p.PointsNeutralized += d.PointsNeutralized

	p.Kills += d.Kills
	facts.Increment(funfact.Kills, float64(d.Kills))
	if d.Kills > p.Killstreak {
		p.Killstreak = d.Kills
	}
	p.Deaths += d.Deaths
	if p.Deaths > 0 {
		p.KDR = round2(float64(p.Kills) / float64(p.Deaths))
	}

	p.ShotsFired += d.BulletsFired
	p.ShotsHit += d.BulletsHit
	if p.ShotsFired > 0 {
		p.Accuracy = round2(100 * float64(p.ShotsHit) / float64(p.ShotsFired))
	}

	p.DamageDealt += d.DamageDealt
	facts.Increment(funfact.DamageDealt, d.DamageDealt)
	p.DistanceCovered += int(math.Round(d.DistanceCovered))
	p.DoubleKills += d.DoubleKills
	p.TripleKills += d.TripleKills
	p.MultiKills += d.MultiKills

	mergeWeapons(p, d, now, facts)

	facts.Increment(funfact.HoursPlayed, float64(now-d.SpawnTime)/(60*60*1000))

	p.Upgrades.Speed += d.Upgrades.Speed
	p.Upgrades.Reload += d.Upgrades.Reload
	p.Upgrades.Mags += d.Upgrades.Mags
	p.Upgrades.View += d.Upgrades.View
	p.Upgrades.Heal += d.Upgrades.Heal

	if name, ok := PerkName(d.PerkID); d.PerkID != 0 && ok {
		incrementPerk(&p.Perks, name)
	}

	p.LastActive = now
}

func mergeWeapons(p *Profile, d *Delta, now int64, facts FactSink) {
	// The pistol always accrues its share of the match.
	pistol := p.Weapons[weaponNames[WeaponPistol]]
	if pistol == nil {
		pistol = &WeaponStats{}
		p.Weapons[weaponNames[WeaponPistol]] = pistol
	}
	if pd := weaponDelta(d, WeaponPistol); pd != nil {
		pistol.Kills += pd.Kills
		facts.Increment(funfact.KillsWithPistol, float64(pd.Kills))
		pistol.ShotsFired += pd.BulletsFired
		pistol.ShotsHit += pd.BulletsHit
		if pistol.ShotsFired > 0 {
			pistol.Accuracy = round2(100 * float64(pistol.ShotsHit) / float64(pistol.ShotsFired))
		}
		pistol.DamageDealt += pd.DamageDealt
	}

	if d.WeaponChosenID == nil {
		// The whole life was spent on the pistol.
		pistol.TimePlayed += now - d.SpawnTime
		return
	}

	id := *d.WeaponChosenID
	name, ok := id.Name()
	if !ok {
		// Reserved id with no slot: skip, never fail the merge.
		return
	}
	chosen := p.Weapons[name]
	wd := weaponDelta(d, id)
	if chosen == nil || wd == nil {
		// Slot absent from the profile or from the delta: skip.
		return
	}

	chosen.Kills += wd.Kills
	facts.Increment("Kills with "+name, float64(wd.Kills))
	chosen.ShotsFired += wd.BulletsFired
	chosen.ShotsHit += wd.BulletsHit
	if chosen.ShotsFired > 0 {
		chosen.Accuracy = round2(100 * float64(chosen.ShotsHit) / float64(chosen.ShotsFired))
	}
	chosen.DamageDealt += wd.DamageDealt
	chosen.Selected++

	// Time is split at the switch instant: before it counts toward the
	// pistol, after it toward the chosen weapon.
	chosen.TimePlayed += now - d.WeaponChosenTime
	pistol.TimePlayed += d.WeaponChosenTime - d.SpawnTime

	if chosen.Attachments == nil {
		chosen.Attachments = map[string]int{"1": 0, "2": 0}
	}
	if d.AttachmentID != 0 {
		key, ok := attachmentKey(d.AttachmentID)
		if ok {
			chosen.Attachments[key]++
		}
	}
}

func weaponDelta(d *Delta, id WeaponID) *WeaponDelta {
	if int(id) < 0 || int(id) >= len(d.Weapons) {
		return nil
	}
	return &d.Weapons[id]
}

func attachmentKey(id int) (string, bool) {
	switch id {
	case 1:
		return "1", true
	case 2:
		return "2", true
	default:
		return "", false
	}
}

func incrementPerk(p *Perks, name string) {
	switch name {
	case "barrier":
		p.Barrier++
	case "health":
		p.Health++
	case "gas":
		p.Gas++
	case "frag":
		p.Frag++
	case "turret":
		p.Turret++
	case "sd":
		p.SD++
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
