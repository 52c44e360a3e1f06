package stats

// WeaponStats is the cumulative per-weapon breakdown inside a profile.
// Attachments is initialized lazily the first time an attachment is
// reported for the weapon.
type WeaponStats struct {
	Selected    int            `bson:"selected" json:"selected"`
	Kills       int            `bson:"kills" json:"kills"`
	TimePlayed  int64          `bson:"timePlayed" json:"timePlayed"`
	ShotsFired  int            `bson:"shotsFired" json:"shotsFired"`
	ShotsHit    int            `bson:"shotsHit" json:"shotsHit"`
	Accuracy    float64        `bson:"accuracy" json:"accuracy"`
	DamageDealt float64        `bson:"damageDealt" json:"damageDealt"`
	Attachments map[string]int `bson:"attachments,omitempty" json:"attachments,omitempty"`
}

// Upgrades is the cumulative upgrade-point breakdown.
type Upgrades struct {
	Speed  int `bson:"speed" json:"speed"`
	Reload int `bson:"reload" json:"reload"`
	Mags   int `bson:"mags" json:"mags"`
	View   int `bson:"view" json:"view"`
	Heal   int `bson:"heal" json:"heal"`
}

// Perks is the cumulative perk-use breakdown.
type Perks struct {
	Barrier int `bson:"barrier" json:"barrier"`
	Health  int `bson:"health" json:"health"`
	Gas     int `bson:"gas" json:"gas"`
	Frag    int `bson:"frag" json:"frag"`
	Turret  int `bson:"turret" json:"turret"`
	SD      int `bson:"sd" json:"sd"`
}

// Badge is a granted badge. Grants are monotonic: once present a badge
// is never revoked.
type Badge struct {
	Name      string `bson:"name" json:"name"`
	Info      string `bson:"info" json:"info"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// Profile is the cumulative per-player record. It is owned by the
// persistent store; the aggregator borrows it, mutates it in place and
// hands it back for storage. Derived fields (SPM, KDR, Accuracy) are
// recomputed after every merge.
type Profile struct {
	CreatedAt  int64 `bson:"createdAt" json:"createdAt"`
	LastActive int64 `bson:"lastActive" json:"lastActive"`

	Score             int     `bson:"score" json:"score"`
	TimePlayed        int64   `bson:"timePlayed" json:"timePlayed"`
	SPM               float64 `bson:"spm" json:"spm"`
	KDR               float64 `bson:"kdr" json:"kdr"`
	Kills             int     `bson:"kills" json:"kills"`
	Killstreak        int     `bson:"killstreak" json:"killstreak"`
	Deaths            int     `bson:"deaths" json:"deaths"`
	Accuracy          float64 `bson:"accuracy" json:"accuracy"`
	ShotsFired        int     `bson:"shotsFired" json:"shotsFired"`
	ShotsHit          int     `bson:"shotsHit" json:"shotsHit"`
	DamageDealt       float64 `bson:"damageDealt" json:"damageDealt"`
	DistanceCovered   int     `bson:"distanceCovered" json:"distanceCovered"`
	DoubleKills       int     `bson:"doubleKills" json:"doubleKills"`
	TripleKills       int     `bson:"tripleKills" json:"tripleKills"`
	MultiKills        int     `bson:"multiKills" json:"multiKills"`
	PointsTaken       int     `bson:"pointsTaken" json:"pointsTaken"`
	PointsNeutralized int     `bson:"pointsNeutralized" json:"pointsNeutralized"`

	Weapons  map[string]*WeaponStats `bson:"weapons" json:"weapons"`
	Upgrades Upgrades                `bson:"upgrades" json:"upgrades"`
	Perks    Perks                   `bson:"perks" json:"perks"`
	Badges   []Badge                 `bson:"badges" json:"badges"`
}

// NewProfile returns a zeroed profile with every weapon slot present.
func NewProfile(now int64) *Profile {
	weapons := make(map[string]*WeaponStats, len(weaponNames))
	for _, name := range weaponNames {
		weapons[name] = &WeaponStats{}
	}
	return &Profile{
		CreatedAt:  now,
		LastActive: now,
		Weapons:    weapons,
		Badges:     []Badge{},
	}
}

// HasBadge reports whether the profile already holds the named badge.
func (p *Profile) HasBadge(name string) bool {
	for _, b := range p.Badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// WeaponDelta is one weapon's share of a match delta.
type WeaponDelta struct {
	Kills        int     `json:"kills"`
	BulletsFired int     `json:"bulletsFired"`
	BulletsHit   int     `json:"bulletsHit"`
	DamageDealt  float64 `json:"damageDealt"`
}

// Delta is the raw per-match report for one player, produced externally
// at the end of one round. WeaponChosenID is optional: nil means the
// player stayed on the pistol the whole match.
type Delta struct {
	MatchID string `json:"matchId"`

	Score             int     `json:"score"`
	TimeAlive         int64   `json:"timeAlive"`
	PointsTaken       int     `json:"pointsTaken"`
	PointsNeutralized int     `json:"pointsNeutralized"`
	Kills             int     `json:"kills"`
	Deaths            int     `json:"deaths"`
	BulletsFired      int     `json:"bulletsFired"`
	BulletsHit        int     `json:"bulletsHit"`
	DamageDealt       float64 `json:"damageDealt"`
	DistanceCovered   float64 `json:"distanceCovered"`
	DoubleKills       int     `json:"doubleKills"`
	TripleKills       int     `json:"tripleKills"`
	MultiKills        int     `json:"multiKills"`

	Weapons []WeaponDelta `json:"weapons"`

	WeaponChosenID   *WeaponID `json:"weaponChosenID,omitempty"`
	WeaponChosenTime int64     `json:"weaponChosenTime,omitempty"`
	AttachmentID     int       `json:"attachmentID,omitempty"`
	PerkID           int       `json:"perkID,omitempty"`
	SpawnTime        int64     `json:"spawnTime"`

	Upgrades Upgrades `json:"upgrades"`
}
