package rewards

import "time"

// Rarity orders badges from common (1) to legendary (4).
type Rarity int

const (
	RarityCommon Rarity = iota + 1
	RarityRare
	RarityEpic
	RarityLegendary
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "COMMON"
	case RarityRare:
		return "RARE"
	case RarityEpic:
		return "EPIC"
	case RarityLegendary:
		return "LEGENDARY"
	}
	return "UNKNOWN"
}

// Badge is a cosmetic award. It is minted locked; Unlock stamps the
// timestamp exactly once and later calls are no-ops, so a badge's unlock
// time never moves within a session.
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Rarity      Rarity     `json:"rarity"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
}

// Unlock stamps the badge. Re-unlocking an already unlocked badge does not
// change the original timestamp.
func (b *Badge) Unlock(at time.Time) {
	if b.UnlockedAt != nil {
		return
	}
	t := at
	b.UnlockedAt = &t
}

// Unlocked reports whether the badge has been earned.
func (b *Badge) Unlocked() bool { return b.UnlockedAt != nil }

// Badge catalog IDs.
const (
	BadgeFirstChallenge = "first-challenge"
	BadgeTopOnePercent  = "top-one-percent"
	BadgeFlawless       = "flawless"
	BadgeStreak3        = "streak-3"
)

// catalog holds the badge definitions in mint order. Entries are templates;
// minting copies them so catalog state never mutates.
var catalog = []Badge{
	{
		ID:          BadgeFirstChallenge,
		Name:        "First Steps",
		Description: "Cleared your first weekly challenge",
		Icon:        "trophy",
		Rarity:      RarityCommon,
	},
	{
		ID:          BadgeStreak3,
		Name:        "On a Roll",
		Description: "Cleared three weekly challenges in a row",
		Icon:        "flame",
		Rarity:      RarityRare,
	},
	{
		ID:          BadgeFlawless,
		Name:        "Flawless",
		Description: "Cleared a challenge with no misses, power-ups or pauses",
		Icon:        "gem",
		Rarity:      RarityEpic,
	},
	{
		ID:          BadgeTopOnePercent,
		Name:        "Court Royalty",
		Description: "Posted a top 1% score on a weekly challenge",
		Icon:        "crown",
		Rarity:      RarityLegendary,
	},
}

func catalogBadge(id string) (Badge, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
