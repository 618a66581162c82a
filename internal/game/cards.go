package game

// Stats holds the six stat dimensions shared by cards and ability weight
// vectors. Synergy is always the plain sum of the dimensions.
type Stats struct {
	Attack       int `json:"attack"`
	Armor        int `json:"armor"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
	Powers       int `json:"powers"`
	Vitality     int `json:"vitality"`
}

// Sum returns the scalar synergy contribution of the stat vector.
func (s Stats) Sum() int {
	return s.Attack + s.Armor + s.Agility + s.Intelligence + s.Powers + s.Vitality
}

// Card is one deck entry. Stats come from the config catalog; ImageRef is an
// opaque asset reference the battle core never resolves.
type Card struct {
	CardID   string `json:"card_id"`
	Name     string `json:"name"`
	Stats    Stats  `json:"stats"`
	ImageRef string `json:"image_ref"`
}

// Synergy is the card's scalar contribution to the battle score.
func (c Card) Synergy() int { return c.Stats.Sum() }

// Deck is an ordered, fixed-length card sequence assigned at match creation.
type Deck []Card

// DeckSize is the required deck length for both sides of a match.
const DeckSize = 10

// Contains reports whether the deck holds a card with the given ID.
func (d Deck) Contains(cardID string) bool {
	for _, c := range d {
		if c.CardID == cardID {
			return true
		}
	}
	return false
}

// Find returns the deck card with the given ID.
func (d Deck) Find(cardID string) (Card, bool) {
	for _, c := range d {
		if c.CardID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// AbilityKind partitions the ability catalog.
type AbilityKind string

const (
	AbilityAttack  AbilityKind = "attack"
	AbilityDefense AbilityKind = "defense"
)

// Ability maps a catalog key to a fixed weight vector over the stat
// dimensions. Weights are design constants loaded from config, not derived
// from any card.
type Ability struct {
	Key     string      `json:"key"`
	Name    string      `json:"name"`
	Kind    AbilityKind `json:"kind"`
	Weights Stats       `json:"weights"`
}

// Synergy is the ability's scalar contribution: the weight vector's sum.
func (a Ability) Synergy() int { return a.Weights.Sum() }
