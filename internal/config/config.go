package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

type cardEntry struct {
	CardID       string `json:"card_id"`
	Name         string `json:"name"`
	Attack       int    `json:"attack"`
	Armor        int    `json:"armor"`
	Agility      int    `json:"agility"`
	Intelligence int    `json:"intelligence"`
	Powers       int    `json:"powers"`
	Vitality     int    `json:"vitality"`
	ImageRef     string `json:"image_ref"`
}

type abilityEntry struct {
	Key     string     `json:"key"`
	Name    string     `json:"name"`
	Kind    string     `json:"kind"`
	Weights game.Stats `json:"weights"`
}

type rawConfig struct {
	CardList    []cardEntry    `json:"card_list"`
	AbilityList []abilityEntry `json:"ability_list"`
	Server      *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Optional phase length overrides, milliseconds. Zero keeps the default.
	Timings *struct {
		CooldownMS  int64 `json:"cooldown_ms"`
		SelectionMS int64 `json:"selection_ms"`
		BattleMS    int64 `json:"battle_ms"`
	} `json:"timings"`
	Rewards *struct {
		Win   int64 `json:"win"`
		WinAd int64 `json:"win_with_ad"`
		Tie   int64 `json:"tie"`
	} `json:"rewards"`
	Bot *struct {
		MinDelayMS  int64  `json:"min_delay_ms"`
		MaxDelayMS  int64  `json:"max_delay_ms"`
		AbilityKind string `json:"ability_kind"`
	} `json:"bot"`
}

// LoadedConfig is the parsed, validated runtime configuration. The card
// catalog and ability weight vectors are config-authoritative and never
// persisted.
type LoadedConfig struct {
	Cards          []game.Card
	Abilities      []game.Ability
	ServerAddress  string
	Timings        engine.Timings
	Rewards        engine.Rewards
	BotMinDelay    time.Duration
	BotMaxDelay    time.Duration
	BotAbilityKind game.AbilityKind
}

// LoadConfig reads the configuration file at path. It requires `card_list`
// with at least one full deck's worth of cards and validates uniqueness of
// card IDs and ability keys.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(rc.CardList) < game.DeckSize {
		return nil, fmt.Errorf("config file %s: card_list needs at least %d cards, got %d", path, game.DeckSize, len(rc.CardList))
	}

	cards := make([]game.Card, 0, len(rc.CardList))
	idSet := make(map[string]struct{}, len(rc.CardList))
	for _, e := range rc.CardList {
		id := strings.TrimSpace(e.CardID)
		if id == "" {
			return nil, fmt.Errorf("config file %s: card entry missing 'card_id'", path)
		}
		if _, exists := idSet[strings.ToLower(id)]; exists {
			return nil, fmt.Errorf("config file %s: duplicate card_id '%s'", path, id)
		}
		idSet[strings.ToLower(id)] = struct{}{}
		cards = append(cards, game.Card{
			CardID:   id,
			Name:     e.Name,
			ImageRef: e.ImageRef,
			Stats: game.Stats{
				Attack:       e.Attack,
				Armor:        e.Armor,
				Agility:      e.Agility,
				Intelligence: e.Intelligence,
				Powers:       e.Powers,
				Vitality:     e.Vitality,
			},
		})
	}

	abilities := make([]game.Ability, 0, len(rc.AbilityList))
	keySet := make(map[string]struct{}, len(rc.AbilityList))
	for _, e := range rc.AbilityList {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			return nil, fmt.Errorf("config file %s: ability entry missing 'key'", path)
		}
		if _, exists := keySet[key]; exists {
			return nil, fmt.Errorf("config file %s: duplicate ability key '%s'", path, key)
		}
		keySet[key] = struct{}{}
		kind := game.AbilityKind(e.Kind)
		if kind != game.AbilityAttack && kind != game.AbilityDefense {
			return nil, fmt.Errorf("config file %s: ability '%s' has unknown kind '%s'", path, key, e.Kind)
		}
		abilities = append(abilities, game.Ability{
			Key:     key,
			Name:    e.Name,
			Kind:    kind,
			Weights: e.Weights,
		})
	}

	out := &LoadedConfig{
		Cards:          cards,
		Abilities:      abilities,
		ServerAddress:  ":8080",
		Timings:        engine.DefaultTimings(),
		Rewards:        engine.DefaultRewards(),
		BotMinDelay:    2000 * time.Millisecond,
		BotMaxDelay:    5000 * time.Millisecond,
		BotAbilityKind: game.AbilityAttack,
	}
	if rc.Server != nil && rc.Server.Address != "" {
		out.ServerAddress = rc.Server.Address
	}
	if rc.Timings != nil {
		if rc.Timings.CooldownMS > 0 {
			out.Timings.Cooldown = time.Duration(rc.Timings.CooldownMS) * time.Millisecond
		}
		if rc.Timings.SelectionMS > 0 {
			out.Timings.Selection = time.Duration(rc.Timings.SelectionMS) * time.Millisecond
		}
		if rc.Timings.BattleMS > 0 {
			out.Timings.Battle = time.Duration(rc.Timings.BattleMS) * time.Millisecond
		}
	}
	if rc.Rewards != nil {
		if rc.Rewards.Win > 0 {
			out.Rewards.Win = rc.Rewards.Win
		}
		if rc.Rewards.WinAd > 0 {
			out.Rewards.WinWithAd = rc.Rewards.WinAd
		}
		if rc.Rewards.Tie > 0 {
			out.Rewards.Tie = rc.Rewards.Tie
		}
	}
	if rc.Bot != nil {
		if rc.Bot.MinDelayMS > 0 {
			out.BotMinDelay = time.Duration(rc.Bot.MinDelayMS) * time.Millisecond
		}
		if rc.Bot.MaxDelayMS > 0 {
			out.BotMaxDelay = time.Duration(rc.Bot.MaxDelayMS) * time.Millisecond
		}
		if rc.Bot.AbilityKind != "" {
			kind := game.AbilityKind(rc.Bot.AbilityKind)
			if kind != game.AbilityAttack && kind != game.AbilityDefense {
				return nil, fmt.Errorf("config file %s: bot.ability_kind '%s' is unknown", path, rc.Bot.AbilityKind)
			}
			out.BotAbilityKind = kind
		}
	}
	if out.BotMaxDelay < out.BotMinDelay {
		return nil, fmt.Errorf("config file %s: bot.max_delay_ms must be >= bot.min_delay_ms", path)
	}
	return out, nil
}
