package dedupe

// Package dedupe provides the shared singleflight group used to deduplicate
// concurrent match-creation requests. A player double-tapping "battle" in the
// mini-app fires two identical requests; the group ensures only one match
// record is created while the second caller receives the same result.

import "golang.org/x/sync/singleflight"

// MatchGroup deduplicates match creation keyed by the player's Telegram ID.
var MatchGroup singleflight.Group
