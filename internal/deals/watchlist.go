package deals

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rpillai/dealwatch/internal/domain"
)

// DefaultWatchlist is the curated set of popular Steam titles checked on
// every refresh. Free-to-play titles are left out since they never qualify
// as a discount.
func DefaultWatchlist() []domain.GameRef {
	return steamRefs(
		"1245620", // Elden Ring
		"1091500", // Cyberpunk 2077
		"1174180", // Red Dead Redemption 2
		"292030",  // The Witcher 3
		"271590",  // Grand Theft Auto V
		"1086940", // Baldur's Gate 3
		"814380",  // Sekiro
		"582010",  // Monster Hunter: World
		"1446780", // Monster Hunter Rise
		"2054970", // Dragon's Dogma 2
		"2050650", // Resident Evil 4
		"1196590", // Resident Evil Village
		"883710",  // Resident Evil 2
		"1817070", // Marvel's Spider-Man Remastered
		"1888930", // The Last of Us Part I
		"1593500", // God of War
		"2322010", // God of War Ragnarok
		"990080",  // Hogwarts Legacy
		"1716740", // Starfield
		"2358720", // Black Myth: Wukong
		"578080",  // PUBG: Battlegrounds
		"1966720", // Lethal Company
		"962130",  // Grounded
		"892970",  // Valheim
		"739630",  // Phasmophobia
		"413150",  // Stardew Valley
		"105600",  // Terraria
		"108600",  // Project Zomboid
		"252490",  // Rust
		"322330",  // Don't Starve Together
		"526870",  // Satisfactory
		"427520",  // Factorio
		"975370",  // Dwarf Fortress
		"1145360", // Hades
		"1145350", // Hades II
		"367520",  // Hollow Knight
		"504230",  // Celeste
		"620",     // Portal 2
		"220",     // Half-Life 2
		"394360",  // Hearts of Iron IV
		"281990",  // Stellaris
		"1158310", // Crusader Kings III
	)
}

// EmergencyRefs is the short list re-checked live when both the cache and
// its file are unusable. Kept to titles that sit in a sale more often than
// not, so the tier usually produces something.
func EmergencyRefs() []domain.GameRef {
	return steamRefs(
		"292030",  // The Witcher 3
		"1091500", // Cyberpunk 2077
		"271590",  // Grand Theft Auto V
		"1174180", // Red Dead Redemption 2
		"1245620", // Elden Ring
		"582010",  // Monster Hunter: World
		"814380",  // Sekiro
		"883710",  // Resident Evil 2
		"1196590", // Resident Evil Village
		"1593500", // God of War
		"990080",  // Hogwarts Legacy
		"413150",  // Stardew Valley
		"105600",  // Terraria
		"322330",  // Don't Starve Together
		"620",     // Portal 2
	)
}

func steamRefs(ids ...string) []domain.GameRef {
	refs := make([]domain.GameRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, domain.NewGameRef(domain.PlatformSteam, id))
	}
	return refs
}

// LoadWatchlist reads a JSON array of game refs ("steam:620" or bare Steam
// app ids) from path. An empty path returns the default list.
func LoadWatchlist(path string) ([]domain.GameRef, error) {
	if path == "" {
		return DefaultWatchlist(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse watchlist file: %w", err)
	}

	refs := make([]domain.GameRef, 0, len(raw))
	for _, entry := range raw {
		ref, err := domain.ParseGameRef(entry)
		if err != nil {
			return nil, fmt.Errorf("watchlist entry %q: %w", entry, err)
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("watchlist file %s is empty", path)
	}
	return refs, nil
}
