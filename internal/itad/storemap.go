package itad

import (
	"sort"
	"strings"
)

// shopIDs maps lowercase store names and their common aliases to ITAD
// shop IDs.
var shopIDs = map[string]int{
	// Major PC stores
	"steam":           61,
	"epic game store": 16,
	"epic":            16,
	"gog":             35,
	"gog.com":         35,

	// Other PC stores
	"humble bundle":    7,
	"humble store":     7,
	"humble":           7,
	"fanatical":        15,
	"green man gaming": 4,
	"gmg":              4,
	"gamesplanet":      17,
	"gamersgate":       8,
	"origin":           13,
	"uplay":            25,
	"ubisoft connect":  25,
	"ubisoft store":    25,
	"battle.net":       37,
	"blizzard":         37,
	"itch.io":          33,
	"itch":             33,

	// Console stores
	"microsoft store":   48,
	"xbox":              48,
	"playstation store": 49,
	"psn":               49,
	"nintendo eshop":    50,
	"nintendo":          50,
}

// displayNames maps ITAD shop names to the names shown to users.
var displayNames = map[string]string{
	"Epic Games Store": "Epic Game Store",
	"GOG.com":          "GOG",
}

// defaultStores is the PC-focused store set used when no filter is given.
var defaultStores = []string{"steam", "epic game store", "gog"}

// ShopID converts a store name (case-insensitive, aliases accepted) to an
// ITAD shop ID. The second return is false for unknown stores.
func ShopID(store string) (int, bool) {
	id, ok := shopIDs[strings.ToLower(strings.TrimSpace(store))]
	return id, ok
}

// ShopIDs resolves a list of store names, silently dropping unknown ones.
func ShopIDs(stores []string) []int {
	ids := make([]int, 0, len(stores))
	for _, store := range stores {
		if id, ok := ShopID(store); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// DefaultShopIDs returns the shop IDs of the default store set.
func DefaultShopIDs() []int {
	return ShopIDs(defaultStores)
}

// DisplayName converts an ITAD shop name to its user-facing form.
func DisplayName(shopName string) string {
	if name, ok := displayNames[shopName]; ok {
		return name
	}
	return shopName
}

// AvailableStores returns the sorted set of supported store names.
func AvailableStores() []string {
	seen := make(map[int]bool, len(shopIDs))
	stores := make([]string, 0, len(shopIDs))
	// Longest name per shop ID is the canonical one; aliases are shorter.
	byID := make(map[int]string)
	for name, id := range shopIDs {
		if cur, ok := byID[id]; !ok || len(name) > len(cur) {
			byID[id] = name
		}
	}
	for id, name := range byID {
		if !seen[id] {
			seen[id] = true
			stores = append(stores, name)
		}
	}
	sort.Strings(stores)
	return stores
}
