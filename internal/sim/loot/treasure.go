package loot

// DefaultCap is the most stacks a treasure chest receives.
const DefaultCap = 14

var (
	weaponEnchants = []EnchantOption{
		{Enchant: Enchant{ID: "sharpness", Level: 1}, Probability: 0.5},
		{Enchant: Enchant{ID: "lure", Level: 1}, Probability: 0.5},
	}
	armorEnchants = []EnchantOption{
		{Enchant: Enchant{ID: "protection", Level: 2}, Probability: 0.5},
		{Enchant: Enchant{ID: "binding_curse", Level: 1}, Probability: 0.5},
	}
)

// DefaultTreasureTable is the meteor chest pool. STICK appears twice on
// purpose: a common small stack and a rarer large one.
func DefaultTreasureTable() []Entry {
	return []Entry{
		{Item: "DIAMOND", Min: 1, Max: 3, Probability: 0.14},
		{Item: "DIAMOND_HORSE_ARMOR", Min: 1, Max: 1, Probability: 0.05},
		{Item: "GOLDEN_HORSE_ARMOR", Min: 1, Max: 1, Probability: 0.14},
		{Item: "GOLD_INGOT", Min: 1, Max: 6, Probability: 0.27},
		{Item: "IRON_HORSE_ARMOR", Min: 1, Max: 1, Probability: 0.20},
		{Item: "IRON_INGOT", Min: 1, Max: 7, Probability: 0.48},
		{Item: "SADDLE", Min: 1, Max: 1, Probability: 0.40},
		{Item: "STICK", Min: 1, Max: 15, Probability: 0.69},
		{Item: "COAL", Min: 1, Max: 11, Probability: 0.82},
		{Item: "GOLDEN_SWORD", Min: 1, Max: 1, Probability: 0.4, Enchants: weaponEnchants},
		{Item: "GOLDEN_AXE", Min: 1, Max: 1, Probability: 0.4, Enchants: weaponEnchants},
		{Item: "GOLDEN_HOE", Min: 1, Max: 1, Probability: 0.5},
		{Item: "GOLDEN_HELMET", Min: 1, Max: 1, Probability: 0.4, Enchants: armorEnchants},
		{Item: "GOLDEN_CHESTPLATE", Min: 1, Max: 1, Probability: 0.4, Enchants: armorEnchants},
		{Item: "GOLDEN_LEGGINGS", Min: 1, Max: 1, Probability: 0.4, Enchants: armorEnchants},
		{Item: "GOLDEN_BOOTS", Min: 1, Max: 1, Probability: 0.4, Enchants: armorEnchants},
		{Item: "BREAD", Min: 6, Max: 8, Probability: 0.5},
		{Item: "GOLDEN_APPLE", Min: 1, Max: 2, Probability: 0.15},
		{Item: "GOLDEN_CARROT", Min: 4, Max: 5, Probability: 0.25},
		{Item: "CAKE", Min: 1, Max: 1, Probability: 0.3},
		{Item: "SALMON", Min: 5, Max: 8, Probability: 0.35},
		{Item: "COOKED_SALMON", Min: 4, Max: 5, Probability: 0.2},
		{Item: "STICK", Min: 10, Max: 20, Probability: 0.4},
	}
}

func DefaultEngine() Engine {
	return Engine{Table: DefaultTreasureTable(), Cap: DefaultCap}
}
