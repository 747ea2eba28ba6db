package buildings

import (
	e "github.com/talgya/hive-economy/internal/economy"
)

// Research ids gating building levels.
const (
	ResearchApiculture     = "apiculture"
	ResearchMasonry        = "masonry"
	ResearchWaxWorking     = "wax_working"
	ResearchBrewing        = "brewing"
	ResearchBaking         = "baking"
	ResearchRoyalHusbandry = "royal_husbandry"
	ResearchHydraulics     = "hydraulics"
	ResearchTrade          = "trade"
	ResearchEducation      = "education"
)

// DefaultCatalog returns the built-in building table.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		// ── Infrastructure ───────────────────────────────────────────
		Definition{ID: TypeRoad, Name: "Road", Kind: KindRoad, Cost: e.Bundle{e.Stone: 1}},
		Definition{ID: TypeObelisk, Name: "Obelisk", Kind: KindObelisk},

		// ── Housing ──────────────────────────────────────────────────
		Definition{
			ID: "hut", Name: "Hut", Kind: KindHouse, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 4}, Housing: 2,
			Consumption: e.Bundle{e.Honey: 0.5},
			Levels: []LevelDelta{
				{AddedHousing: 2, AddedConsumption: e.Bundle{e.Honey: 0.5}, UpgradeCost: e.Bundle{e.Wood: 6, e.Clay: 2}},
				{AddedHousing: 2, AddedConsumption: e.Bundle{e.Water: 1}, UpgradeCost: e.Bundle{e.Stone: 6, e.Wax: 4}, Research: ResearchMasonry},
			},
		},
		Definition{
			ID: "cottage", Name: "Cottage", Kind: KindHouse, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 8, e.Clay: 4}, Housing: 4,
			Consumption: e.Bundle{e.Honey: 1, e.Water: 1},
			Levels: []LevelDelta{
				{AddedHousing: 2, AddedConsumption: e.Bundle{e.Bread: 0.5}, UpgradeCost: e.Bundle{e.Wood: 8, e.Stone: 4}},
				{AddedHousing: 3, AddedConsumption: e.Bundle{e.Candles: 0.5}, UpgradeCost: e.Bundle{e.Stone: 10, e.Wax: 6}, Research: ResearchMasonry},
				{AddedHousing: 3, AddedConsumption: e.Bundle{e.Mead: 0.5}, UpgradeCost: e.Bundle{e.Stone: 16, e.Coins: 20}, Research: ResearchTrade},
			},
		},
		Definition{
			ID: "hive_tower", Name: "Hive Tower", Kind: KindHouse, RequiresRoad: true, NeedsWater: true,
			Cost: e.Bundle{e.Stone: 20, e.Wax: 10, e.Wood: 10}, Housing: 10,
			Consumption: e.Bundle{e.Honey: 3, e.Water: 2},
			Levels: []LevelDelta{
				{AddedHousing: 6, AddedConsumption: e.Bundle{e.RoyalJelly: 0.2}, UpgradeCost: e.Bundle{e.Stone: 20, e.Propolis: 4}, Research: ResearchRoyalHusbandry},
			},
		},

		// ── Raw producers ────────────────────────────────────────────
		Definition{
			ID: "flower_field", Name: "Flower Field", Kind: KindProducer, NeedsWater: true,
			Cost: e.Bundle{e.Wood: 2}, WorkersRequired: 1,
			Production: e.Bundle{e.Nectar: 6, e.Pollen: 4},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Nectar: 3, e.Pollen: 2}, UpgradeCost: e.Bundle{e.Water: 10}, Research: ResearchHydraulics},
			},
		},
		Definition{
			ID: "well", Name: "Well", Kind: KindProducer, NeedsWater: true, RequiresRoad: true,
			Cost: e.Bundle{e.Stone: 4}, WorkersRequired: 1,
			Production: e.Bundle{e.Water: 8},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Water: 6}, UpgradeCost: e.Bundle{e.Stone: 8, e.Tools: 2}, Research: ResearchHydraulics},
			},
		},
		Definition{
			ID: "lumber_camp", Name: "Lumber Camp", Kind: KindProducer, Noisy: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 3}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Tools: 0.2},
			Production:  e.Bundle{e.Wood: 5},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Wood: 3}, AddedConsumption: e.Bundle{e.Tools: 0.1}, UpgradeCost: e.Bundle{e.Wood: 10, e.Tools: 2}},
			},
		},
		Definition{
			ID: "quarry", Name: "Quarry", Kind: KindProducer, Noisy: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6}, WorkersRequired: 3,
			Consumption: e.Bundle{e.Tools: 0.5},
			Production:  e.Bundle{e.Stone: 4},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Stone: 3}, UpgradeCost: e.Bundle{e.Wood: 12, e.Tools: 4}, Research: ResearchMasonry},
			},
		},
		Definition{
			ID: "clay_pit", Name: "Clay Pit", Kind: KindProducer, NeedsWater: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 4}, WorkersRequired: 2,
			Production: e.Bundle{e.Clay: 4},
		},
		Definition{
			ID: "farm", Name: "Farm", Kind: KindProducer, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Water: 2},
			Production:  e.Bundle{e.Grain: 8},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Grain: 4}, AddedConsumption: e.Bundle{e.Water: 1}, UpgradeCost: e.Bundle{e.Wood: 10, e.Tools: 2}, Research: ResearchHydraulics},
			},
		},

		// ── Hive industry ────────────────────────────────────────────
		Definition{
			ID: "beekeeper", Name: "Beekeeper", Kind: KindProducer, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6}, WorkersRequired: 3,
			Consumption: e.Bundle{e.Tools: 1},
			Production:  e.Bundle{e.Wax: 10, e.Honey: 30},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Honey: 10, e.Wax: 4}, AddedConsumption: e.Bundle{e.Tools: 0.5}, UpgradeCost: e.Bundle{e.Wood: 10, e.Tools: 2}, Research: ResearchApiculture},
				{ProductionBonus: e.Bundle{e.Honey: 15, e.Wax: 6}, AddedConsumption: e.Bundle{e.Pollen: 2}, UpgradeCost: e.Bundle{e.Stone: 12, e.Wax: 10}, Research: ResearchRoyalHusbandry},
			},
		},
		Definition{
			ID: "apiary", Name: "Apiary", Kind: KindProducer, RequiresRoad: true, NeedsWater: true,
			Cost: e.Bundle{e.Wood: 10, e.Wax: 5}, WorkersRequired: 4,
			Consumption: e.Bundle{e.Nectar: 6, e.Pollen: 2},
			Production:  e.Bundle{e.Honey: 20, e.Wax: 6},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Honey: 10}, AddedConsumption: e.Bundle{e.Nectar: 3}, UpgradeCost: e.Bundle{e.Stone: 10, e.Wax: 10}, Research: ResearchApiculture},
				{ProductionBonus: e.Bundle{e.Honey: 10, e.Wax: 4}, AddedConsumption: e.Bundle{e.Pollen: 2}, UpgradeCost: e.Bundle{e.Stone: 16, e.Propolis: 4}, Research: ResearchRoyalHusbandry},
				{ProductionBonus: e.Bundle{e.Honey: 15}, AddedConsumption: e.Bundle{e.Nectar: 4}, UpgradeCost: e.Bundle{e.Stone: 24, e.RoyalJelly: 2}, Research: ResearchRoyalHusbandry},
			},
		},
		Definition{
			ID: "wax_chandler", Name: "Wax Chandler", Kind: KindProducer, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6, e.Stone: 2}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Wax: 5},
			Production:  e.Bundle{e.Candles: 5},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Candles: 4}, AddedConsumption: e.Bundle{e.Wax: 3}, UpgradeCost: e.Bundle{e.Stone: 6, e.Tools: 2}, Research: ResearchWaxWorking},
			},
		},
		Definition{
			ID: "pollen_press", Name: "Pollen Press", Kind: KindProducer, Noisy: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6, e.Tools: 2}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Pollen: 4},
			Production:  e.Bundle{e.Propolis: 1},
		},
		Definition{
			ID: "jelly_vat", Name: "Jelly Vat", Kind: KindProducer, RequiresRoad: true,
			Cost: e.Bundle{e.Stone: 8, e.Wax: 8}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Honey: 5, e.Pollen: 3},
			Production:  e.Bundle{e.RoyalJelly: 1},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.RoyalJelly: 1}, AddedConsumption: e.Bundle{e.Honey: 3}, UpgradeCost: e.Bundle{e.Stone: 12, e.Propolis: 2}, Research: ResearchRoyalHusbandry},
			},
		},

		// ── Crafts ───────────────────────────────────────────────────
		Definition{
			ID: "toolsmith", Name: "Toolsmith", Kind: KindProducer, Noisy: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6, e.Stone: 4}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Wood: 2, e.Stone: 1},
			Production:  e.Bundle{e.Tools: 2},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Tools: 2}, AddedConsumption: e.Bundle{e.Wood: 1, e.Stone: 1}, UpgradeCost: e.Bundle{e.Stone: 10, e.Tools: 4}, Research: ResearchMasonry},
			},
		},
		Definition{
			ID: "mill", Name: "Mill", Kind: KindProducer, Noisy: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 8, e.Stone: 4}, WorkersRequired: 1,
			Consumption: e.Bundle{e.Grain: 4},
			Production:  e.Bundle{e.Flour: 4},
		},
		Definition{
			ID: "bakery", Name: "Bakery", Kind: KindProducer, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 6, e.Stone: 6}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Flour: 3, e.Water: 1},
			Production:  e.Bundle{e.Bread: 6},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Bread: 4}, AddedConsumption: e.Bundle{e.Flour: 2}, UpgradeCost: e.Bundle{e.Stone: 8, e.Clay: 6}, Research: ResearchBaking},
			},
		},
		Definition{
			ID: "meadery", Name: "Meadery", Kind: KindProducer, RequiresRoad: true, NeedsWater: true,
			Cost: e.Bundle{e.Wood: 8, e.Clay: 6}, WorkersRequired: 3,
			Consumption: e.Bundle{e.Honey: 6, e.Water: 2},
			Production:  e.Bundle{e.Mead: 3},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Mead: 2}, AddedConsumption: e.Bundle{e.Honey: 3}, UpgradeCost: e.Bundle{e.Clay: 10, e.Tools: 2}, Research: ResearchBrewing},
				{ProductionBonus: e.Bundle{e.Mead: 3}, AddedConsumption: e.Bundle{e.Honey: 4}, UpgradeCost: e.Bundle{e.Stone: 12, e.Coins: 30}, Research: ResearchTrade},
			},
		},

		// ── Services ─────────────────────────────────────────────────
		Definition{
			ID: "market", Name: "Market", Kind: KindService, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 10, e.Stone: 10}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Candles: 1, e.Mead: 1},
			Production:  e.Bundle{e.Coins: 8},
			Levels: []LevelDelta{
				{ProductionBonus: e.Bundle{e.Coins: 6}, AddedConsumption: e.Bundle{e.Bread: 1}, UpgradeCost: e.Bundle{e.Stone: 12, e.Coins: 20}, Research: ResearchTrade},
			},
		},
		Definition{
			ID: "library", Name: "Library", Kind: KindService, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 12, e.Stone: 8}, WorkersRequired: 2,
			Consumption: e.Bundle{e.Candles: 1},
		},
		Definition{
			ID: "school", Name: "School", Kind: KindService, Noisy: true, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 12, e.Stone: 6}, WorkersRequired: 3,
			Consumption: e.Bundle{e.Bread: 1},
			Levels: []LevelDelta{
				{AddedConsumption: e.Bundle{e.Candles: 1}, UpgradeCost: e.Bundle{e.Stone: 10, e.Coins: 10}, Research: ResearchEducation},
			},
		},
		Definition{
			ID: "warehouse", Name: "Warehouse", Kind: KindService, RequiresRoad: true,
			Cost: e.Bundle{e.Wood: 10}, WorkersRequired: 1,
		},
		Definition{
			ID: "fountain", Name: "Fountain", Kind: KindService, NeedsWater: true,
			Cost: e.Bundle{e.Stone: 6},
		},
	)
}
