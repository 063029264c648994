package models

import "fmt"

// DefaultTopology returns the camp's fixed bungalow layout: villages A
// and C hold six type A bungalows each (3 single beds), village B holds
// six type B bungalows (1 single + 1 double). Bungalow and bed IDs are
// stable names, not generated, so assignments survive reseeding.
func DefaultTopology() []Bungalow {
	var bungalows []Bungalow

	for _, village := range []Village{VillageA, VillageB, VillageC} {
		bungalowType := BungalowTypeA
		if village == VillageB {
			bungalowType = BungalowTypeB
		}

		for i := 1; i <= 6; i++ {
			name := fmt.Sprintf("%s%d", village, i)
			bg := Bungalow{
				ID:      name,
				Name:    name,
				Village: village,
				Type:    bungalowType,
				Beds:    bedsForType(name, bungalowType),
			}
			// The first bungalow of each village is the accessible one.
			if i == 1 {
				bg.Amenities = []string{"accessible"}
			}
			bungalows = append(bungalows, bg)
		}
	}

	return bungalows
}

func bedsForType(bungalowID, bungalowType string) []Bed {
	if bungalowType == BungalowTypeB {
		return []Bed{
			{ID: bungalowID + "-1", Type: BedTypeSingle},
			{ID: bungalowID + "-2", Type: BedTypeDouble},
		}
	}
	return []Bed{
		{ID: bungalowID + "-1", Type: BedTypeSingle},
		{ID: bungalowID + "-2", Type: BedTypeSingle},
		{ID: bungalowID + "-3", Type: BedTypeSingle},
	}
}
