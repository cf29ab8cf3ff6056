package shipping

import (
	"strconv"
	"strings"
)

// Zone is one row of the offline delivery-cost table. The table mirrors
// the rates the backend quotes so an offline estimate stays honest.
type Zone struct {
	Name             string
	BasePrice        float64
	MinFreeThreshold float64
	ETADays          int
	SameDay          bool
	Express          bool
}

type zoneMatch struct {
	keywords []string
	zone     Zone
}

// Ordered: first keyword hit wins, so the table is deterministic for a
// given address text.
var zoneTable = []zoneMatch{
	{
		keywords: []string{"cbd", "upper hill", "city centre", "city center"},
		zone: Zone{
			Name:             "CBD",
			BasePrice:        150,
			MinFreeThreshold: 2000,
			ETADays:          0,
			SameDay:          true,
			Express:          true,
		},
	},
	{
		keywords: []string{
			"westlands", "kilimani", "kileleshwa", "lavington",
			"parklands", "hurlingham", "ngara", "south b", "south c",
		},
		zone: Zone{
			Name:             "Inner Nairobi",
			BasePrice:        250,
			MinFreeThreshold: 3000,
			ETADays:          1,
			SameDay:          true,
			Express:          true,
		},
	},
	{
		keywords: []string{
			"karen", "langata", "runda", "ruaka", "kasarani",
			"embakasi", "rongai", "kitengela", "ruiru",
		},
		zone: Zone{
			Name:             "Outer Nairobi",
			BasePrice:        350,
			MinFreeThreshold: 3500,
			ETADays:          2,
			SameDay:          false,
			Express:          true,
		},
	},
}

var defaultZone = Zone{
	Name:             "Standard",
	BasePrice:        400,
	MinFreeThreshold: 5000,
	ETADays:          3,
	SameDay:          false,
	Express:          false,
}

// zoneFor matches area then city text against the table, case
// insensitive, substring semantics. Unmatched addresses get the
// default zone.
func zoneFor(area, city string) Zone {
	haystack := strings.ToLower(area + " " + city)
	for _, m := range zoneTable {
		for _, kw := range m.keywords {
			if strings.Contains(haystack, kw) {
				return m.zone
			}
		}
	}
	return defaultZone
}

func (z Zone) etaDescription() string {
	switch {
	case z.SameDay:
		return "Same day delivery available"
	case z.ETADays == 1:
		return "Next day delivery"
	default:
		return "Delivery in " + strconv.Itoa(z.ETADays) + " days"
	}
}
