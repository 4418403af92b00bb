// Package lcz implements the 17-class Local Climate Zone taxonomy of
// Stewart and Oke (2012) as used by WUDAPT global LCZ rasters.
//
// A Zone is its raw integer code, so any integer converts to a Zone without
// loss: codes 1-17 are the standard classes, everything else is carried
// through as an unrecognized zone. The numeric convention is the direct
// 1-17 scheme where the natural classes A-G occupy 11-17 and 17 is Water.
package lcz

import "fmt"

// Zone is a Local Climate Zone class. The underlying value is the raw
// classification code, so conversion from and back to a code is lossless
// for every integer, not just the 17 standard ones.
type Zone int

// Standard LCZ classes, built types 1-10 and natural types 11-17 (A-G).
const (
	// ZoneNoSample marks a point with no valid raster observation
	// (out of coverage or a no-data cell).
	ZoneNoSample Zone = 0

	ZoneCompactHighRise    Zone = 1
	ZoneCompactMidRise     Zone = 2
	ZoneCompactLowRise     Zone = 3
	ZoneOpenHighRise       Zone = 4
	ZoneOpenMidRise        Zone = 5
	ZoneOpenLowRise        Zone = 6
	ZoneLightweightLowRise Zone = 7
	ZoneLargeLowRise       Zone = 8
	ZoneSparselyBuilt      Zone = 9
	ZoneHeavyIndustry      Zone = 10
	ZoneDenseTrees         Zone = 11 // A
	ZoneScatteredTrees     Zone = 12 // B
	ZoneBushScrub          Zone = 13 // C
	ZoneLowPlants          Zone = 14 // D
	ZoneBareRockPaved      Zone = 15 // E
	ZoneBareSoilSand       Zone = 16 // F
	ZoneWater              Zone = 17 // G
)

// MinCode and MaxCode bound the standard class codes. Override values
// outside this range are rejected.
const (
	MinCode = 1
	MaxCode = 17
)

// Category is the coarse urban-morphology grouping of a Zone.
type Category int

const (
	Urban Category = iota
	Suburban
	Rural
)

// String returns the display form used in output tables.
func (c Category) String() string {
	switch c {
	case Urban:
		return "Urban"
	case Suburban:
		return "Suburban"
	default:
		return "Rural"
	}
}

// FromCode converts a raw classification code to a Zone. It is total:
// codes outside 1-17 yield an unrecognized Zone carrying the raw value.
func FromCode(code int) Zone {
	return Zone(code)
}

// Code returns the raw classification code of the zone.
func (z Zone) Code() int {
	return int(z)
}

// Known reports whether z is one of the 17 standard classes.
func (z Zone) Known() bool {
	return z >= MinCode && z <= MaxCode
}

var fullNames = map[Zone]string{
	ZoneCompactHighRise:    "Compact high-rise",
	ZoneCompactMidRise:     "Compact midrise",
	ZoneCompactLowRise:     "Compact low-rise",
	ZoneOpenHighRise:       "Open high-rise",
	ZoneOpenMidRise:        "Open midrise",
	ZoneOpenLowRise:        "Open low-rise",
	ZoneLightweightLowRise: "Lightweight low-rise",
	ZoneLargeLowRise:       "Large low-rise",
	ZoneSparselyBuilt:      "Sparsely built",
	ZoneHeavyIndustry:      "Heavy industry",
	ZoneDenseTrees:         "Dense trees",
	ZoneScatteredTrees:     "Scattered trees",
	ZoneBushScrub:          "Bush, scrub",
	ZoneLowPlants:          "Low plants",
	ZoneBareRockPaved:      "Bare rock or paved",
	ZoneBareSoilSand:       "Bare soil or sand",
	ZoneWater:              "Water",
}

// FullName returns the human-readable class name. Unrecognized zones get a
// distinct label that embeds the raw code so it survives into output tables.
func (z Zone) FullName() string {
	if name, ok := fullNames[z]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (code %d)", int(z))
}

// Category returns the coarse grouping for the zone.
//
// The mapping deviates from a naive 1-6/7-10/11-17 split: open built forms
// (4-6) and lightweight low-rise (7) are treated as Suburban, while large
// low-rise (8) and heavy industry (10) count as Urban; sparsely built (9)
// and every natural class is Rural. Unrecognized codes default to Rural,
// since in practice they are no-data or nonstandard natural-surface
// encodings.
func (z Zone) Category() Category {
	switch z {
	case ZoneCompactHighRise, ZoneCompactMidRise, ZoneCompactLowRise,
		ZoneLargeLowRise, ZoneHeavyIndustry:
		return Urban
	case ZoneOpenHighRise, ZoneOpenMidRise, ZoneOpenLowRise,
		ZoneLightweightLowRise:
		return Suburban
	case ZoneSparselyBuilt,
		ZoneDenseTrees, ZoneScatteredTrees, ZoneBushScrub, ZoneLowPlants,
		ZoneBareRockPaved, ZoneBareSoilSand, ZoneWater:
		return Rural
	default:
		return Rural
	}
}

// String implements fmt.Stringer using the full class name.
func (z Zone) String() string {
	return z.FullName()
}
