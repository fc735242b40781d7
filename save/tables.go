package save

// Progression tables mapping a governing attribute (1..99) to its derived
// resource pool, per the game's published level curves. Index 0 is unused.
// Attribute values above 99 clamp to the table's last entry.

var hpTable = [100]uint16{0,
	300, 304, 312, 322, 334, 347, 362, 378, 394, 412,
	430, 448, 468, 489, 510, 532, 555, 579, 603, 628,
	654, 680, 707, 734, 762, 790, 819, 848, 878, 908,
	938, 969, 1000, 1033, 1066, 1100, 1135, 1171, 1208, 1450,
	1476, 1503, 1529, 1555, 1581, 1606, 1631, 1656, 1680, 1704,
	1727, 1750, 1772, 1793, 1814, 1834, 1853, 1871, 1887, 1900,
	1906, 1912, 1918, 1924, 1930, 1936, 1942, 1948, 1954, 1959,
	1965, 1971, 1977, 1982, 1988, 1993, 1999, 2004, 2010, 2015,
	2020, 2026, 2031, 2036, 2041, 2046, 2051, 2056, 2060, 2065,
	2070, 2074, 2078, 2082, 2086, 2090, 2094, 2097, 2100,
}

var fpTable = [100]uint16{0,
	40, 43, 46, 49, 52, 55, 58, 62, 65, 68,
	71, 74, 77, 81, 84, 87, 90, 93, 96, 100,
	106, 112, 118, 124, 130, 136, 142, 148, 154, 160,
	166, 172, 178, 184, 190, 196, 202, 208, 214, 220,
	226, 231, 237, 243, 248, 254, 260, 266, 271, 277,
	283, 289, 295, 300, 304, 307, 310, 313, 316, 319,
	322, 325, 328, 331, 334, 337, 340, 342, 345, 348,
	351, 354, 356, 359, 362, 365, 367, 370, 373, 375,
	378, 380, 383, 385, 388, 391, 393, 396, 398, 401,
	403, 406, 408, 411, 413, 416, 418, 421, 450,
}

var staminaTable = [100]uint16{0,
	80, 81, 82, 84, 85, 87, 88, 90, 91, 92,
	94, 95, 97, 98, 100, 101, 103, 105, 106, 108,
	110, 111, 113, 115, 116, 118, 120, 121, 123, 125,
	126, 128, 129, 131, 132, 134, 135, 137, 138, 140,
	141, 143, 144, 146, 147, 149, 150, 152, 153, 155,
	155, 155, 155, 156, 156, 156, 157, 157, 157, 158,
	158, 158, 158, 159, 159, 159, 160, 160, 160, 161,
	161, 161, 162, 162, 162, 162, 163, 163, 163, 164,
	164, 164, 165, 165, 165, 166, 166, 166, 166, 167,
	167, 167, 168, 168, 168, 169, 169, 169, 170,
}

func derivedPool(table *[100]uint16, attr uint8) uint16 {
	if attr < 1 {
		attr = 1
	}
	if attr > 99 {
		attr = 99
	}
	return table[attr]
}

// HPForVigor returns the hit point pool granted by a vigor value.
func HPForVigor(vigor uint8) uint16 { return derivedPool(&hpTable, vigor) }

// FPForMind returns the focus point pool granted by a mind value.
func FPForMind(mind uint8) uint16 { return derivedPool(&fpTable, mind) }

// StaminaForEndurance returns the stamina pool granted by an endurance value.
func StaminaForEndurance(endurance uint8) uint16 { return derivedPool(&staminaTable, endurance) }
