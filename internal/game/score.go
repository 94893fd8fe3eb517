package game

// Score maps a won round's mistake count to points. A clean round pays 100;
// each mistake shaves 20 off, down to a floor of 20. Lost rounds are never
// scored.
func Score(mistakes int) int {
	switch {
	case mistakes <= 0:
		return 100
	case mistakes == 1:
		return 80
	case mistakes == 2:
		return 60
	case mistakes == 3:
		return 40
	default:
		return 20
	}
}
