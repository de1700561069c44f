package levelingdomain

import "math"

// pointsPerLevelUnit scales the level curve: level L starts at L*L*pointsPerLevelUnit.
const pointsPerLevelUnit = 100

// LevelInfo is everything derived from a score.
type LevelInfo struct {
	Level                 int
	Progress              float64 // fraction of the way from CurrentLevelThreshold to NextLevelThreshold, in [0, 1)
	CurrentLevelThreshold int64
	NextLevelThreshold    int64
}

// ThresholdForLevel is the minimum score of level L.
func ThresholdForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	l := int64(level)
	return l * l * pointsPerLevelUnit
}

// LevelFor maps a score to its level. It is the only place level is derived;
// negative scores are treated as zero.
func LevelFor(score int64) LevelInfo {
	if score < 0 {
		score = 0
	}
	level := isqrt(score / pointsPerLevelUnit)
	cur := ThresholdForLevel(level)
	next := ThresholdForLevel(level + 1)

	var progress float64
	if span := next - cur; span > 0 {
		progress = float64(score-cur) / float64(span)
	}
	return LevelInfo{
		Level:                 level,
		Progress:              progress,
		CurrentLevelThreshold: cur,
		NextLevelThreshold:    next,
	}
}

// isqrt returns floor(sqrt(n)) exactly for n >= 0.
func isqrt(n int64) int {
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return int(r)
}
