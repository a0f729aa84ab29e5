package spacedrep

// Ease factor bounds and default for new items.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.6
	DefaultEaseFactor = 2.5
)

// DefaultDifficulty is the difficulty prior for an item with no attempts.
const DefaultDifficulty = 0.5

// MaxLevel is the mastered tier. Levels run 0 (untrained) through MaxLevel.
const MaxLevel = 3

// FirstIntervalDays and SecondIntervalDays are the fixed intervals after the
// first and second consecutive successful reviews. Later intervals grow by
// the ease factor.
const (
	FirstIntervalDays  = 1
	SecondIntervalDays = 6
)

// MaxIntervalDays caps interval growth at roughly a century so review dates
// stay representable.
const MaxIntervalDays = 36500

// PassingQuality is the lowest quality that counts as a successful review.
const PassingQuality = 3

// Quality scores assigned by ComputeQuality.
const (
	QualityIncorrect = 2
	QualitySlow      = 3
	QualityGood      = 4
	QualityFast      = 5
)

// Response time tiers, in milliseconds, for correct answers.
const (
	FastResponseMs  = 2000
	GoodResponseMs  = 5000
	SlowResponseMs  = 9000
	ResponseScaleMs = 12000
)

// Difficulty adjustments per attempt. slowResponseStep is scaled by the
// response time over ResponseScaleMs, capped at one.
const (
	correctStep      = 0.05
	incorrectStep    = 0.12
	slowResponseStep = 0.06
)
