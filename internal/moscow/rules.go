package moscow

import "fmt"

// Bucket is one of the four MoSCoW priority buckets.
type Bucket string

const (
	BucketMust   Bucket = "must"
	BucketShould Bucket = "should"
	BucketCould  Bucket = "could"
	BucketWont   Bucket = "wont"
)

// Buckets lists the buckets in display order.
var Buckets = []Bucket{BucketMust, BucketShould, BucketCould, BucketWont}

// ApplyRules evaluates the ordered MoSCoW rule set and returns the first
// matching bucket together with the matched rule identifier. Hard rules win
// over the score thresholds, which are only consulted when no rule fires.
func ApplyRules(taskType TaskType, dueInDays *int, score int) (Bucket, string) {
	// Rule 1: hard deadline within 24h is always must.
	if dueInDays != nil && *dueInDays <= 1 {
		return BucketMust, "rule 1: hard deadline within 24h"
	}

	// Rule 2: Major academic due within 2 days.
	if taskType == TypeMajorAcademic && dueInDays != nil && *dueInDays <= 2 {
		return BucketMust, "rule 2: major academic due <=2 days"
	}

	// Rule 3: Regular coursework due within 1 day.
	if taskType == TypeRegularCoursework && dueInDays != nil && *dueInDays <= 1 {
		return BucketMust, "rule 3: regular coursework due <=1 day"
	}

	// Rule 4: Regular coursework due within a week.
	if taskType == TypeRegularCoursework && dueInDays != nil && *dueInDays <= 7 {
		return BucketShould, "rule 4: regular coursework due <=7 days"
	}

	// Rule 5: Supplementary with an imminent deadline caps at should.
	if taskType == TypeSupplementary && dueInDays != nil && *dueInDays <= 1 {
		return BucketShould, "rule 5: supplementary due <=1 day"
	}

	// Rule 6: Non-academic never rises above wont.
	if taskType == TypeNonAcademic {
		return BucketWont, "rule 6: non-academic"
	}

	// Score thresholds.
	switch {
	case score >= 43:
		return BucketMust, fmt.Sprintf("threshold: score %d >= 43", score)
	case score >= 38:
		return BucketShould, fmt.Sprintf("threshold: score %d in 38-42", score)
	case score >= 28:
		return BucketCould, fmt.Sprintf("threshold: score %d in 28-37", score)
	default:
		return BucketWont, fmt.Sprintf("threshold: score %d <= 27", score)
	}
}
