package scheduling

import (
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

// Reassignment moves a group of students from a removed occurrence to a new one.
type Reassignment struct {
	From    models.LectureSchedule
	To      models.LectureSchedule
	UserIDs []string
}

// NearestSlot picks the candidate whose start time of day is closest to old's.
// Candidates on old's weekday win over any other day; ties keep the earliest
// candidate in input order.
func NearestSlot(old models.LectureSchedule, candidates []models.LectureSchedule, conv *timeutil.Converter) (models.LectureSchedule, error) {
	idx, err := nearestIndex(old, candidates, conv)
	if err != nil {
		return models.LectureSchedule{}, err
	}
	return candidates[idx], nil
}

func nearestIndex(old models.LectureSchedule, candidates []models.LectureSchedule, conv *timeutil.Converter) (int, error) {
	if len(candidates) == 0 {
		return -1, ErrNoAvailableSchedule
	}

	weekday := conv.Weekday(old.StartTime)
	target := conv.TimeOfDayOf(old.StartTime).SecondOfDay()

	best, bestDiff := -1, 0
	for i, c := range candidates {
		if conv.Weekday(c.StartTime) != weekday {
			continue
		}
		if diff := absDiff(target, conv.TimeOfDayOf(c.StartTime).SecondOfDay()); best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best >= 0 {
		return best, nil
	}

	for i, c := range candidates {
		if diff := absDiff(target, conv.TimeOfDayOf(c.StartTime).SecondOfDay()); best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best, nil
}

// PlanRedistribution maps every enrolled student of olds onto a candidate.
// snapshot holds enrollments keyed by old schedule id. Occurrences with no
// enrollments are skipped. A user already placed on a candidate is not placed
// there again. Any matching failure aborts the plan.
func PlanRedistribution(
	olds []models.LectureSchedule,
	snapshot map[string][]models.Enrollment,
	candidates []models.LectureSchedule,
	conv *timeutil.Converter,
) ([]Reassignment, error) {
	var plan []Reassignment
	placed := make(map[int]map[string]struct{})

	for _, old := range olds {
		enrollments := snapshot[old.ID]
		if len(enrollments) == 0 {
			continue
		}

		idx, err := nearestIndex(old, candidates, conv)
		if err != nil {
			return nil, err
		}
		seen, ok := placed[idx]
		if !ok {
			seen = make(map[string]struct{})
			placed[idx] = seen
		}

		users := make([]string, 0, len(enrollments))
		for _, e := range enrollments {
			if _, dup := seen[e.UserID]; dup {
				continue
			}
			seen[e.UserID] = struct{}{}
			users = append(users, e.UserID)
		}
		if len(users) == 0 {
			continue
		}

		plan = append(plan, Reassignment{From: old, To: candidates[idx], UserIDs: users})
	}
	return plan, nil
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
