package assessment

import (
	"math"

	"github.com/brightfold/readiness/internal/catalog"
)

// ComputeStats derives completion numbers from the full form. Every question
// in the catalog counts toward the total, required or not; this is looser
// than section validation, which only checks required questions. The
// asymmetry is deliberate: the dashboard tracks raw progress while
// validation gates navigation.
func ComputeStats(cat *catalog.Catalog, form FormData) Stats {
	total := 0
	answered := 0
	for i := range cat.Sections {
		sec := &cat.Sections[i]
		for j := range sec.Questions {
			total++
			a, ok := form.Get(sec.ID, sec.Questions[j].ID)
			if ok && !a.Empty() {
				answered++
			}
		}
	}
	return Stats{
		TotalQuestions:       total,
		AnsweredQuestions:    answered,
		CompletionPercentage: percentage(answered, total),
	}
}

// percentage rounds answered/total to the nearest whole percent. An empty
// catalog yields 0, not a division error.
func percentage(answered, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(answered) / float64(total)))
}
