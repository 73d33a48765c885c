package domain

import "math"

type Tally struct {
	Options      []OptionTally `json:"options"`
	TotalAnswers int           `json:"totalVotes"`
}

type OptionTally struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ComputeTally counts answers per option and derives percentages rounded to two
// decimals. Answers pointing at an index outside options are ignored and do not
// count towards the total. With no counted answers every percentage is 0.
func ComputeTally(options []string, answers []Answer) Tally {
	counts := make([]int, len(options))
	total := 0
	for _, ans := range answers {
		if ans.OptionIndex < 0 || ans.OptionIndex >= len(options) {
			continue
		}
		counts[ans.OptionIndex]++
		total++
	}

	tally := Tally{
		Options:      make([]OptionTally, len(options)),
		TotalAnswers: total,
	}
	for i, label := range options {
		tally.Options[i] = OptionTally{
			Label:      label,
			Count:      counts[i],
			Percentage: percentage(counts[i], total),
		}
	}
	return tally
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*10000/float64(total)) / 100
}
