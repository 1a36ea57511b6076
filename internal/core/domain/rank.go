package domain

import "sort"

// Rank summarizes one label for top-N selection.
type Rank struct {
	Label string
	Count int
	Mean  float64
}

// RankByCount orders labels by descending frequency. Ties keep first-seen order.
func RankByCount(labels []string) []Rank {
	ranks := tally(labels, nil)
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Count > ranks[j].Count })
	return ranks
}

// RankByMean orders labels by descending mean of their values. Ties keep first-seen order.
// values is parallel to labels.
func RankByMean(labels []string, values []float64) []Rank {
	ranks := tally(labels, values)
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Mean > ranks[j].Mean })
	return ranks
}

// TopLabels returns the labels of the first n ranks; n <= 0 keeps all.
func TopLabels(ranks []Rank, n int) []string {
	if n > 0 && n < len(ranks) {
		ranks = ranks[:n]
	}
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Label
	}
	return out
}

// tally counts labels in first-seen order and, when values is non-nil, averages them.
func tally(labels []string, values []float64) []Rank {
	index := make(map[string]int)
	var ranks []Rank
	var sums []float64

	for i, l := range labels {
		pos, ok := index[l]
		if !ok {
			pos = len(ranks)
			index[l] = pos
			ranks = append(ranks, Rank{Label: l})
			sums = append(sums, 0)
		}
		ranks[pos].Count++
		if values != nil {
			sums[pos] += values[i]
		}
	}

	if values != nil {
		for i := range ranks {
			ranks[i].Mean = sums[i] / float64(ranks[i].Count)
		}
	}
	return ranks
}
