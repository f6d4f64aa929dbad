package card

import "strings"

// MeanHit returns the mean of the hit values.
func MeanHit(t *Template) float64 {
	if len(t.HitsOn) == 0 {
		return 0
	}
	sum := 0
	for _, v := range t.HitsOn {
		sum += v
	}
	return float64(sum) / float64(len(t.HitsOn))
}

// Compare orders cards by mean hit value, then cost, then name. It returns a
// negative number when a sorts before b, zero when they are interchangeable,
// and a positive number otherwise.
func Compare(a, b *Card) int {
	return CompareTemplates(a.Template, b.Template)
}

// CompareTemplates is Compare over templates.
func CompareTemplates(a, b *Template) int {
	ma, mb := MeanHit(a), MeanHit(b)
	switch {
	case ma < mb:
		return -1
	case ma > mb:
		return 1
	}
	if a.Cost != b.Cost {
		return a.Cost - b.Cost
	}
	return strings.Compare(a.Name, b.Name)
}

// Score is the bot give-away ranking used by swaps: the sum of hit values
// plus cost. Lower scores are given away first.
func Score(c *Card) int {
	total := c.Cost
	for _, v := range c.HitsOn {
		total += v
	}
	return total
}
