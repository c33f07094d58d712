package lang

// Tally counts language votes across the chunks of one transcription.
// The zero value is ready to use. Tally is not safe for concurrent use;
// chunks are transcribed one at a time.
type Tally struct {
	counts map[string]int
	order  []string
}

// Add records one vote. Unknown and empty tags are not counted, so a run of
// unidentifiable chunks never outvotes a single identified one.
func (t *Tally) Add(tag string) {
	if !Known(tag) {
		return
	}
	normalized := Normalize(tag)
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, seen := t.counts[normalized]; !seen {
		t.order = append(t.order, normalized)
	}
	t.counts[normalized]++
}

// Votes returns the number of counted votes.
func (t *Tally) Votes() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Majority returns the tag with the most votes. Ties resolve to the tag
// that was seen first, keeping the result deterministic for a given chunk
// order. With no counted votes it returns Unknown.
func (t *Tally) Majority() string {
	best := Unknown
	bestCount := 0
	for _, tag := range t.order {
		if t.counts[tag] > bestCount {
			best = tag
			bestCount = t.counts[tag]
		}
	}
	return best
}
