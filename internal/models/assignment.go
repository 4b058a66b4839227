package models

// SplitAssignment maps each matched stem to exactly one split.
// It is immutable once built; accessors return copies.
type SplitAssignment struct {
	bySplit map[Split][]string
	byStem  map[string]Split
}

// NewSplitAssignment builds an assignment from per-split stem lists, keeping their order
func NewSplitAssignment(bySplit map[Split][]string) *SplitAssignment {
	a := &SplitAssignment{
		bySplit: make(map[Split][]string, len(AllSplits)),
		byStem:  make(map[string]Split),
	}
	for _, s := range AllSplits {
		stems := append([]string(nil), bySplit[s]...)
		a.bySplit[s] = stems
		for _, stem := range stems {
			a.byStem[stem] = s
		}
	}
	return a
}

// Stems returns the stems assigned to s in shuffled order
func (a *SplitAssignment) Stems(s Split) []string {
	return append([]string(nil), a.bySplit[s]...)
}

// SplitOf reports which split a stem was assigned to
func (a *SplitAssignment) SplitOf(stem string) (Split, bool) {
	s, ok := a.byStem[stem]
	return s, ok
}

func (a *SplitAssignment) Count(s Split) int {
	return len(a.bySplit[s])
}

func (a *SplitAssignment) Total() int {
	return len(a.byStem)
}
