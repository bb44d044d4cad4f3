package doclet

// Aggregator collects the doclets of one run in discovery order. It only grows.
type Aggregator struct {
	doclets []Doclet
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{doclets: []Doclet{}}
}

// Append adds doclets at the end of the sequence. Nil entries are ignored.
func (a *Aggregator) Append(doclets ...Doclet) {
	for _, d := range doclets {
		if d == nil {
			continue
		}
		a.doclets = append(a.doclets, d)
	}
}

// Len returns the number of doclets collected so far.
func (a *Aggregator) Len() int {
	return len(a.doclets)
}

// Doclets returns a copy of the collected sequence.
func (a *Aggregator) Doclets() []Doclet {
	result := make([]Doclet, len(a.doclets))
	copy(result, a.doclets)
	return result
}
