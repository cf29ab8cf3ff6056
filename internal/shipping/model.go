package shipping

import "errors"

// ErrUnknownOption means the id is not an available member of this
// quote's option set. Stale selections surface as this.
var ErrUnknownOption = errors.New("option not in current quote")

type Option struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Cost             float64 `json:"cost"`
	ETADescription   string  `json:"eta"`
	MinFreeThreshold float64 `json:"minFreeThreshold"`
	Available        bool    `json:"available"`
}

// QuoteSource tells the UI whether the numbers came from the backend or
// the offline zone table.
type QuoteSource string

const (
	SourceRemote   QuoteSource = "remote"
	SourceFallback QuoteSource = "fallback"
)

type Quote struct {
	Options    []Option
	SelectedID string
	Cost       float64
	IsFree     bool
	Source     QuoteSource
}

// Select switches the quote to the given option and recomputes the
// effective cost under the free-shipping rule.
func (q *Quote) Select(optionID string, cartSubtotal float64) error {
	for _, o := range q.Options {
		if o.ID == optionID && o.Available {
			q.SelectedID = optionID
			applyFreeRule(q, cartSubtotal)
			return nil
		}
	}
	return ErrUnknownOption
}

// Selected returns the currently selected option, or nil.
func (q *Quote) Selected() *Option {
	for i := range q.Options {
		if q.Options[i].ID == q.SelectedID {
			return &q.Options[i]
		}
	}
	return nil
}
