package features

import (
	"errors"
	"fmt"
)

// Label holds the four 1..10 human ratings for a candidate
type Label struct {
	Name     string `json:"name"`
	Identity int    `json:"identity"`
	Behavior int    `json:"behavior"`
	Geo      int    `json:"geo"`
	Contact  int    `json:"contact"`
}

// DefaultLabel is the placeholder written to a fresh sheet
func DefaultLabel(name string) Label {
	return Label{Name: name, Identity: 1, Behavior: 1, Geo: 1, Contact: 1}
}

// Validate checks every rating is in range
func (l Label) Validate() error {
	var errs []error
	if l.Name == "" {
		errs = append(errs, errors.New("label name is required"))
	}
	for field, v := range map[string]int{
		"identity": l.Identity,
		"behavior": l.Behavior,
		"geo":      l.Geo,
		"contact":  l.Contact,
	} {
		if v < 1 || v > 10 {
			errs = append(errs, fmt.Errorf("%s label must be between 1 and 10, got %d", field, v))
		}
	}
	return errors.Join(errs...)
}
