package roi

import (
	"fmt"
	"strconv"
	"strings"
)

const namePrefix = "ROI_"

// Sequence allocates ROI_<n> names. Each collection owns its own sequence.
type Sequence struct {
	last int
}

// Next returns the next name in the sequence.
func (s *Sequence) Next() string {
	s.last++
	return fmt.Sprintf("%s%d", namePrefix, s.last)
}

// Reset restarts numbering at ROI_1.
func (s *Sequence) Reset() {
	s.last = 0
}

// Observe advances the sequence past a name of the form ROI_<n>. Other names are ignored.
func (s *Sequence) Observe(name string) {
	digits, ok := strings.CutPrefix(name, namePrefix)
	if !ok {
		return
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= s.last {
		return
	}
	s.last = n
}
