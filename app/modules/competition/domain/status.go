package competitiondomain

import "fmt"

// Status is a season's position in the competition lifecycle. Seasons only
// ever move forward through the statuses in declaration order.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusSubmissions Status = "submissions"
	StatusVoting      Status = "voting"
	StatusClosed      Status = "closed"
)

var lifecycle = []Status{StatusScheduled, StatusSubmissions, StatusVoting, StatusClosed}

// ParseStatus accepts the lowercase status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range lifecycle {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown season status %q", s)
}

func (s Status) String() string { return string(s) }

func (s Status) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the lifecycle statuses.
func (s Status) Valid() bool { return s.rank() >= 0 }

// Next returns the status that follows s. Closed has no successor.
func (s Status) Next() (Status, bool) {
	r := s.rank()
	if r < 0 || r == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[r+1], true
}

// Before reports whether s comes strictly earlier in the lifecycle than other.
func (s Status) Before(other Status) bool {
	return s.Valid() && other.Valid() && s.rank() < other.rank()
}

// IsOpen reports whether the season still has transitions ahead of it.
func (s Status) IsOpen() bool { return s.Valid() && s != StatusClosed }
