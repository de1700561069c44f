package competitiondomain

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// BoundaryParser turns admin input into season boundaries. RFC 3339 input is
// taken as written; anything else goes through natural-language parsing
// relative to the reference time in the parser's location.
type BoundaryParser struct {
	loc *time.Location
	w   *when.Parser
}

// NewBoundaryParser builds a parser for loc. A nil loc means UTC.
func NewBoundaryParser(loc *time.Location) *BoundaryParser {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &BoundaryParser{loc: loc, w: w}
}

// LoadLocation resolves an IANA zone name, falling back to def when name is empty.
func LoadLocation(name string, def *time.Location) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		if def == nil {
			return time.UTC, nil
		}
		return def, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSeason, name)
	}
	return loc, nil
}

// Parse resolves input relative to ref.
func (p *BoundaryParser) Parse(input string, ref time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty time", ErrInvalidSeason)
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}
	r, err := p.w.Parse(strings.ToLower(input), ref.In(p.loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse %q: %v", ErrInvalidSeason, input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: could not recognise time %q", ErrInvalidSeason, input)
	}
	return r.Time.Truncate(time.Minute).UTC(), nil
}

// ParseAll parses the four season boundaries in lifecycle order, all relative to ref.
func (p *BoundaryParser) ParseAll(ref time.Time, inputs [4]string) ([4]time.Time, error) {
	var out [4]time.Time
	for i, in := range inputs {
		t, err := p.Parse(in, ref)
		if err != nil {
			return out, err
		}
		out[i] = t
	}
	return out, nil
}
