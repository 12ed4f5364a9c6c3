package risk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is an ordered risk level. Low is the zero value so an unset tier
// never inflates a score.
type Tier int

const (
	Low Tier = iota
	Medium
	High
	Critical
)

var tierNames = [...]string{"low", "medium", "high", "critical"}

func (t Tier) String() string {
	if t < Low || t > Critical {
		return "low"
	}
	return tierNames[t]
}

// Parse converts a tier name (case-insensitive) back into a Tier.
func Parse(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return Low, fmt.Errorf("unknown risk tier %q", s)
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// LevelFor maps a 0-100 risk score onto a tier.
func LevelFor(score int) Tier {
	switch {
	case score >= 75:
		return Critical
	case score >= 50:
		return High
	case score >= 25:
		return Medium
	default:
		return Low
	}
}
