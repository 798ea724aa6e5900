package tier

import "fmt"

// Tier represents an escalating cost/capability class of LLM backend.
// Tiers are ordered: a higher value means higher cost and capability.
type Tier int

// Tier constants in ascending cost/capability order.
const (
	// TierReflex is the cheapest tier for trivial, high-volume calls.
	TierReflex Tier = iota

	// TierDefault is the free default tier most requests start on.
	TierDefault

	// TierPremium is the paid escalation tier.
	TierPremium

	// TierExtended is the extended-reasoning tier (long thinking budgets).
	TierExtended

	// TierCustom is reserved for fine-tuned or self-hosted specializations.
	TierCustom
)

// All lists every defined tier in ascending order.
// Iterate this instead of hand-rolling ranges so new tiers can't be missed.
var All = []Tier{TierReflex, TierDefault, TierPremium, TierExtended, TierCustom}

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierReflex:
		return "reflex"
	case TierDefault:
		return "default"
	case TierPremium:
		return "premium"
	case TierExtended:
		return "extended"
	case TierCustom:
		return "custom"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= TierReflex && t <= TierCustom
}

// Above reports whether t is a strictly higher tier than other.
func (t Tier) Above(other Tier) bool {
	return t > other
}

// ParseTier converts a tier name to its Tier value.
func ParseTier(name string) (Tier, error) {
	switch name {
	case "reflex":
		return TierReflex, nil
	case "default":
		return TierDefault, nil
	case "premium":
		return TierPremium, nil
	case "extended":
		return TierExtended, nil
	case "custom":
		return TierCustom, nil
	default:
		return TierDefault, fmt.Errorf("unknown tier %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler so tiers round-trip
// through YAML/TOML/JSON config as names rather than bare ints.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
