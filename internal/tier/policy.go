// Package tier maps a user's subscription tier to the artifacts an upload produces.
package tier

import (
	"slices"

	"github.com/templui/thumbnailer/internal/model"
)

// Kind is the closed set of tier variants.
type Kind int

const (
	Basic Kind = iota
	Premium
	Enterprise
	Generic
)

func (k Kind) String() string {
	switch k {
	case Basic:
		return model.TierBasic
	case Premium:
		return model.TierPremium
	case Enterprise:
		return model.TierEnterprise
	default:
		return "generic"
	}
}

// Policy describes what an upload generates for a tier.
type Policy struct {
	Kind Kind
	// Thumbnail heights in pixels, largest first
	Sizes          []int
	ExposeOriginal bool
	ExposeExpiring bool
}

// KindOf classifies a tier by exact name match. A nil tier is Basic.
func KindOf(t *model.Tier) Kind {
	if t == nil {
		return Basic
	}
	switch t.Name {
	case model.TierBasic:
		return Basic
	case model.TierPremium:
		return Premium
	case model.TierEnterprise:
		return Enterprise
	default:
		return Generic
	}
}

// Resolve returns the policy for a tier. Built-in names ignore the tier's
// columns; any other tier is described entirely by them.
func Resolve(t *model.Tier) Policy {
	kind := KindOf(t)
	switch kind {
	case Basic:
		return Policy{Kind: kind, Sizes: []int{200}}
	case Premium:
		return Policy{Kind: kind, Sizes: []int{400, 200}, ExposeOriginal: true}
	case Enterprise:
		return Policy{Kind: kind, Sizes: []int{400, 200}, ExposeOriginal: true, ExposeExpiring: true}
	}

	var sizes []int
	if t.ThumbnailHeight != nil && *t.ThumbnailHeight > 0 {
		sizes = []int{*t.ThumbnailHeight}
	}
	return Policy{
		Kind:           Generic,
		Sizes:          sizes,
		ExposeOriginal: t.PresenceOfOriginalFileLink,
		ExposeExpiring: t.AbilityToFetchExpiringLink,
	}
}

// Descending returns a copy of sizes ordered largest first with duplicates removed.
func Descending(sizes []int) []int {
	out := slices.Clone(sizes)
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}
