package agent

import (
	"fmt"
	"strings"
)

// Kind classifies agents. Predator/prey relations are expressed between
// kinds, never between type names.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBCell
	KindFragment
	KindMacrophage
)

var kindNames = map[Kind]string{
	KindBCell:      "bcell",
	KindFragment:   "fragment",
	KindMacrophage: "macrophage",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind { return []Kind{KindBCell, KindFragment, KindMacrophage} }

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// BoundaryPolicy decides what happens to an agent found outside the volume.
type BoundaryPolicy uint8

const (
	BoundaryNone BoundaryPolicy = iota
	// BoundaryReflect walks the agent back toward the centre.
	BoundaryReflect
	// BoundaryRespawn removes the agent and spawns a replacement inside.
	BoundaryRespawn
)

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryReflect:
		return "reflect"
	case BoundaryRespawn:
		return "respawn"
	default:
		return "none"
	}
}

func ParseBoundary(s string) (BoundaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BoundaryNone, nil
	case "reflect":
		return BoundaryReflect, nil
	case "respawn":
		return BoundaryRespawn, nil
	default:
		return BoundaryNone, fmt.Errorf("%w: %q", ErrUnknownBoundary, s)
	}
}

// RemovalReason says why an agent left the field.
type RemovalReason uint8

const (
	RemovedConsumed RemovalReason = iota + 1
	RemovedExited
	RemovedStuck
)

func (r RemovalReason) String() string {
	switch r {
	case RemovedConsumed:
		return "consumed"
	case RemovedExited:
		return "exited"
	case RemovedStuck:
		return "stuck"
	default:
		return "unknown"
	}
}
