package model

import "fmt"

// ClubStatus is the lifecycle state of a club. The numeric values are stored
// in the database and must not be reordered.
type ClubStatus uint8

const (
	ClubClosed ClubStatus = iota
	ClubOpen
	ClubRemoved
)

func (s ClubStatus) String() string {
	switch s {
	case ClubClosed:
		return "Closed"
	case ClubOpen:
		return "Open"
	case ClubRemoved:
		return "Removed"
	default:
		return fmt.Sprintf("ClubStatus(%d)", uint8(s))
	}
}

// MarshalText encodes the status by name.
func (s ClubStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *ClubStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Closed":
		*s = ClubClosed
	case "Open":
		*s = ClubOpen
	case "Removed":
		*s = ClubRemoved
	default:
		return fmt.Errorf("unknown club status %q", b)
	}
	return nil
}

// ClubAction is a requested club lifecycle change.
type ClubAction uint8

const (
	ClubActionOpen ClubAction = iota
	ClubActionClose
	ClubActionRemove
)

// NextClubStatus returns the status reached by applying action to from.
// Removed is terminal. Re-opening an open club or re-closing a closed one
// is reported as ErrNoOpTransition.
func NextClubStatus(from ClubStatus, action ClubAction) (ClubStatus, error) {
	switch from {
	case ClubRemoved:
		return from, ErrInvalidTransition
	case ClubOpen, ClubClosed:
	default:
		return from, ErrInvalidTransition
	}

	switch action {
	case ClubActionOpen:
		if from == ClubOpen {
			return from, ErrNoOpTransition
		}
		return ClubOpen, nil
	case ClubActionClose:
		if from == ClubClosed {
			return from, ErrNoOpTransition
		}
		return ClubClosed, nil
	case ClubActionRemove:
		return ClubRemoved, nil
	default:
		return from, ErrInvalidTransition
	}
}

// BoatStatus is the lifecycle state of a boat. The numeric values are stored
// in the database and must not be reordered.
type BoatStatus uint8

const (
	BoatNotForSale BoatStatus = iota
	BoatForSale
	BoatRemoved
)

func (s BoatStatus) String() string {
	switch s {
	case BoatNotForSale:
		return "NotForSale"
	case BoatForSale:
		return "ForSale"
	case BoatRemoved:
		return "Removed"
	default:
		return fmt.Sprintf("BoatStatus(%d)", uint8(s))
	}
}

// MarshalText encodes the status by name.
func (s BoatStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *BoatStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "NotForSale":
		*s = BoatNotForSale
	case "ForSale":
		*s = BoatForSale
	case "Removed":
		*s = BoatRemoved
	default:
		return fmt.Errorf("unknown boat status %q", b)
	}
	return nil
}

// BoatAction is a requested boat lifecycle change.
type BoatAction uint8

const (
	BoatActionToggle BoatAction = iota
	BoatActionRemove
)

// NextBoatStatus returns the status reached by applying action to from.
// Removed is terminal.
func NextBoatStatus(from BoatStatus, action BoatAction) (BoatStatus, error) {
	switch from {
	case BoatRemoved:
		return from, ErrInvalidTransition
	case BoatForSale, BoatNotForSale:
	default:
		return from, ErrInvalidTransition
	}

	switch action {
	case BoatActionToggle:
		if from == BoatForSale {
			return BoatNotForSale, nil
		}
		return BoatForSale, nil
	case BoatActionRemove:
		return BoatRemoved, nil
	default:
		return from, ErrInvalidTransition
	}
}
