package model

import "fmt"

// ActorRole classifies who performed a mutation.
type ActorRole string

const (
	ActorBuyer  ActorRole = "buyer"
	ActorStaff  ActorRole = "staff"
	ActorSystem ActorRole = "system"
)

// Valid reports whether r is a known role.
func (r ActorRole) Valid() bool {
	switch r {
	case ActorBuyer, ActorStaff, ActorSystem:
		return true
	}
	return false
}

// Actor identifies the caller responsible for a state change.
type Actor struct {
	ID   int64
	Role ActorRole
}

// SystemActor is used for transitions the engine performs on its own.
var SystemActor = Actor{Role: ActorSystem}

func (a Actor) String() string {
	if a.Role == "" {
		return fmt.Sprintf("user:%d", a.ID)
	}
	if a.Role == ActorSystem {
		return string(ActorSystem)
	}
	return fmt.Sprintf("%s:%d", a.Role, a.ID)
}
