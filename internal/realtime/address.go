package realtime

import "fmt"

type addrKind int

const (
	addrUser addrKind = iota
	addrRide
	addrAll
)

// Address names a delivery target: one user's connections, one ride's
// conversation room, or every live connection. Using a value type instead of
// raw room strings keeps routing typos out of the call sites.
type Address struct {
	kind addrKind
	id   uint
}

func ToUser(id uint) Address { return Address{kind: addrUser, id: id} }

func ToRide(id uint) Address { return Address{kind: addrRide, id: id} }

func Broadcast() Address { return Address{kind: addrAll} }

func (a Address) IsBroadcast() bool { return a.kind == addrAll }

// Room returns the wire-level room name, or "" for a broadcast.
func (a Address) Room() string {
	switch a.kind {
	case addrUser:
		return fmt.Sprintf("user_%d", a.id)
	case addrRide:
		return fmt.Sprintf("ride_%d", a.id)
	default:
		return ""
	}
}
