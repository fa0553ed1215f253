package dr16

import "strings"

// Key is a single key bit in the keyboard bitmask.
type Key uint16

// Keys in wire order, bit 0 is the least significant bit of the first
// keyboard byte.
const (
	KeyW Key = 1 << iota
	KeyS
	KeyA
	KeyD
	KeyShift
	KeyCtrl
	KeyQ
	KeyE
	KeyR
	KeyF
	KeyG
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
)

// AllKeys lists all keys in wire order.
var AllKeys = []Key{
	KeyW, KeyS, KeyA, KeyD, KeyShift, KeyCtrl, KeyQ, KeyE,
	KeyR, KeyF, KeyG, KeyZ, KeyX, KeyC, KeyV, KeyB,
}

var keyNames = map[Key]string{
	KeyW:     "W",
	KeyS:     "S",
	KeyA:     "A",
	KeyD:     "D",
	KeyShift: "Shift",
	KeyCtrl:  "Ctrl",
	KeyQ:     "Q",
	KeyE:     "E",
	KeyR:     "R",
	KeyF:     "F",
	KeyG:     "G",
	KeyZ:     "Z",
	KeyX:     "X",
	KeyC:     "C",
	KeyV:     "V",
	KeyB:     "B",
}

// String returns the key name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "?"
}

// Keys is the keyboard bitmask.
type Keys uint16

// Pressed tells if the key is pressed.
func (k Keys) Pressed(key Key) bool {
	return uint16(k)&uint16(key) != 0
}

// With returns the bitmask with the keys pressed.
func (k Keys) With(keys ...Key) Keys {
	for _, key := range keys {
		k |= Keys(key)
	}
	return k
}

// List returns the pressed keys in wire order.
func (k Keys) List() []Key {
	var keys []Key
	for _, key := range AllKeys {
		if k.Pressed(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// String joins pressed key names with "+".
func (k Keys) String() string {
	keys := k.List()
	names := make([]string, len(keys))
	for n, key := range keys {
		names[n] = key.String()
	}
	return strings.Join(names, "+")
}

// Pressed tells if the key is pressed.
func (m KeyboardMessage) Pressed(key Key) bool { return m.Keys.Pressed(key) }

// W tells if W is pressed.
func (m KeyboardMessage) W() bool { return m.Keys.Pressed(KeyW) }

// S tells if S is pressed.
func (m KeyboardMessage) S() bool { return m.Keys.Pressed(KeyS) }

// A tells if A is pressed.
func (m KeyboardMessage) A() bool { return m.Keys.Pressed(KeyA) }

// D tells if D is pressed.
func (m KeyboardMessage) D() bool { return m.Keys.Pressed(KeyD) }

// Shift tells if Shift is pressed.
func (m KeyboardMessage) Shift() bool { return m.Keys.Pressed(KeyShift) }

// Ctrl tells if Ctrl is pressed.
func (m KeyboardMessage) Ctrl() bool { return m.Keys.Pressed(KeyCtrl) }

// Q tells if Q is pressed.
func (m KeyboardMessage) Q() bool { return m.Keys.Pressed(KeyQ) }

// E tells if E is pressed.
func (m KeyboardMessage) E() bool { return m.Keys.Pressed(KeyE) }

// R tells if R is pressed.
func (m KeyboardMessage) R() bool { return m.Keys.Pressed(KeyR) }

// F tells if F is pressed.
func (m KeyboardMessage) F() bool { return m.Keys.Pressed(KeyF) }

// G tells if G is pressed.
func (m KeyboardMessage) G() bool { return m.Keys.Pressed(KeyG) }

// Z tells if Z is pressed.
func (m KeyboardMessage) Z() bool { return m.Keys.Pressed(KeyZ) }

// X tells if X is pressed.
func (m KeyboardMessage) X() bool { return m.Keys.Pressed(KeyX) }

// C tells if C is pressed.
func (m KeyboardMessage) C() bool { return m.Keys.Pressed(KeyC) }

// V tells if V is pressed.
func (m KeyboardMessage) V() bool { return m.Keys.Pressed(KeyV) }

// B tells if B is pressed.
func (m KeyboardMessage) B() bool { return m.Keys.Pressed(KeyB) }
