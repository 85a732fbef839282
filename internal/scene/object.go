// Package scene is the in-memory editor host the bridge operates on:
// object store, selection, parenting and asset lookup.
package scene

import (
	"strings"
	"unicode"

	"github.com/msto63/scenebridge/internal/bridge/coords"
)

// ReservedName is the engine's null-name sentinel
const ReservedName = "None"

// InvalidIDChars lists characters an object ID may not contain
const InvalidIDChars = "\"',/.:|&!~@#(){}[]=;^%$`"

// Object is a placeable entity in the scene. Objects are owned by the
// scene and only mutated through it.
type Object struct {
	id        string
	label     string
	class     string
	asset     string
	transform coords.Transform
	parent    *Object
}

// ID returns the unique identifier
func (o *Object) ID() string { return o.id }

// Label returns the display label
func (o *Object) Label() string { return o.label }

// Class returns the actor class the object was spawned as
func (o *Object) Class() string { return o.class }

// AssetPath returns the asset the object was spawned from
func (o *Object) AssetPath() string { return o.asset }

// Transform returns the engine-space transform
func (o *Object) Transform() coords.Transform { return o.transform }

// Parent returns the attach parent or nil
func (o *Object) Parent() *Object { return o.parent }

// ValidID reports whether id may be used as an object identifier
func ValidID(id string) bool {
	if id == "" || strings.EqualFold(id, ReservedName) {
		return false
	}
	for _, r := range id {
		if InvalidIDRune(r) {
			return false
		}
	}
	return true
}

// InvalidIDRune reports whether r is not allowed inside an object ID
func InvalidIDRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(InvalidIDChars, r)
}
