// Package components defines ECS components for the combat simulation.
package components

import "fmt"

// Tag classifies an entity and decides which components it carries.
type Tag uint8

const (
	// TagShip is a mobile combat unit with physics and combat state.
	TagShip Tag = iota
	// TagPlatform is a static installation: combat state, no physics.
	TagPlatform
	// TagProjectile is an in-flight weapon: physics, no combat state.
	TagProjectile
	// TagSquadron is a group of craft operating as one unit.
	TagSquadron
)

// String returns the tag's lowercase name.
func (t Tag) String() string {
	switch t {
	case TagShip:
		return "ship"
	case TagPlatform:
		return "platform"
	case TagProjectile:
		return "projectile"
	case TagSquadron:
		return "squadron"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Valid reports whether the tag is one of the closed set.
func (t Tag) Valid() bool { return t <= TagSquadron }

// HasPhysics reports whether entities of this tag carry velocity state.
func (t Tag) HasPhysics() bool { return t != TagPlatform }

// HasCombat reports whether entities of this tag carry hit points.
func (t Tag) HasCombat() bool { return t != TagProjectile }

// MaxHP returns the full-health hit points for a tag with combat state.
func (t Tag) MaxHP() float32 {
	switch t {
	case TagShip:
		return 100
	case TagPlatform:
		return 200
	case TagSquadron:
		return 60
	default:
		return 0
	}
}

// Meta identifies an entity's tag.
type Meta struct {
	Tag Tag
}

// Transform holds position and heading. Present on every entity.
type Transform struct {
	X, Y    float32
	Heading float32 // radians
}

// Physics holds velocity. Present on tags with HasPhysics.
type Physics struct {
	VX, VY float32
}

// Combat holds hit points. Present on tags with HasCombat.
type Combat struct {
	HP, MaxHP float32
	Destroyed bool
}

// NewCombat returns full-health combat state for a tag.
func NewCombat(t Tag) Combat {
	hp := t.MaxHP()
	return Combat{HP: hp, MaxHP: hp}
}

// Action carries optional overrides applied immediately to component
// state; motion integration happens on the next step. Nil means leave
// the component unchanged.
type Action struct {
	VX, VY  *float32
	Heading *float32
}

// SetVelocity builds an action overriding velocity.
func SetVelocity(vx, vy float32) Action {
	return Action{VX: &vx, VY: &vy}
}

// SetHeading builds an action overriding heading.
func SetHeading(h float32) Action {
	return Action{Heading: &h}
}
