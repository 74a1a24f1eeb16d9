package sim

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
)

// OwnStateLen is the length of the own-state vector.
const OwnStateLen = 7

// ContactLen is the length of one encoded contact row.
const ContactLen = 5

// Observation is a fixed-shape per-agent view of the simulation: the
// observer's own state plus up to maxContacts nearby entities.
//
// Own is [x, y, heading, vx, vy, hp, maxHP]. Tags without physics report
// zero velocity; tags without combat report zero hp and maxHP.
//
// Each contact row is [x, y, bearing, distance, quality]. Bearing is
// relative to the observer's heading, wrapped to [-pi, pi]. Quality is
// 100 at zero distance, falling linearly to 0 at sensor range.
type Observation struct {
	Own      [OwnStateLen]float32
	Contacts [][ContactLen]float32
}

// Observe builds an observation for the given entity, or false if the
// entity is missing or destroyed. Contacts are live, non-destroyed other
// entities ranked nearest-first (ties broken by entity id), zero-padded to
// exactly maxContacts rows.
func (s *Simulation) Observe(e ecs.Entity, maxContacts int) (Observation, bool) {
	if !s.exists(e) {
		return Observation{}, false
	}
	if s.combatMap.HasAll(e) && s.combatMap.Get(e).Destroyed {
		return Observation{}, false
	}
	if maxContacts < 0 {
		maxContacts = 0
	}

	xf := s.xformMap.Get(e)

	obs := Observation{
		Contacts: make([][ContactLen]float32, maxContacts),
	}
	obs.Own[0] = xf.X
	obs.Own[1] = xf.Y
	obs.Own[2] = xf.Heading
	if s.physMap.HasAll(e) {
		phys := s.physMap.Get(e)
		obs.Own[3] = phys.VX
		obs.Own[4] = phys.VY
	}
	if s.combatMap.HasAll(e) {
		combat := s.combatMap.Get(e)
		obs.Own[5] = combat.HP
		obs.Own[6] = combat.MaxHP
	}

	if maxContacts == 0 {
		return obs, true
	}

	s.ensureGrid()
	s.obsScratch = s.grid.QueryRadiusInto(s.obsScratch[:0], xf.X, xf.Y, s.sensorRange, e, s.xformMap)
	neighbors := s.obsScratch

	live := neighbors[:0]
	for _, n := range neighbors {
		if s.combatMap.HasAll(n.E) && s.combatMap.Get(n.E).Destroyed {
			continue
		}
		live = append(live, n)
	}

	sort.Slice(live, func(i, j int) bool {
		if live[i].DistSq != live[j].DistSq {
			return live[i].DistSq < live[j].DistSq
		}
		return live[i].E.ID() < live[j].E.ID()
	})

	for i, n := range live {
		if i >= maxContacts {
			break
		}
		cxf := s.xformMap.Get(n.E)
		dist := sqrt32(n.DistSq)

		obs.Contacts[i][0] = cxf.X
		obs.Contacts[i][1] = cxf.Y
		obs.Contacts[i][2] = normalizeAngle(atan232(n.DY, n.DX) - xf.Heading)
		obs.Contacts[i][3] = dist
		obs.Contacts[i][4] = 100 * clamp32(1-dist/s.sensorRange, 0, 1)
	}

	return obs, true
}
