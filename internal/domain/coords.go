package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role identifies a semantic forecast axis. GEFS sources and generic CF
// datasets name these axes differently; all axis access goes through
// Resolve rather than assuming literal names.
type Role int

const (
	RoleTime Role = iota // forecast initialization time
	RoleStep             // forecast lead time
	RoleEnsemble
	RoleLat
	RoleLon
)

func (r Role) String() string {
	switch r {
	case RoleTime:
		return "time"
	case RoleStep:
		return "step"
	case RoleEnsemble:
		return "ensemble"
	case RoleLat:
		return "latitude"
	case RoleLon:
		return "longitude"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// roleCandidates maps each role to acceptable axis names in priority order.
var roleCandidates = map[Role][]string{
	RoleTime:     {"init_time", "time", "initialization_time", "forecast_reference_time"},
	RoleStep:     {"lead_time", "step", "forecast_hour", "forecast_period"},
	RoleEnsemble: {"ensemble_member", "ensemble", "member", "realization", "number"},
	RoleLat:      {"latitude", "lat", "y"},
	RoleLon:      {"longitude", "lon", "x"},
}

// Candidates returns the priority-ordered axis names accepted for role.
func Candidates(role Role) []string {
	return append([]string(nil), roleCandidates[role]...)
}

// Container is anything with named coordinates and dimensions. Both Dataset
// and Array satisfy it.
type Container interface {
	CoordNames() []string
	DimNames() []string
	HasAxis(name string) bool
}

// AxisNotFoundError reports that no candidate name for a semantic axis
// exists in a container.
type AxisNotFoundError struct {
	Role       Role
	Candidates []string
	Available  []string
}

func (e *AxisNotFoundError) Error() string {
	return fmt.Sprintf("no %s axis found: tried [%s], available [%s]",
		e.Role, strings.Join(e.Candidates, ", "), strings.Join(e.Available, ", "))
}

// Resolve finds the axis name filling role in c, scanning the role's
// candidate names in priority order.
func Resolve(c Container, role Role) (string, error) {
	return ResolveFrom(c, role, roleCandidates[role])
}

// ResolveFrom is Resolve with a caller-supplied candidate list.
func ResolveFrom(c Container, role Role, candidates []string) (string, error) {
	for _, name := range candidates {
		if c.HasAxis(name) {
			return name, nil
		}
	}
	return "", &AxisNotFoundError{
		Role:       role,
		Candidates: append([]string(nil), candidates...),
		Available:  availableNames(c),
	}
}

// availableNames merges coordinate and dimension names for error reporting.
func availableNames(c Container) []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range c.CoordNames() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range c.DimNames() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
