package espn

import (
	"fmt"
	"sort"
	"strings"
)

// Provider views. Each view returns the same league document filtered
// to a different projection.
const (
	ViewTeam     = "mTeam"
	ViewMatchup  = "mMatchup"
	ViewSettings = "mSettings"
)

// RawSeason carries the unprocessed provider payloads for one season.
// Entries stay schemaless maps: the provider reshapes team and
// schedule objects between seasons, so decoding into rigid structs
// here would turn old seasons into fetch failures.
type RawSeason struct {
	Year     int
	Teams    []map[string]any
	Schedule []map[string]any
}

// FetchError reports that every configured host failed for a view.
// It keeps the last failure per host for diagnostics.
type FetchError struct {
	Year        int
	View        string
	HostErrors  map[string]string
	CircuitOpen bool
}

func (e *FetchError) Error() string {
	hosts := make([]string, 0, len(e.HostErrors))
	for host := range e.HostErrors {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	parts := make([]string, 0, len(hosts))
	for _, host := range hosts {
		parts = append(parts, fmt.Sprintf("%s: %s", host, e.HostErrors[host]))
	}
	return fmt.Sprintf("fetch season=%d view=%s: all hosts failed: %s",
		e.Year, e.View, strings.Join(parts, "; "))
}
