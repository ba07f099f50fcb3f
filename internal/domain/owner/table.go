package owner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unknown is the sentinel every failed lookup degrades to. Resolution
// is a total function: aggregation must never abort because a single
// reference is unmapped.
const Unknown = "Unknown Owner"

// Table maps provider team IDs and owner GUIDs to canonical owner
// names. It is immutable after construction and safe for concurrent
// reads.
type Table struct {
	byTeamID map[int]string
	byGUID   map[string]string
}

type tableFile struct {
	TeamOwners map[int]string    `yaml:"team_owners"`
	OwnerGUIDs map[string]string `yaml:"owner_guids"`
}

// Load reads the identity table from a YAML file with two maps:
// team_owners (numeric team ID to owner name) and owner_guids
// (braced provider GUID to owner name).
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read owner table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse owner table %s: %w", path, err)
	}
	if len(file.TeamOwners) == 0 {
		return nil, fmt.Errorf("owner table %s: team_owners is empty", path)
	}

	return NewTable(file.TeamOwners, file.OwnerGUIDs), nil
}

func NewTable(teamOwners map[int]string, ownerGUIDs map[string]string) *Table {
	byTeamID := make(map[int]string, len(teamOwners))
	for id, name := range teamOwners {
		name = strings.TrimSpace(name)
		if id <= 0 || name == "" {
			continue
		}
		byTeamID[id] = name
	}

	byGUID := make(map[string]string, len(ownerGUIDs))
	for guid, name := range ownerGUIDs {
		guid = normalizeGUID(guid)
		name = strings.TrimSpace(name)
		if guid == "" || name == "" {
			continue
		}
		byGUID[guid] = name
	}

	return &Table{byTeamID: byTeamID, byGUID: byGUID}
}

// ResolveTeamID maps a provider team ID to an owner name.
func (t *Table) ResolveTeamID(id int) string {
	if t != nil {
		if name, ok := t.byTeamID[id]; ok {
			return name
		}
	}
	return Unknown
}

// Resolve accepts any reference shape the provider emits for an owner:
// numeric team IDs (JSON numbers arrive as float64), braced GUID
// strings, plain names, or owner objects carrying a display name.
func (t *Table) Resolve(ref any) string {
	if t == nil || ref == nil {
		return Unknown
	}

	switch v := ref.(type) {
	case int:
		return t.ResolveTeamID(v)
	case int64:
		return t.ResolveTeamID(int(v))
	case float64:
		return t.ResolveTeamID(int(v))
	case string:
		return t.resolveString(v)
	case map[string]any:
		return t.resolveObject(v)
	default:
		return Unknown
	}
}

func (t *Table) resolveString(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Unknown
	}
	if name, ok := t.byGUID[normalizeGUID(v)]; ok {
		return name
	}
	// A bare string that is not a known GUID is taken at face value.
	if !looksLikeGUID(v) {
		return v
	}
	return Unknown
}

func (t *Table) resolveObject(v map[string]any) string {
	if id, ok := v["id"]; ok {
		if name := t.Resolve(id); name != Unknown {
			return name
		}
	}
	if display, ok := v["displayName"].(string); ok && strings.TrimSpace(display) != "" {
		return strings.TrimSpace(display)
	}
	first, _ := v["firstName"].(string)
	last, _ := v["lastName"].(string)
	full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if full != "" {
		return full
	}
	return Unknown
}

func normalizeGUID(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	v = strings.TrimPrefix(v, "{")
	v = strings.TrimSuffix(v, "}")
	return v
}

func looksLikeGUID(v string) bool {
	trimmed := normalizeGUID(v)
	return strings.Count(trimmed, "-") == 4 && len(trimmed) >= 32
}
