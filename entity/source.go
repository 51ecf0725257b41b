package entity

import "fmt"

// PropSource is the read surface of one entity. *manta.Entity satisfies it
// for live entities; State satisfies it for stored copies, so code that
// projects typed values out of an entity works on both.
type PropSource interface {
	GetClassName() string
	GetIndex() int32
	GetSerial() int32
	Get(name string) interface{}
	GetInt32(name string) (int32, bool)
	GetUint32(name string) (uint32, bool)
	GetUint64(name string) (uint64, bool)
	GetFloat32(name string) (float32, bool)
	GetString(name string) (string, bool)
	GetBool(name string) (bool, bool)
	Map() map[string]interface{}
}

// Pool is a point-in-time entity set a view can be built from: the live
// table during a pass, or a stored checkpoint copy afterwards.
type Pool interface {
	// ByIndex returns the entity occupying an index slot.
	ByIndex(idx int32) (PropSource, bool)
	// Each visits every entity until fn returns false. Visit order is
	// unspecified; callers that need determinism sort their output.
	Each(fn func(PropSource) bool)
}

// Int32 reads a property, defaulting to 0 when absent.
func Int32(src PropSource, name string) int32 {
	v, _ := src.GetInt32(name)
	return v
}

// Uint32 reads a property, defaulting to 0 when absent.
func Uint32(src PropSource, name string) uint32 {
	v, _ := src.GetUint32(name)
	return v
}

// Uint64 reads a property, defaulting to 0 when absent.
func Uint64(src PropSource, name string) uint64 {
	v, _ := src.GetUint64(name)
	return v
}

// Float32 reads a property, defaulting to 0 when absent.
func Float32(src PropSource, name string) float32 {
	v, _ := src.GetFloat32(name)
	return v
}

// Str reads a property, defaulting to "" when absent.
func Str(src PropSource, name string) string {
	v, _ := src.GetString(name)
	return v
}

// Bool reads a property, defaulting to false when absent.
func Bool(src PropSource, name string) bool {
	v, _ := src.GetBool(name)
	return v
}

// TeamNum reads m_iTeamNum, which decodes as either width.
func TeamNum(src PropSource) int32 {
	if team, ok := src.GetUint32("m_iTeamNum"); ok {
		return int32(team)
	}
	return Int32(src, "m_iTeamNum")
}

// Position composes world coordinates from the body component cell and
// offset properties: world = cell*128 + vec - 16384.
func Position(src PropSource) (x, y, z float32) {
	if cellX, ok := src.GetUint32("CBodyComponent.m_cellX"); ok {
		if vecX, ok := src.GetFloat32("CBodyComponent.m_vecX"); ok {
			x = float32(cellX)*128.0 + vecX - 16384.0
		}
	}
	if cellY, ok := src.GetUint32("CBodyComponent.m_cellY"); ok {
		if vecY, ok := src.GetFloat32("CBodyComponent.m_vecY"); ok {
			y = float32(cellY)*128.0 + vecY - 16384.0
		}
	}
	if cellZ, ok := src.GetUint32("CBodyComponent.m_cellZ"); ok {
		if vecZ, ok := src.GetFloat32("CBodyComponent.m_vecZ"); ok {
			z = float32(cellZ)*128.0 + vecZ - 16384.0
		}
	}
	return x, y, z
}

// VecSlot formats an indexed vector property name, e.g.
// VecSlot("m_vecAbilities", 3) is "m_vecAbilities.0003".
func VecSlot(prefix string, slot int) string {
	return fmt.Sprintf("%s.%04d", prefix, slot)
}
