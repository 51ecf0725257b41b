package demoscope

import (
	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"

	"demoscope/entity"
)

// modifiersCollector keeps buff table entries with their names resolved
// against the modifier name table.
type modifiersCollector struct {
	cfg *ModifiersConfig
	st  *CollectorStatus
}

func (c *modifiersCollector) name() string { return "modifiers" }

func (c *modifiersCollector) attach(s *session) {
	c.st = s.status(c.name())
	s.subscribeModifier(s.guardModifier(c.name(), func(m *dota.CDOTAModifierBuffTableEntry) {
		if c.cfg.AurasOnly && !m.GetAura() {
			return
		}
		if !s.inRange(s.parser.Tick) {
			return
		}
		if s.capped(c.name(), c.st.Items, c.cfg.MaxEntries) {
			return
		}

		name, ok := s.parser.LookupStringByIndex("ModifierNames", m.GetModifierClass())
		if !ok {
			c.st.UnresolvedReferences++
		}
		s.result.Modifiers = append(s.result.Modifiers, Modifier{
			Tick:          s.parser.Tick,
			Name:          name,
			Parent:        entity.HandleFromRaw(uint64(uint32(m.GetParent()))),
			Caster:        entity.HandleFromRaw(uint64(uint32(m.GetCaster()))),
			Ability:       entity.HandleFromRaw(uint64(uint32(m.GetAbility()))),
			ModifierClass: m.GetModifierClass(),
			SerialNum:     m.GetSerialNum(),
			Index:         m.GetIndex(),
			CreationTime:  m.GetCreationTime(),
			Duration:      m.GetDuration(),
			StackCount:    m.GetStackCount(),
			Aura:          m.GetAura(),
		})
		c.st.Items++
	}))
}

func (c *modifiersCollector) finalize(*session) {}

func (c *modifiersCollector) done() bool {
	return c.cfg.MaxEntries > 0 && c.st != nil && c.st.Items >= c.cfg.MaxEntries
}

// stringTablesCollector keeps announced table names and full string
// table dumps from the stream.
type stringTablesCollector struct {
	cfg    *StringTablesConfig
	tables map[string]bool
	seen   map[string]bool
	st     *CollectorStatus
}

func newStringTablesCollector(cfg *StringTablesConfig) *stringTablesCollector {
	c := &stringTablesCollector{
		cfg:  cfg,
		seen: make(map[string]bool),
	}
	if len(cfg.Tables) > 0 {
		c.tables = make(map[string]bool, len(cfg.Tables))
		for _, t := range cfg.Tables {
			c.tables[t] = true
		}
	}
	return c
}

func (c *stringTablesCollector) name() string { return "string_tables" }

func (c *stringTablesCollector) attach(s *session) {
	c.st = s.status(c.name())

	s.subscribe("CSVCMsg_CreateStringTable", s.guard(c.name(), func(m proto.Message) {
		t, ok := m.(*dota.CSVCMsg_CreateStringTable)
		if !ok {
			return
		}
		name := t.GetName()
		if c.tables != nil && !c.tables[name] {
			return
		}
		if c.seen[name] {
			return
		}
		c.seen[name] = true
		s.result.TableNames = append(s.result.TableNames, name)
	}))

	s.subscribe("CDemoStringTables", s.guard(c.name(), func(m proto.Message) {
		tables, ok := m.(*dota.CDemoStringTables)
		if !ok {
			return
		}
		for _, t := range tables.GetTables() {
			if c.tables != nil && !c.tables[t.GetTableName()] {
				continue
			}
			dump := StringTableDump{
				Tick: s.parser.Tick,
				Name: t.GetTableName(),
			}
			for i, item := range t.GetItems() {
				if s.capped(c.name(), c.st.Items, c.cfg.MaxEntries) {
					continue
				}
				dump.Entries = append(dump.Entries, StringTableEntry{
					Index: i,
					Key:   item.GetStr(),
				})
				c.st.Items++
			}
			if len(dump.Entries) > 0 {
				s.result.StringTables = append(s.result.StringTables, dump)
			}
		}
	}))
}

func (c *stringTablesCollector) finalize(*session) {}

func (c *stringTablesCollector) done() bool {
	return c.cfg.MaxEntries > 0 && c.st != nil && c.st.Items >= c.cfg.MaxEntries
}
