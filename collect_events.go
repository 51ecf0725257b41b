package demoscope

import (
	"fmt"

	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"
)

// gameEventsCollector decodes source1 legacy game events against the
// descriptor list announced at the head of the stream.
type gameEventsCollector struct {
	cfg         *GameEventsConfig
	names       map[string]bool
	descriptors map[int32]eventDescriptor
	st          *CollectorStatus
}

type eventDescriptor struct {
	name string
	keys []string
}

func newGameEventsCollector(cfg *GameEventsConfig) *gameEventsCollector {
	c := &gameEventsCollector{
		cfg:         cfg,
		descriptors: make(map[int32]eventDescriptor),
	}
	if len(cfg.Names) > 0 {
		c.names = make(map[string]bool, len(cfg.Names))
		for _, n := range cfg.Names {
			c.names[n] = true
		}
	}
	return c
}

func (c *gameEventsCollector) name() string { return "game_events" }

func (c *gameEventsCollector) attach(s *session) {
	c.st = s.status(c.name())

	s.subscribe("CMsgSource1LegacyGameEventList", s.guard(c.name(), func(m proto.Message) {
		list, ok := m.(*dota.CMsgSource1LegacyGameEventList)
		if !ok {
			return
		}
		for _, d := range list.GetDescriptors() {
			keys := make([]string, len(d.GetKeys()))
			for i, k := range d.GetKeys() {
				keys[i] = k.GetName()
			}
			c.descriptors[d.GetEventid()] = eventDescriptor{name: d.GetName(), keys: keys}
		}
	}))

	s.subscribe("CMsgSource1LegacyGameEvent", s.guard(c.name(), func(m proto.Message) {
		ev, ok := m.(*dota.CMsgSource1LegacyGameEvent)
		if !ok {
			return
		}
		d, ok := c.descriptors[ev.GetEventid()]
		if !ok {
			c.st.UnresolvedReferences++
			return
		}
		if c.names != nil && !c.names[d.name] {
			return
		}
		if !s.inRange(s.parser.Tick) {
			return
		}
		if s.capped(c.name(), c.st.Items, c.cfg.MaxEvents) {
			return
		}

		fields := make(map[string]interface{}, len(ev.GetKeys()))
		for i, key := range ev.GetKeys() {
			fieldName := fmt.Sprintf("field_%d", i)
			if i < len(d.keys) {
				fieldName = d.keys[i]
			}
			switch key.GetType() {
			case 1:
				fields[fieldName] = key.GetValString()
			case 2:
				fields[fieldName] = key.GetValFloat()
			case 3:
				fields[fieldName] = key.GetValLong()
			case 4:
				fields[fieldName] = key.GetValShort()
			case 5:
				fields[fieldName] = key.GetValByte()
			case 6:
				fields[fieldName] = key.GetValBool()
			case 7:
				fields[fieldName] = key.GetValUint64()
			}
		}

		s.result.GameEvents = append(s.result.GameEvents, GameEvent{
			Name:    d.name,
			Tick:    s.parser.Tick,
			NetTick: s.parser.NetTick,
			Fields:  fields,
		})
		c.st.Items++
	}))
}

func (c *gameEventsCollector) finalize(*session) {}

func (c *gameEventsCollector) done() bool {
	return c.cfg.MaxEvents > 0 && c.st != nil && c.st.Items >= c.cfg.MaxEvents
}
