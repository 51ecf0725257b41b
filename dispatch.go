package demoscope

import (
	"sort"

	"github.com/dotabuff/manta"
	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"

	"demoscope/internal/metrics"
)

// registerFunc wires one message kind to the decoder, fanning every
// message of that kind into fn.
type registerFunc func(p *manta.Parser, fn func(m proto.Message))

// messageKinds is the closed dispatch table. Every kind a collector can
// subscribe to appears here exactly once; the session registers one
// decoder callback per kind and fans out to all subscribers. Configs
// naming a kind outside this table are rejected before the pass starts.
var messageKinds = map[string]registerFunc{
	"CDemoFileHeader": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDemoFileHeader(func(m *dota.CDemoFileHeader) error {
			fn(m)
			return nil
		})
	},
	"CDemoFileInfo": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDemoFileInfo(func(m *dota.CDemoFileInfo) error {
			fn(m)
			return nil
		})
	},
	"CDemoStringTables": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDemoStringTables(func(m *dota.CDemoStringTables) error {
			fn(m)
			return nil
		})
	},
	"CNETMsg_Tick": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCNETMsg_Tick(func(m *dota.CNETMsg_Tick) error {
			fn(m)
			return nil
		})
	},
	"CSVCMsg_ServerInfo": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCSVCMsg_ServerInfo(func(m *dota.CSVCMsg_ServerInfo) error {
			fn(m)
			return nil
		})
	},
	"CSVCMsg_CreateStringTable": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCSVCMsg_CreateStringTable(func(m *dota.CSVCMsg_CreateStringTable) error {
			fn(m)
			return nil
		})
	},
	"CMsgDOTACombatLogEntry": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCMsgDOTACombatLogEntry(func(m *dota.CMsgDOTACombatLogEntry) error {
			fn(m)
			return nil
		})
	},
	"CMsgSource1LegacyGameEventList": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCMsgSource1LegacyGameEventList(func(m *dota.CMsgSource1LegacyGameEventList) error {
			fn(m)
			return nil
		})
	},
	"CMsgSource1LegacyGameEvent": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCMsgSource1LegacyGameEvent(func(m *dota.CMsgSource1LegacyGameEvent) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_ChatMessage": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_ChatMessage(func(m *dota.CDOTAUserMsg_ChatMessage) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_ChatEvent": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_ChatEvent(func(m *dota.CDOTAUserMsg_ChatEvent) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_ChatWheel": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_ChatWheel(func(m *dota.CDOTAUserMsg_ChatWheel) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_TE_Projectile": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_TE_Projectile(func(m *dota.CDOTAUserMsg_TE_Projectile) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_LocationPing": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_LocationPing(func(m *dota.CDOTAUserMsg_LocationPing) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_MinimapEvent": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_MinimapEvent(func(m *dota.CDOTAUserMsg_MinimapEvent) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_OverheadEvent": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_OverheadEvent(func(m *dota.CDOTAUserMsg_OverheadEvent) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_ItemPurchased": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_ItemPurchased(func(m *dota.CDOTAUserMsg_ItemPurchased) error {
			fn(m)
			return nil
		})
	},
	"CDOTAUserMsg_CourierKilledAlert": func(p *manta.Parser, fn func(proto.Message)) {
		p.Callbacks.OnCDOTAUserMsg_CourierKilledAlert(func(m *dota.CDOTAUserMsg_CourierKilledAlert) error {
			fn(m)
			return nil
		})
	},
}

// MessageKinds returns the message kinds available to the message
// collector, sorted by name.
func MessageKinds() []string {
	kinds := make([]string, 0, len(messageKinds))
	for kind := range messageKinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// subscribe adds a handler for one message kind. The session registers
// each kind with the decoder once, no matter how many handlers it has.
func (s *session) subscribe(kind string, fn func(m proto.Message)) {
	s.msgSubs[kind] = append(s.msgSubs[kind], fn)
}

// subscribeEntity adds a handler for entity operations. The state table
// handler always runs first so subscribers see updated state.
func (s *session) subscribeEntity(fn func(e *manta.Entity, op manta.EntityOp)) {
	s.entitySubs = append(s.entitySubs, fn)
}

// subscribeModifier adds a handler for buff table entries.
func (s *session) subscribeModifier(fn func(m *dota.CDOTAModifierBuffTableEntry)) {
	s.modifierSubs = append(s.modifierSubs, fn)
}

// bindCallbacks registers every subscribed kind with the decoder. Each
// kind gets exactly one decoder callback; collector handlers never
// touch the decoder directly.
func (s *session) bindCallbacks() error {
	for kind, subs := range s.msgSubs {
		reg, ok := messageKinds[kind]
		if !ok {
			return &UnknownKindError{Kind: kind}
		}
		subs := subs
		reg(s.parser, func(m proto.Message) {
			s.result.Stats.MessagesSeen++
			metrics.RecordMessage()
			for _, fn := range subs {
				fn(m)
			}
			s.maybeStop()
		})
	}

	if len(s.entitySubs) > 0 {
		s.parser.OnEntity(func(e *manta.Entity, op manta.EntityOp) error {
			for _, fn := range s.entitySubs {
				fn(e, op)
			}
			s.maybeStop()
			return nil
		})
	}

	if len(s.modifierSubs) > 0 {
		s.parser.OnModifierTableEntry(func(m *dota.CDOTAModifierBuffTableEntry) error {
			for _, fn := range s.modifierSubs {
				fn(m)
			}
			return nil
		})
	}

	return nil
}
