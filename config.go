package demoscope

import "demoscope/combatlog"

// Config selects what one decode pass collects. Each non-nil section
// enables one collector; nil sections cost nothing during the pass.
// The zero Config enables nothing and is rejected by Parse.
type Config struct {
	Header       *HeaderConfig
	GameInfo     *GameInfoConfig
	CombatLog    *CombatLogConfig
	Entities     *EntitiesConfig
	GameEvents   *GameEventsConfig
	Messages     *MessagesConfig
	Modifiers    *ModifiersConfig
	StringTables *StringTablesConfig
	Attacks      *AttacksConfig
	Deaths       *DeathsConfig
	Chat         *ChatConfig

	// Progress, when set, receives the current demo tick a few times
	// per second while the pass runs.
	Progress func(tick uint32)
}

// HeaderConfig enables the file header collector.
type HeaderConfig struct{}

// GameInfoConfig enables the end-of-file match summary collector.
type GameInfoConfig struct{}

// CombatLogConfig enables the combat log collector.
type CombatLogConfig struct {
	// MaxEntries caps kept entries. Zero means unlimited.
	MaxEntries int
	// Types keeps only the named combat log types, for example
	// "DOTA_COMBATLOG_DAMAGE". Empty keeps every type.
	Types []string
	// HeroesOnly keeps only entries where the attacker or target
	// is a hero.
	HeroesOnly bool
	// EnrichHeroLevels backfills attacker and target hero levels
	// from entity state after the pass.
	EnrichHeroLevels bool
	// Match, when set, keeps only entries it returns true for.
	// It runs after name resolution.
	Match func(*combatlog.Entry) bool
}

// EntitiesConfig enables the entity snapshot collector.
type EntitiesConfig struct {
	// Interval spaces snapshots that many ticks apart. Zero uses the
	// engine default unless TargetTicks is set.
	Interval uint32
	// TargetTicks requests snapshots at exactly these ticks instead
	// of an interval grid. The pass stops early once all are captured
	// and every other collector is done.
	TargetTicks []uint32
	// MaxSnapshots caps kept snapshots. Zero means unlimited.
	MaxSnapshots int
	// IncludeAbilities adds ability and talent lists to each hero.
	IncludeAbilities bool
	// IncludeCreeps adds lane and neutral creeps to each snapshot.
	IncludeCreeps bool
	// IncludeBuildings adds towers, barracks and ancients.
	IncludeBuildings bool
	// IncludeIllusions adds illusion and clone heroes.
	IncludeIllusions bool
	// TargetHeroes keeps only the named heroes, matched against unit
	// names like "npc_dota_hero_axe". Empty keeps all ten.
	TargetHeroes []string
}

// GameEventsConfig enables the source1 legacy game event collector.
type GameEventsConfig struct {
	// Names keeps only the named events, for example "dota_combatlog".
	// Empty keeps every event.
	Names []string
	// MaxEvents caps kept events. Zero means unlimited.
	MaxEvents int
}

// MessagesConfig enables raw message retention by kind.
type MessagesConfig struct {
	// Kinds names the message kinds to retain, for example
	// "CDOTAUserMsg_ChatEvent". Unknown kinds fail Parse up front.
	Kinds []string
	// Match, when set, keeps only messages it returns true for.
	Match func(*Message) bool
	// MaxMessages caps kept messages. Zero means unlimited.
	MaxMessages int
}

// ModifiersConfig enables the buff table collector.
type ModifiersConfig struct {
	// AurasOnly keeps only aura modifiers.
	AurasOnly bool
	// MaxEntries caps kept entries. Zero means unlimited.
	MaxEntries int
}

// StringTablesConfig enables the string table dump collector.
type StringTablesConfig struct {
	// Tables keeps only the named tables. Empty keeps every table.
	Tables []string
	// MaxEntries caps kept entries across all dumps. Zero means
	// unlimited.
	MaxEntries int
}

// AttacksConfig enables the attack projectile collector.
type AttacksConfig struct {
	// MaxEvents caps kept events. Zero means unlimited.
	MaxEvents int
}

// DeathsConfig enables the death collector.
type DeathsConfig struct {
	// ClassFilter keeps only deaths whose entity class contains the
	// substring. Empty keeps every death.
	ClassFilter string
	// MaxDeaths caps kept deaths. Zero means unlimited.
	MaxDeaths int
}

// ChatConfig enables the all-chat collector.
type ChatConfig struct {
	// MaxMessages caps kept messages. Zero means unlimited.
	MaxMessages int
}

// enabled counts the collectors a config turns on.
func (c Config) enabled() int {
	n := 0
	if c.Header != nil {
		n++
	}
	if c.GameInfo != nil {
		n++
	}
	if c.CombatLog != nil {
		n++
	}
	if c.Entities != nil {
		n++
	}
	if c.GameEvents != nil {
		n++
	}
	if c.Messages != nil {
		n++
	}
	if c.Modifiers != nil {
		n++
	}
	if c.StringTables != nil {
		n++
	}
	if c.Attacks != nil {
		n++
	}
	if c.Deaths != nil {
		n++
	}
	if c.Chat != nil {
		n++
	}
	return n
}

// validate rejects configs no pass could serve.
func (c Config) validate() error {
	if c.enabled() == 0 {
		return ErrNoCollectors
	}
	if c.Messages != nil {
		for _, kind := range c.Messages.Kinds {
			if _, ok := messageKinds[kind]; !ok {
				return &UnknownKindError{Kind: kind}
			}
		}
	}
	return nil
}
