package demoscope

import (
	"demoscope/combatlog"
	"demoscope/entity"
	"demoscope/snapshot"
)

// Result holds everything one decode pass collected. Sections for
// collectors that were not enabled stay zero valued.
type Result struct {
	Header       *FileHeader            `json:"header,omitempty"`
	GameInfo     *GameInfo              `json:"game_info,omitempty"`
	CombatLog    []combatlog.Entry      `json:"combat_log,omitempty"`
	Snapshots    []snapshot.StateView   `json:"snapshots,omitempty"`
	GameEvents   []GameEvent            `json:"game_events,omitempty"`
	Messages     []Message              `json:"messages,omitempty"`
	Modifiers    []Modifier             `json:"modifiers,omitempty"`
	StringTables []StringTableDump      `json:"string_tables,omitempty"`
	TableNames   []string               `json:"table_names,omitempty"`
	Attacks      []AttackEvent          `json:"attacks,omitempty"`
	Deaths       []EntityDeath          `json:"deaths,omitempty"`
	Chat         []ChatMessage          `json:"chat,omitempty"`

	// AnchorKnown reports whether the game clock anchor was discovered.
	// When false every game time in the result is relative to tick zero.
	AnchorKnown bool `json:"anchor_known"`
	// AnchorTick is the tick at which the game clock reached zero.
	AnchorTick uint32 `json:"anchor_tick"`
	// Partial marks results cut short by a decode failure.
	Partial bool `json:"partial"`

	// Collectors reports per-collector outcomes keyed by collector name.
	Collectors map[string]CollectorStatus `json:"collectors"`
	// Stats aggregates pass-level counters.
	Stats Stats `json:"stats"`
}

// CollectorStatus reports how one collector fared during the pass.
type CollectorStatus struct {
	// Enabled reports whether the collector ran.
	Enabled bool `json:"enabled"`
	// Items is the number of records the collector kept.
	Items int `json:"items"`
	// Truncated reports whether the collector hit its cap.
	Truncated bool `json:"truncated"`
	// Dropped counts records discarded after the cap was hit.
	Dropped int `json:"dropped"`
	// Err holds the failure that disabled the collector mid-pass, if any.
	Err string `json:"err,omitempty"`
	// UnresolvedReferences counts lookups that found no entity or name.
	UnresolvedReferences int `json:"unresolved_references,omitempty"`
}

// Stats aggregates counters for one decode pass.
type Stats struct {
	// DecodePasses is the number of full passes over the file.
	DecodePasses int `json:"decode_passes"`
	// LastTick is the final demo tick reached.
	LastTick uint32 `json:"last_tick"`
	// NetTick is the final network tick reached.
	NetTick uint32 `json:"net_tick"`
	// EntityOps counts entity create, update and delete operations.
	EntityOps uint64 `json:"entity_ops"`
	// MessagesSeen counts messages fanned out to collectors.
	MessagesSeen uint64 `json:"messages_seen"`
	// Checkpoints counts state copies captured during the pass.
	Checkpoints int `json:"checkpoints"`
}

// FileHeader mirrors the demo file header record.
type FileHeader struct {
	MapName         string `json:"map_name"`
	ServerName      string `json:"server_name"`
	ClientName      string `json:"client_name"`
	GameDirectory   string `json:"game_directory"`
	NetworkProtocol int32  `json:"network_protocol"`
	DemoFileStamp   string `json:"demo_file_stamp"`
	BuildNum        int32  `json:"build_num"`
	Game            string `json:"game"`
	ServerStartTick int32  `json:"server_start_tick"`
}

// GameInfo mirrors the end-of-file match summary record.
type GameInfo struct {
	MatchID        uint64       `json:"match_id"`
	GameMode       int32        `json:"game_mode"`
	GameWinner     int32        `json:"game_winner"`
	LeagueID       uint32       `json:"league_id"`
	EndTime        uint32       `json:"end_time"`
	RadiantTeamID  uint32       `json:"radiant_team_id"`
	DireTeamID     uint32       `json:"dire_team_id"`
	RadiantTeamTag string       `json:"radiant_team_tag"`
	DireTeamTag    string       `json:"dire_team_tag"`
	PlaybackTime   float32      `json:"playback_time"`
	PlaybackTicks  int32        `json:"playback_ticks"`
	PlaybackFrames int32        `json:"playback_frames"`
	Players        []PlayerInfo `json:"players,omitempty"`
	PicksBans      []PickBan    `json:"picks_bans,omitempty"`
}

// PlayerInfo describes one player from the match summary.
type PlayerInfo struct {
	HeroName     string `json:"hero_name"`
	PlayerName   string `json:"player_name"`
	IsFakeClient bool   `json:"is_fake_client"`
	SteamID      uint64 `json:"steam_id"`
	GameTeam     int32  `json:"game_team"`
}

// PickBan describes one draft phase event from the match summary.
type PickBan struct {
	IsPick bool  `json:"is_pick"`
	Team   int32 `json:"team"`
	HeroID int32 `json:"hero_id"`
}

// GameEvent is one source1 legacy game event with decoded fields.
type GameEvent struct {
	Name    string                 `json:"name"`
	Tick    uint32                 `json:"tick"`
	NetTick uint32                 `json:"net_tick"`
	Fields  map[string]interface{} `json:"fields"`
}

// Message is one raw demo message retained by kind. Data is the
// deterministic protobuf encoding of the message body.
type Message struct {
	Kind    string `json:"kind"`
	Tick    uint32 `json:"tick"`
	NetTick uint32 `json:"net_tick"`
	Data    []byte `json:"data"`
}

// Modifier is one buff table entry observed during the pass.
type Modifier struct {
	Tick          uint32        `json:"tick"`
	Name          string        `json:"name,omitempty"`
	Parent        entity.Handle `json:"parent"`
	Caster        entity.Handle `json:"caster"`
	Ability       entity.Handle `json:"ability"`
	ModifierClass int32         `json:"modifier_class"`
	SerialNum     int32         `json:"serial_num"`
	Index         int32         `json:"index"`
	CreationTime  float32       `json:"creation_time"`
	Duration      float32       `json:"duration"`
	StackCount    int32         `json:"stack_count"`
	Aura          bool          `json:"aura"`
}

// StringTableDump is one full string table snapshot from the stream.
type StringTableDump struct {
	Tick    uint32             `json:"tick"`
	Name    string             `json:"name"`
	Entries []StringTableEntry `json:"entries"`
}

// StringTableEntry is one key within a string table dump.
type StringTableEntry struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
}

// AttackEvent is one attack projectile launch with both endpoints
// resolved against the state table at launch time.
type AttackEvent struct {
	Tick            uint32  `json:"tick"`
	NetTick         uint32  `json:"net_tick"`
	GameTime        float32 `json:"game_time"`
	GameTimeKnown   bool    `json:"game_time_known"`
	SourceHandle    int64   `json:"source_handle"`
	TargetHandle    int64   `json:"target_handle"`
	SourceIndex     int32   `json:"source_index"`
	TargetIndex     int32   `json:"target_index"`
	SourceName      string  `json:"source_name,omitempty"`
	TargetName      string  `json:"target_name,omitempty"`
	ProjectileSpeed int32   `json:"projectile_speed"`
	Dodgeable       bool    `json:"dodgeable"`
	LaunchTick      int32   `json:"launch_tick"`
}

// EntityDeath is one unit death observed through life state transitions.
type EntityDeath struct {
	Tick          uint32        `json:"tick"`
	GameTime      float32       `json:"game_time"`
	GameTimeKnown bool          `json:"game_time_known"`
	Handle        entity.Handle `json:"handle"`
	ClassName     string        `json:"class_name"`
	UnitName      string        `json:"unit_name,omitempty"`
	Team          int32         `json:"team"`
	X             float32       `json:"x"`
	Y             float32       `json:"y"`
	IsHero        bool          `json:"is_hero"`
}

// ChatMessage is one all-chat line from the stream.
type ChatMessage struct {
	Tick    uint32 `json:"tick"`
	NetTick uint32 `json:"net_tick"`
	Text    string `json:"text"`
}
