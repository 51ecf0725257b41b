package demoscope

import (
	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"
)

// headerCollector captures the demo file header.
type headerCollector struct {
	captured bool
}

func (c *headerCollector) name() string { return "header" }

func (c *headerCollector) attach(s *session) {
	s.subscribe("CDemoFileHeader", s.guard(c.name(), func(m proto.Message) {
		h, ok := m.(*dota.CDemoFileHeader)
		if !ok || c.captured {
			return
		}
		s.result.Header = &FileHeader{
			MapName:         h.GetMapName(),
			ServerName:      h.GetServerName(),
			ClientName:      h.GetClientName(),
			GameDirectory:   h.GetGameDirectory(),
			NetworkProtocol: h.GetPatchVersion(),
			DemoFileStamp:   h.GetDemoFileStamp(),
			BuildNum:        h.GetBuildNum(),
			Game:            h.GetGame(),
			ServerStartTick: h.GetServerStartTick(),
		}
		c.captured = true
		s.status(c.name()).Items = 1
	}))
}

func (c *headerCollector) finalize(*session) {}

func (c *headerCollector) done() bool { return c.captured }

// gameInfoCollector captures the end-of-file match summary.
type gameInfoCollector struct {
	captured bool
}

func (c *gameInfoCollector) name() string { return "game_info" }

func (c *gameInfoCollector) attach(s *session) {
	s.subscribe("CDemoFileInfo", s.guard(c.name(), func(m proto.Message) {
		fi, ok := m.(*dota.CDemoFileInfo)
		if !ok || c.captured {
			return
		}

		info := &GameInfo{
			PlaybackTime:   fi.GetPlaybackTime(),
			PlaybackTicks:  fi.GetPlaybackTicks(),
			PlaybackFrames: fi.GetPlaybackFrames(),
		}
		if d := fi.GetGameInfo().GetDota(); d != nil {
			info.MatchID = d.GetMatchId()
			info.GameMode = d.GetGameMode()
			info.GameWinner = d.GetGameWinner()
			info.LeagueID = d.GetLeagueid()
			info.EndTime = d.GetEndTime()
			info.RadiantTeamID = d.GetRadiantTeamId()
			info.DireTeamID = d.GetDireTeamId()
			info.RadiantTeamTag = d.GetRadiantTeamTag()
			info.DireTeamTag = d.GetDireTeamTag()
			for _, p := range d.GetPlayerInfo() {
				info.Players = append(info.Players, PlayerInfo{
					HeroName:     string(p.GetHeroName()),
					PlayerName:   string(p.GetPlayerName()),
					IsFakeClient: p.GetIsFakeClient(),
					SteamID:      p.GetSteamid(),
					GameTeam:     p.GetGameTeam(),
				})
			}
			for _, pb := range d.GetPicksBans() {
				info.PicksBans = append(info.PicksBans, PickBan{
					IsPick: pb.GetIsPick(),
					Team:   int32(pb.GetTeam()),
					HeroID: pb.GetHeroId(),
				})
			}
		}

		s.result.GameInfo = info
		c.captured = true
		s.status(c.name()).Items = 1
	}))
}

func (c *gameInfoCollector) finalize(*session) {}

func (c *gameInfoCollector) done() bool { return c.captured }

// chatCollector keeps all-chat lines.
type chatCollector struct {
	cfg *ChatConfig
	st  *CollectorStatus
}

func (c *chatCollector) name() string { return "chat" }

func (c *chatCollector) attach(s *session) {
	c.st = s.status(c.name())
	s.subscribe("CDOTAUserMsg_ChatMessage", s.guard(c.name(), func(m proto.Message) {
		msg, ok := m.(*dota.CDOTAUserMsg_ChatMessage)
		if !ok {
			return
		}
		if !s.inRange(s.parser.Tick) {
			return
		}
		if s.capped(c.name(), c.st.Items, c.cfg.MaxMessages) {
			return
		}
		s.result.Chat = append(s.result.Chat, ChatMessage{
			Tick:    s.parser.Tick,
			NetTick: s.parser.NetTick,
			Text:    msg.String(),
		})
		c.st.Items++
	}))
}

func (c *chatCollector) finalize(*session) {}

func (c *chatCollector) done() bool {
	return c.cfg.MaxMessages > 0 && c.st != nil && c.st.Items >= c.cfg.MaxMessages
}
