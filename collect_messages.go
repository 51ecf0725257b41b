package demoscope

import (
	"google.golang.org/protobuf/proto"
)

// messagesCollector retains raw messages of the configured kinds as
// deterministic protobuf bytes. Encoding is stable across runs so two
// passes over the same file produce byte-identical data.
type messagesCollector struct {
	cfg *MessagesConfig
	st  *CollectorStatus
}

func (c *messagesCollector) name() string { return "messages" }

func (c *messagesCollector) attach(s *session) {
	c.st = s.status(c.name())
	marshal := proto.MarshalOptions{Deterministic: true}

	for _, kind := range c.cfg.Kinds {
		kind := kind
		s.subscribe(kind, s.guard(c.name(), func(m proto.Message) {
			if !s.inRange(s.parser.Tick) {
				return
			}
			if s.capped(c.name(), c.st.Items, c.cfg.MaxMessages) {
				return
			}
			data, err := marshal.Marshal(m)
			if err != nil {
				s.log.WithField("kind", kind).Debugf("marshal failed: %v", err)
				return
			}
			msg := Message{
				Kind:    kind,
				Tick:    s.parser.Tick,
				NetTick: s.parser.NetTick,
				Data:    data,
			}
			if c.cfg.Match != nil && !c.cfg.Match(&msg) {
				return
			}
			s.result.Messages = append(s.result.Messages, msg)
			c.st.Items++
		}))
	}
}

func (c *messagesCollector) finalize(*session) {}

func (c *messagesCollector) done() bool {
	return c.cfg.MaxMessages > 0 && c.st != nil && c.st.Items >= c.cfg.MaxMessages
}
