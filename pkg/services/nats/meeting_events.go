package natsservice

import (
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

type MeetingEventType string

const (
	MeetingEventTranscript MeetingEventType = "transcript"
	MeetingEventStatus     MeetingEventType = "status"
	MeetingEventSummary    MeetingEventType = "summary"
)

// MeetingEvent is relayed to every viewer of a meeting.
type MeetingEvent struct {
	Type      MeetingEventType `json:"type"`
	MeetingId string           `json:"meeting_id"`
	// Status is set for status events.
	Status string `json:"status,omitempty"`
	// Data carries the transcript or summary as JSON.
	Data json.RawMessage `json:"data,omitempty"`
}

func (s *NatsService) PublishMeetingEvent(ev *MeetingEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.nc.Publish(s.MeetingSubject(ev.MeetingId), data)
}

// SubscribeMeetingEvents calls handler for every event of the meeting until
// the subscription is drained.
func (s *NatsService) SubscribeMeetingEvents(meetingId string, handler func(ev *MeetingEvent)) (*nats.Subscription, error) {
	return s.nc.Subscribe(s.MeetingSubject(meetingId), func(msg *nats.Msg) {
		ev := new(MeetingEvent)
		if err := json.Unmarshal(msg.Data, ev); err != nil {
			s.logger.WithError(err).Errorln("failed to unmarshal meeting event")
			return
		}
		handler(ev)
	})
}
