package natsnotice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestPublisher_Notify_PublishesPerUserSubject(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	p := NewPublisher(conn, "", nil)

	err := p.Notify(context.Background(), noticesink.Notice{
		UserID:      "sub-1",
		ClubID:      "club-1",
		Title:       "Success",
		Description: "You have joined the club!",
		Variant:     noticesink.VariantDefault,
		CreatedAt:   time.Unix(100, 0),
	})
	if err != nil {
		t.Fatalf("Notify err=%v", err)
	}
	if len(conn.msgs) != 1 {
		t.Fatalf("published %d msgs, want 1", len(conn.msgs))
	}
	msg := conn.msgs[0]
	if msg.Subject != DefaultSubject+".sub-1" {
		t.Fatalf("subject=%q", msg.Subject)
	}

	var ev noticeEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Description != "You have joined the club!" || ev.Variant != "default" || ev.ClubID != "club-1" {
		t.Fatalf("event=%+v", ev)
	}
}

func TestPublisher_Notify_WrapsPublishError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	p := NewPublisher(&fakeConn{err: boom}, "notices", nil)
	if err := p.Notify(context.Background(), noticesink.Notice{UserID: "u"}); !errors.Is(err, boom) {
		t.Fatalf("Notify err=%v, want wrapping %v", err, boom)
	}
}
