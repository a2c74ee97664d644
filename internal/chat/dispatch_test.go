package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"agentschat/internal/agent"
	"agentschat/internal/models"
	"agentschat/internal/store"
	"agentschat/internal/uploads"
)

// newDispatchService uses a short callback timeout so slow-agent tests
// settle quickly.
func newDispatchService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New()
	up, err := uploads.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("uploads.NewStore error: %v", err)
	}
	dispatcher := agent.NewDispatcher(agent.NewClient(300*time.Millisecond), 4, nil)
	return NewService(st, dispatcher, up, nil), st
}

func stubAgent(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupGroupWithAgent(t *testing.T, svc *Service, st *store.Store, agentName, agentURL string) (*models.User, *models.Group, *models.Agent) {
	t.Helper()
	user := registerUser(t, svc, "poster")
	group, err := svc.CreateGroup(context.Background(), user, "room")
	if err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}
	ag := &models.Agent{ID: "agent-" + agentName, Name: agentName, APIURL: agentURL}
	st.AddAgent(ag)
	st.AttachAgent(group.ID, ag.ID)
	return user, group, ag
}

func TestPostMessageTextNoAttachment(t *testing.T) {
	svc, st := newDispatchService(t)
	user := registerUser(t, svc, "poster")
	group, _ := svc.CreateGroup(context.Background(), user, "room")

	msg, err := svc.PostMessage(context.Background(), user, group.ID, "hello", nil)
	if err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if msg.Type != models.MessageText {
		t.Fatalf("expected text type, got %s", msg.Type)
	}
	if msg.AudioPath != "" {
		t.Fatalf("unexpected audio path %q", msg.AudioPath)
	}
	if msg.Sender.Kind != models.SenderUser || msg.Sender.ID != user.ID {
		t.Fatalf("sender mismatch: %+v", msg.Sender)
	}
	if got := st.MessagesForGroup(group.ID); len(got) != 1 || got[0].ID != msg.ID {
		t.Fatalf("expected exactly the inbound message persisted")
	}
}

func TestPostMessageWithAttachment(t *testing.T) {
	svc, _ := newDispatchService(t)
	user := registerUser(t, svc, "poster")
	group, _ := svc.CreateGroup(context.Background(), user, "room")

	att := &Attachment{Filename: "note.ogg", Data: []byte("audio-bytes")}
	first, err := svc.PostMessage(context.Background(), user, group.ID, "", att)
	if err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if first.Type != models.MessageAudio {
		t.Fatalf("expected audio type, got %s", first.Type)
	}
	if first.AudioPath == "" || first.AudioPath == "note.ogg" {
		t.Fatalf("expected a fresh stored path, got %q", first.AudioPath)
	}
	// Same filename again must land on a distinct path.
	second, err := svc.PostMessage(context.Background(), user, group.ID, "", att)
	if err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if second.AudioPath == first.AudioPath {
		t.Fatalf("repeated uploads of the same filename collided: %q", first.AudioPath)
	}
}

func TestMentionDispatchSuccess(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	srv := stubAgent(t, http.StatusOK, "I'm fine", &calls)
	user, group, ag := setupGroupWithAgent(t, svc, st, "Bob", srv.URL)

	inbound, err := svc.PostMessage(context.Background(), user, group.ID, "hello @Bob how are you", nil)
	if err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if inbound.Sender.Kind != models.SenderUser {
		t.Fatalf("PostMessage must return the inbound message, got sender %+v", inbound.Sender)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one callback, got %d", n)
	}

	msgs := st.MessagesForGroup(group.ID)
	if len(msgs) != 2 {
		t.Fatalf("expected inbound + reply, got %d messages", len(msgs))
	}
	reply := msgs[1]
	if reply.Sender.Kind != models.SenderAgent || reply.Sender.ID != ag.ID {
		t.Fatalf("reply sender mismatch: %+v", reply.Sender)
	}
	if reply.Content != "I'm fine" {
		t.Fatalf("reply content mismatch: %q", reply.Content)
	}
	if reply.Type != models.MessageText {
		t.Fatalf("reply should default to text, got %s", reply.Type)
	}
}

func TestMentionDispatchFailureIsSwallowed(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	srv := stubAgent(t, http.StatusInternalServerError, "boom", &calls)
	user, group, _ := setupGroupWithAgent(t, svc, st, "Bob", srv.URL)

	inbound, err := svc.PostMessage(context.Background(), user, group.ID, "hello @Bob", nil)
	if err != nil {
		t.Fatalf("PostMessage must succeed despite agent failure: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one attempted callback, got %d", n)
	}
	msgs := st.MessagesForGroup(group.ID)
	if len(msgs) != 1 || msgs[0].ID != inbound.ID {
		t.Fatalf("failed callback must not leave a reply, got %d messages", len(msgs))
	}
}

func TestSlowAgentTimesOutSilently(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(time.Second)
	}))
	t.Cleanup(srv.Close)
	user, group, _ := setupGroupWithAgent(t, svc, st, "Bob", srv.URL)

	if _, err := svc.PostMessage(context.Background(), user, group.ID, "@Bob ping", nil); err != nil {
		t.Fatalf("PostMessage must succeed despite timeout: %v", err)
	}
	if msgs := st.MessagesForGroup(group.ID); len(msgs) != 1 {
		t.Fatalf("timed-out callback must not leave a reply, got %d messages", len(msgs))
	}
}

func TestAgentRepliesAreNotRescanned(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	// The reply mentions the agent itself; a second-level scan would loop.
	srv := stubAgent(t, http.StatusOK, "ask @Bob again", &calls)
	user, group, _ := setupGroupWithAgent(t, svc, st, "Bob", srv.URL)

	if _, err := svc.PostMessage(context.Background(), user, group.ID, "hi @Bob", nil); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("reply content must not trigger further callbacks, got %d calls", n)
	}
	if msgs := st.MessagesForGroup(group.ID); len(msgs) != 2 {
		t.Fatalf("expected inbound + single reply, got %d", len(msgs))
	}
}

func TestUnmentionedAgentDoesNotFire(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	srv := stubAgent(t, http.StatusOK, "hi", &calls)
	user, group, _ := setupGroupWithAgent(t, svc, st, "Bob", srv.URL)

	if _, err := svc.PostMessage(context.Background(), user, group.ID, "hello everyone", nil); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("unmentioned agent must not be called, got %d calls", n)
	}
}

func TestMentionedAgentOutsideGroupDoesNotFire(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	srv := stubAgent(t, http.StatusOK, "hi", &calls)
	user := registerUser(t, svc, "poster")
	group, _ := svc.CreateGroup(context.Background(), user, "room")
	// Registered but never attached to the group.
	st.AddAgent(&models.Agent{ID: "a1", Name: "Bob", APIURL: srv.URL})

	if _, err := svc.PostMessage(context.Background(), user, group.ID, "hi @Bob", nil); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("unattached agent must not be called, got %d calls", n)
	}
}

func TestIndependentFanOutAcrossAgents(t *testing.T) {
	svc, st := newDispatchService(t)
	var okCalls, failCalls int32
	okSrv := stubAgent(t, http.StatusOK, "from Bob", &okCalls)
	failSrv := stubAgent(t, http.StatusBadGateway, "", &failCalls)
	user, group, bob := setupGroupWithAgent(t, svc, st, "Bob", okSrv.URL)
	eve := &models.Agent{ID: "agent-Eve", Name: "Eve", APIURL: failSrv.URL}
	st.AddAgent(eve)
	st.AttachAgent(group.ID, eve.ID)

	if _, err := svc.PostMessage(context.Background(), user, group.ID, "@Bob and @Eve hello", nil); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if atomic.LoadInt32(&okCalls) != 1 || atomic.LoadInt32(&failCalls) != 1 {
		t.Fatalf("each qualifying agent fires independently: ok=%d fail=%d", okCalls, failCalls)
	}
	msgs := st.MessagesForGroup(group.ID)
	if len(msgs) != 2 {
		t.Fatalf("expected inbound + one reply, got %d", len(msgs))
	}
	if msgs[1].Sender.ID != bob.ID {
		t.Fatalf("surviving reply should come from Bob, got %s", msgs[1].Sender.ID)
	}
}

func TestNonMemberPostHasNoSideEffects(t *testing.T) {
	svc, st := newDispatchService(t)
	var calls int32
	srv := stubAgent(t, http.StatusOK, "hi", &calls)
	_, group, _ := setupGroupWithAgent(t, svc, st, "Bob", srv.URL)
	outsider := registerUser(t, svc, "outsider")

	if _, err := svc.PostMessage(context.Background(), outsider, group.ID, "@Bob hi", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if msgs := st.MessagesForGroup(group.ID); len(msgs) != 0 {
		t.Fatalf("rejected post must not persist a message, got %d", len(msgs))
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("rejected post must not call agents, got %d", n)
	}
}

func TestPostToMissingGroup(t *testing.T) {
	svc, _ := newDispatchService(t)
	user := registerUser(t, svc, "poster")
	if _, err := svc.PostMessage(context.Background(), user, "missing", "hi", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
