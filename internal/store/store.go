// Package store holds every domain record in process memory. Nothing is
// durable: restarting the process drops all state.
package store

import (
	"errors"
	"sort"
	"sync"

	"agentschat/internal/models"
)

// ErrUsernameTaken is returned by AddUser when the username is in use.
var ErrUsernameTaken = errors.New("username already exists")

// Store is a mapping-based repository for each entity kind, keyed by
// identifier. One Store is built in main and shared by every service; all
// access goes through the mutex, and read-modify-write mutations (set
// membership, token issue) happen entirely under the write lock.
//
// Users and groups carry mutable sets, so inserts copy the record and reads
// return snapshots: no live map ever escapes the lock. Predicates over
// current sets (IsMember) run inside the critical section. Agents and
// messages are immutable after insert and are shared by pointer.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	groups   map[string]*models.Group
	agents   map[string]*models.Agent
	messages map[string]*models.Message
	tokens   map[string]string // token -> user id
}

func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		groups:   make(map[string]*models.Group),
		agents:   make(map[string]*models.Agent),
		messages: make(map[string]*models.Message),
		tokens:   make(map[string]string),
	}
}

// AddUser inserts the user, enforcing username uniqueness.
func (s *Store) AddUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	s.users[u.ID] = u.Clone()
	return nil
}

func (s *Store) UserByID(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

func (s *Store) UserByUsername(username string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u.Clone(), true
		}
	}
	return nil, false
}

// DeleteUser removes the user record only. Messages, group memberships, and
// friend entries referencing the id are left in place.
func (s *Store) DeleteUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

func (s *Store) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// AddFriend records friendID in the user's friend set. The friend's own
// existence is the caller's concern; a later deletion of either side leaves
// the entry dangling.
func (s *Store) AddFriend(userID, friendID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.Friends.Add(friendID)
	return true
}

func (s *Store) AddAgent(a *models.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID] = a
}

func (s *Store) AgentByID(id string) (*models.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	return a, ok
}

// DeleteAgent is an unconditional map removal; groups referencing the agent
// keep the dangling id.
func (s *Store) DeleteAgent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return false
	}
	delete(s.agents, id)
	return true
}

func (s *Store) Agents() []*models.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agents := make([]*models.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents
}

// AddGroup inserts the group and records it in the owner's group set.
func (s *Store) AddGroup(g *models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g.Clone()
	if owner, ok := s.users[g.OwnerID]; ok {
		owner.Groups.Add(g.ID)
	}
}

func (s *Store) GroupByID(id string) (*models.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// IsMember reports whether the group exists and whether the user is a
// current member, evaluated inside the critical section so the answer is
// consistent with concurrent joins.
func (s *Store) IsMember(groupID, userID string) (exists, member bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return false, false
	}
	return true, g.Members.Has(userID)
}

// AddGroupMember adds the user to the group and the group to the user's set
// in one critical section, so concurrent joins cannot corrupt either side.
func (s *Store) AddGroupMember(groupID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return false
	}
	g.Members.Add(userID)
	if u, ok := s.users[userID]; ok {
		u.Groups.Add(groupID)
	}
	return true
}

// AttachAgent associates an agent id with the group.
func (s *Store) AttachAgent(groupID, agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return false
	}
	g.Agents.Add(agentID)
	return true
}

// GroupsForUser resolves the user's group set, skipping ids whose group no
// longer exists.
func (s *Store) GroupsForUser(userID string) []*models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	groups := make([]*models.Group, 0, len(u.Groups))
	for _, id := range u.Groups.IDs() {
		if g, ok := s.groups[id]; ok {
			groups = append(groups, g.Clone())
		}
	}
	return groups
}

// AgentsForGroup resolves the group's agent set, skipping dangling ids left
// behind by agent deletion.
func (s *Store) AgentsForGroup(groupID string) []*models.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil
	}
	agents := make([]*models.Agent, 0, len(g.Agents))
	for _, id := range g.Agents.IDs() {
		if a, ok := s.agents[id]; ok {
			agents = append(agents, a)
		}
	}
	return agents
}

func (s *Store) AddMessage(m *models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ID] = m
}

// MessagesForGroup returns the group's messages ordered by creation time.
func (s *Store) MessagesForGroup(groupID string) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]*models.Message, 0)
	for _, m := range s.messages {
		if m.GroupID == groupID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

// SaveToken records a live session token. Tokens never expire and a user may
// hold any number of them.
func (s *Store) SaveToken(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

func (s *Store) UserIDForToken(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	return id, ok
}
