package models

// Group is a chat room. The creator is the owner and the sole initial
// member. Only the owner may attach agents.
type Group struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
	Members IDSet  `json:"members"`
	Agents  IDSet  `json:"agents"`
}

// Clone returns a copy whose set fields are independent of the original.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = g.Members.Clone()
	c.Agents = g.Agents.Clone()
	return &c
}
