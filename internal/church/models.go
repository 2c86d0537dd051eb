package church

import "time"

// Member is a congregation member.
type Member struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Ministry  string `json:"ministry"`
	PhotoURL  string `json:"photoUrl"`
}

// FullName returns "First Last".
func (m Member) FullName() string { return m.FirstName + " " + m.LastName }

// Event is a scheduled church event.
type Event struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// Gift is one recorded contribution. Amount is in minor currency units.
type Gift struct {
	ID          int       `json:"id"`
	MemberID    int       `json:"memberId"`
	Fund        string    `json:"fund"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// Class is a Sunday school class.
type Class struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Teacher  string `json:"teacher"`
	Room     string `json:"room"`
	Enrolled int    `json:"enrolled"`
}

// Announcement is a congregation communication.
type Announcement struct {
	ID      int       `json:"id"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Posted  time.Time `json:"posted"`
}

// FundTotal is the sum of gifts to one fund.
type FundTotal struct {
	Fund  string `json:"fund"`
	Total int64  `json:"total"`
	Count int    `json:"count"`
}

// MemberPage is one page of the member directory.
type MemberPage struct {
	Members []Member `json:"members"`
	Page    int      `json:"page"`
	HasMore bool     `json:"hasMore"`
	Total   int      `json:"total"`
}
