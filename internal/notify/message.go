package notify

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/finance-tracker/backend/internal/store"
)

// Message is the body of a change notification.
type Message struct {
	Operation store.Operation `json:"operation"`
	Path      string          `json:"path"`
	UserID    string          `json:"userId"`
	Month     string          `json:"month,omitempty"` // Only set for records
	Resource  string          `json:"resource"`        // entries, expenses or settings
	Data      map[string]any  `json:"data,omitempty"`
	Time      time.Time       `json:"time"`
}

// MessageFor builds the notification for a change.
//
// Changes to paths outside of users/{userId}/ have an empty UserID and
// the last collection name of the path as resource.
func MessageFor(c store.Change) Message {
	m := Message{
		Operation: c.Operation,
		Path:      c.Path,
		Data:      c.Data,
		Time:      c.Time,
	}

	s := strings.Split(c.Path, "/")
	if len(s) >= 2 && s[0] == "users" {
		m.UserID = s[1]
	}

	switch {
	// users/{userId}/financialData/{month}/{resource}/{id}
	case len(s) == 6 && s[2] == "financialData":
		m.Month = s[3]
		m.Resource = s[4]
	// users/{userId}/userConfig/settings
	case len(s) == 4 && s[2] == "userConfig":
		m.Resource = s[3]
	case len(s) >= 2:
		m.Resource = s[len(s)-2]
	}

	return m
}

// JSON encodes the message.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}
