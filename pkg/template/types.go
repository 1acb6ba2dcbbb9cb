package template

import (
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Template is a stored, channel-specific content template. Templates are
// looked up by (slug, channel, language, store) with store-specific entries
// overriding global ones (empty StoreID = global).
type Template struct {
	Slug      string               `json:"slug"`
	Channel   notification.Channel `json:"channel"`
	Language  string               `json:"language"`
	Subject   string               `json:"subject,omitempty"`
	Title     string               `json:"title,omitempty"`
	Body      string               `json:"body"`
	HTML      string               `json:"html,omitempty"`
	Variables []string             `json:"variables,omitempty"`
	StoreID   string               `json:"store_id,omitempty"`
	IsActive  bool                 `json:"is_active"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Key addresses one template variant.
type Key struct {
	Slug     string
	Channel  notification.Channel
	Language string
	StoreID  string
}

func (k Key) cacheKey() string {
	return k.Slug + "|" + string(k.Channel) + "|" + k.Language + "|" + k.StoreID
}
