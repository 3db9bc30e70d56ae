package content

import (
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Item is one typed plugin row placed in a page region. IDs are version 7
// UUIDs so primary key order follows insertion order.
type Item struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID      `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Region    string         `bun:"region,notnull" json:"region"`
	Ordering  int            `bun:"ordering,notnull" json:"ordering"`
	Type      string         `bun:"plugin_type,notnull" json:"type"`
	Section   string         `bun:"section,notnull,default:''" json:"section,omitempty"`
	Payload   map[string]any `bun:"payload,type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (i *Item) PluginType() string { return i.Type }
func (i *Item) ItemID() string     { return i.ID.String() }
func (i *Item) RegionKey() string  { return i.Region }
func (i *Item) Order() int         { return i.Ordering }
func (i *Item) SectionKey() string { return i.Section }

// PayloadString returns the payload value under key as a string.
func (i *Item) PayloadString(key string) string {
	switch v := i.Payload[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// PayloadInt returns the payload value under key as an int, or 0.
func (i *Item) PayloadInt(key string) int {
	switch v := i.Payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Clone returns a copy with its own payload map.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cloned := *i
	cloned.Payload = maps.Clone(i.Payload)
	return &cloned
}
