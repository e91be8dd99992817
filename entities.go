package camguard

import (
	"encoding/json"
	"time"
)

// Company is a tenant. Every sequence, server and camera hangs off exactly
// one company.
type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyInput carries create/update fields for a company. Nil means the
// field was not submitted.
type CompanyInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
}

// User is an API principal. Superusers see every company; everyone else is
// clamped to their own CompanyID.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	Token       string    `json:"-"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CompanyID   *int64    `json:"company_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserInput carries create fields for a user.
type UserInput struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	CompanyID   *int64 `json:"company_id,omitempty"`
}

// CamServer is an edge deployment of cameras. Bridges authenticate as a
// camera server through its AccessToken. Meta carries per-server settings,
// among them the registered telegram chats.
type CamServer struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`
	Connection  string          `json:"connection,omitempty"`
	AccessToken string          `json:"access_token,omitempty"`
	IsActive    bool            `json:"is_active"`
	IsLive      bool            `json:"is_live"`
	CompanyID   *int64          `json:"company_id,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CamServerInput carries create/update fields for a camera server.
type CamServerInput struct {
	Name        *string         `json:"name,omitempty"`
	Location    *string         `json:"location,omitempty"`
	Description *string         `json:"description,omitempty"`
	Connection  *string         `json:"connection,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	IsLive      *bool           `json:"is_live,omitempty"`
	CompanyID   *int64          `json:"company_id,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
}

// TelegramChat is one chat registered on a camera server's meta under the
// "telegram" key.
type TelegramChat struct {
	ChatID int64  `json:"chat_id"`
	Title  string `json:"title,omitempty"`
}

type serverMeta struct {
	Telegram []TelegramChat `json:"telegram"`
}

// TelegramChats decodes the chats registered on the server's meta.
func (s *CamServer) TelegramChats() []TelegramChat {
	if len(s.Meta) == 0 {
		return nil
	}
	var m serverMeta
	if err := json.Unmarshal(s.Meta, &m); err != nil {
		return nil
	}
	return m.Telegram
}

// WithTelegramChat returns meta with the chat appended. The second return is
// false when the chat was already registered and meta is unchanged.
func (s *CamServer) WithTelegramChat(chat TelegramChat) (json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if len(s.Meta) > 0 {
		_ = json.Unmarshal(s.Meta, &m)
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	var chats []TelegramChat
	_ = json.Unmarshal(m["telegram"], &chats)
	for _, c := range chats {
		if c.ChatID == chat.ChatID {
			return s.Meta, false
		}
	}
	chats = append(chats, chat)
	raw, _ := json.Marshal(chats)
	m["telegram"] = raw
	meta, _ := json.Marshal(m)
	return meta, true
}

// WithoutTelegramChat returns meta with the chat removed. The second return
// is false when the chat was not registered.
func (s *CamServer) WithoutTelegramChat(chatID int64) (json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if len(s.Meta) > 0 {
		_ = json.Unmarshal(s.Meta, &m)
	}
	var chats []TelegramChat
	_ = json.Unmarshal(m["telegram"], &chats)
	kept := chats[:0]
	for _, c := range chats {
		if c.ChatID != chatID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(chats) {
		return s.Meta, false
	}
	raw, _ := json.Marshal(kept)
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	m["telegram"] = raw
	meta, _ := json.Marshal(m)
	return meta, true
}

// Camera is a physical camera attached to a camera server. IsLive flips with
// the bridge's heartbeat and bumps updated_at so live-update streams notice.
type Camera struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Connection  string    `json:"connection,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsLive      bool      `json:"is_live"`
	CamServerID int64     `json:"cam_server_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CameraInput carries create/update fields for a camera.
type CameraInput struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Connection  *string `json:"connection,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsLive      *bool   `json:"is_live,omitempty"`
	CamServerID *int64  `json:"cam_server_id,omitempty"`
}

// AIServer runs detection models. VertexTypes lists the detection-type
// indexes it can serve.
type AIServer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Connection  string    `json:"connection,omitempty"`
	VertexTypes []int64   `json:"vertex_types,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsLive      bool      `json:"is_live"`
	CompanyID   *int64    `json:"company_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AIServerInput carries create/update fields for an AI server.
type AIServerInput struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Connection  *string `json:"connection,omitempty"`
	VertexTypes []int64 `json:"vertex_types,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsLive      *bool   `json:"is_live,omitempty"`
	CompanyID   *int64  `json:"company_id,omitempty"`
}

// AIType is one entry of the detection-type catalogue. Index is the value
// vertexes and incidents carry in their type lists.
type AIType struct {
	ID          int64     `json:"id"`
	Index       int64     `json:"index"`
	Severity    int64     `json:"severity"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AITypeInput carries create/update fields for a detection type.
type AITypeInput struct {
	Index       *int64  `json:"index,omitempty"`
	Severity    *int64  `json:"severity,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Mapping attaches a sequence to a camera. Incidents reference the mapping
// they were detected through.
type Mapping struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	SequenceID int64           `json:"sequence_id"`
	CameraID   int64           `json:"camera_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MappingInput carries create/update fields for a mapping.
type MappingInput struct {
	Name       *string         `json:"name,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	SequenceID *int64          `json:"sequence_id,omitempty"`
	CameraID   *int64          `json:"camera_id,omitempty"`
}

// Incident is a detection event reported by a bridge. CameraID and Location
// are denormalized from the mapping's camera at create time.
type Incident struct {
	ID           int64           `json:"id"`
	UUID         string          `json:"uuid"`
	Type         []int64         `json:"type"`
	AIMappingID  int64           `json:"ai_mapping_id"`
	CameraID     int64           `json:"camera_id"`
	Location     string          `json:"location,omitempty"`
	Acknowledged *time.Time      `json:"acknowledged,omitempty"`
	Inaccurate   bool            `json:"inaccurate"`
	Meta         json.RawMessage `json:"meta,omitempty"`
	Extra        json.RawMessage `json:"extra,omitempty"`
	Count        int64           `json:"count"`
	Frame        string          `json:"frame,omitempty"`
	Video        string          `json:"video,omitempty"`
	People       int64           `json:"people"`
	Objects      int64           `json:"objects"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IncidentInput is a bridge's incident report.
type IncidentInput struct {
	Type        []int64         `json:"type"`
	AIMappingID int64           `json:"ai_mapping_id"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	Extra       json.RawMessage `json:"extra,omitempty"`
	Count       int64           `json:"count,omitempty"`
	Frame       string          `json:"frame,omitempty"`
	Video       string          `json:"video,omitempty"`
	People      int64           `json:"people,omitempty"`
	Objects     int64           `json:"objects,omitempty"`
}
