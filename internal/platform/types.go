package platform

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TokenGrant is a successful token response from the auth endpoint, either
// from an authorization code exchange or from a refresh.
type TokenGrant struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	AccessExpiresInSec int64  `json:"expires_in"`
	RefreshExpiresSec  int64  `json:"refresh_expires_in"`
	OpenID             string `json:"open_id"`
	Scope              string `json:"scope"`
}

// tokenResponse is the raw wire shape of the auth endpoint. Error fields sit
// flat next to the grant fields.
type tokenResponse struct {
	TokenGrant
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RemoteVideo is one catalog item as the platform reports it. Numeric fields
// may be absent, the zero value then stands in. CreateTime is epoch seconds.
type RemoteVideo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"video_description"`
	CoverImageURL string `json:"cover_image_url"`
	ShareURL      string `json:"share_url"`
	DurationSec   int64  `json:"duration"`
	ViewCount     int64  `json:"view_count"`
	LikeCount     int64  `json:"like_count"`
	CommentCount  int64  `json:"comment_count"`
	ShareCount    int64  `json:"share_count"`
	CreateTime    int64  `json:"create_time"`
}

// listRequest is the body of the listing endpoint. Cursor 0 means the first
// page.
type listRequest struct {
	MaxCount int   `json:"max_count"`
	Cursor   int64 `json:"cursor,omitempty"`
}

// listResponse is the envelope of the listing endpoint. The error block is
// always present; Code "ok" means success. The cursor is kept raw because
// the remote has been seen sending it both as a number and as a string.
type listResponse struct {
	Data struct {
		Videos  []RemoteVideo   `json:"videos"`
		HasMore bool            `json:"has_more"`
		Cursor  json.RawMessage `json:"cursor"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		LogID   string `json:"log_id"`
	} `json:"error"`
}

// VideoPage is one decoded page of the catalog listing. Cursor is kept in
// its raw wire form.
type VideoPage struct {
	Videos  []RemoteVideo
	HasMore bool
	Cursor  json.RawMessage
}

// NextCursor returns the pagination cursor for the following page. ok is
// false when the remote sent no cursor or a non-numeric one, which callers
// treat as end of stream.
func (p *VideoPage) NextCursor() (int64, bool) {
	raw := strings.Trim(strings.TrimSpace(string(p.Cursor)), `"`)
	if raw == "" || raw == "null" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
