package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/m-mizutani/goerr/v2"
)

// Follower is a follow relation from FollowerID to FollowedID.
type Follower struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FollowerID     uuid.UUID `json:"followerId" db:"follower_id"`
	FollowedID     uuid.UUID `json:"followedId" db:"followed_id"`
	WatchNewHesses bool      `json:"watchNewHesses" db:"watch_new_hesses"`
	WatchReplies   bool      `json:"watchReplies" db:"watch_replies"`
	WatchFollows   bool      `json:"watchFollows" db:"watch_follows"`
	WatchLikes     bool      `json:"watchLikes" db:"watch_likes"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// BlockedUser records that BlockerID blocked BlockedID.
type BlockedUser struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BlockerID uuid.UUID `json:"blockerId" db:"blocker_id"`
	BlockedID uuid.UUID `json:"blockedId" db:"blocked_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// WhoCan restricts an interaction to an audience.
type WhoCan string

const (
	WhoCanFollowed  WhoCan = "FOLLOWED"
	WhoCanFollowers WhoCan = "FOLLOWERS"
)

// WhoCanValues lists accepted audiences in declaration order.
var WhoCanValues = []WhoCan{WhoCanFollowed, WhoCanFollowers}

// WhoCanList is stored as a Postgres text array. A nil list means no restriction.
type WhoCanList []WhoCan

// Scan implements sql.Scanner using the pgx text[] codec.
func (l *WhoCanList) Scan(src any) error {
	switch src.(type) {
	case nil:
		*l = nil
		return nil
	case string, []byte:
	default:
		return goerr.New("unsupported who-can list source", goerr.V("type", fmt.Sprintf("%T", src)))
	}

	var items []string
	if err := pgtype.NewMap().SQLScanner(&items).Scan(src); err != nil {
		return goerr.Wrap(err, "scan who-can list")
	}
	list := make(WhoCanList, len(items))
	for i, item := range items {
		list[i] = WhoCan(item)
	}
	*l = list
	return nil
}

// Value implements driver.Valuer. The pgx driver encodes []string as text[].
func (l WhoCanList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	items := make([]string, len(l))
	for i, w := range l {
		items[i] = string(w)
	}
	return items, nil
}

// PrivacyPreferences controls who can interact with a user.
type PrivacyPreferences struct {
	UserID               uuid.UUID  `json:"userId" db:"user_id"`
	IsPrivateProfile     bool       `json:"isPrivateProfile" db:"is_private_profile"`
	WhoCanReply          WhoCanList `json:"whoCanReply" db:"who_can_reply"`
	WhoCanLike           WhoCanList `json:"whoCanLike" db:"who_can_like"`
	WhoCanMentionMe      WhoCanList `json:"whoCanMentionMe" db:"who_can_mention_me"`
	WhoCanWatchNewHesses WhoCanList `json:"whoCanWatchNewHesses" db:"who_can_watch_new_hesses"`
	WhoCanWatchReplies   WhoCanList `json:"whoCanWatchReplies" db:"who_can_watch_replies"`
	WhoCanWatchFollows   WhoCanList `json:"whoCanWatchFollows" db:"who_can_watch_follows"`
	WhoCanWatchLikes     WhoCanList `json:"whoCanWatchLikes" db:"who_can_watch_likes"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}
