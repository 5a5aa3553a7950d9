package command

import (
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/patch"
)

var followerTable = Table{
	{Key: "watchFollows", Kind: KindBool, Optional: true},
	{Key: "watchLikes", Kind: KindBool, Optional: true},
	{Key: "watchNewHesses", Kind: KindBool, Optional: true},
	{Key: "watchReplies", Kind: KindBool, Optional: true},
}

// FollowerSettings are the notification switches of a follow relation.
type FollowerSettings struct {
	WatchFollows   *bool
	WatchLikes     *bool
	WatchNewHesses *bool
	WatchReplies   *bool
}

// InsertFollower starts following a user.
type InsertFollower struct {
	FollowerSettings
}

// UpdateFollower changes the settings of an existing follow.
type UpdateFollower struct {
	FollowerSettings
}

func newFollowerSettings(body map[string]any) (FollowerSettings, error) {
	v, err := followerTable.Run(body)
	if err != nil {
		return FollowerSettings{}, err
	}
	return FollowerSettings{
		WatchFollows:   v.Bool("watchFollows").Ptr(),
		WatchLikes:     v.Bool("watchLikes").Ptr(),
		WatchNewHesses: v.Bool("watchNewHesses").Ptr(),
		WatchReplies:   v.Bool("watchReplies").Ptr(),
	}, nil
}

func NewInsertFollower(body map[string]any) (InsertFollower, error) {
	s, err := newFollowerSettings(body)
	return InsertFollower{FollowerSettings: s}, err
}

func NewUpdateFollower(body map[string]any) (UpdateFollower, error) {
	s, err := newFollowerSettings(body)
	return UpdateFollower{FollowerSettings: s}, err
}

var whoCanKeys = []string{
	"whoCanReply",
	"whoCanLike",
	"whoCanMentionMe",
	"whoCanWatchNewHesses",
	"whoCanWatchReplies",
	"whoCanWatchFollows",
	"whoCanWatchLikes",
}

var privacyPreferencesTable = func() Table {
	t := Table{{Key: "isPrivateProfile", Kind: KindBool, Optional: true}}
	for _, key := range whoCanKeys {
		t = append(t, Rule{
			Key:      key,
			Kind:     KindWhoCanArray,
			Optional: true,
			Nullable: true,
		})
	}
	return t
}()

// UpdatePrivacyPreferences changes who may interact with the caller.
// A null audience list removes the restriction.
type UpdatePrivacyPreferences struct {
	IsPrivateProfile     *bool
	WhoCanReply          patch.Field[[]domain.WhoCan]
	WhoCanLike           patch.Field[[]domain.WhoCan]
	WhoCanMentionMe      patch.Field[[]domain.WhoCan]
	WhoCanWatchNewHesses patch.Field[[]domain.WhoCan]
	WhoCanWatchReplies   patch.Field[[]domain.WhoCan]
	WhoCanWatchFollows   patch.Field[[]domain.WhoCan]
	WhoCanWatchLikes     patch.Field[[]domain.WhoCan]
}

func NewUpdatePrivacyPreferences(body map[string]any) (UpdatePrivacyPreferences, error) {
	v, err := privacyPreferencesTable.Run(body)
	if err != nil {
		return UpdatePrivacyPreferences{}, err
	}
	return UpdatePrivacyPreferences{
		IsPrivateProfile:     v.Bool("isPrivateProfile").Ptr(),
		WhoCanReply:          v.WhoCan("whoCanReply"),
		WhoCanLike:           v.WhoCan("whoCanLike"),
		WhoCanMentionMe:      v.WhoCan("whoCanMentionMe"),
		WhoCanWatchNewHesses: v.WhoCan("whoCanWatchNewHesses"),
		WhoCanWatchReplies:   v.WhoCan("whoCanWatchReplies"),
		WhoCanWatchFollows:   v.WhoCan("whoCanWatchFollows"),
		WhoCanWatchLikes:     v.WhoCan("whoCanWatchLikes"),
	}, nil
}
