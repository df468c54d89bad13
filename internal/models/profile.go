package models

// Profile is the public view of a user with their posts and graph counts.
type Profile struct {
	User           `json:"user"`
	Posts          []*Post `json:"posts"`
	FriendsCount   int     `json:"friends_count"`
	FollowersCount int64   `json:"followers_count"`
	FollowingCount int64   `json:"following_count"`
}
