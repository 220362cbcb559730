package redis

import "strconv"

const (
	// KeyPrefixBookmark is the prefix for bookmark record keys
	KeyPrefixBookmark = "bookmarks:item:"
	// KeyIndex is the sorted set of all bookmark IDs, scored by ID
	KeyIndex = "bookmarks:index"
	// KeySequence is the counter IDs are drawn from
	KeySequence = "bookmarks:seq"
)

// BookmarkKey returns the Redis key for a bookmark by ID
func BookmarkKey(id int64) string {
	return KeyPrefixBookmark + strconv.FormatInt(id, 10)
}
