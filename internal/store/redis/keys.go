package redis

const (
	// DefaultKeyPrefix namespaces every key written by the store.
	DefaultKeyPrefix = "linksaver:"

	bookmarkSegment = "bookmark:"
	ownerSegment    = "owner:"
)

// keyspace builds the keys of one store instance.
//
//	<prefix>bookmark:<id>          JSON document
//	<prefix>owner:<owner>:ids      SET of the owner's bookmark ids
//	<prefix>owner:<owner>:urls     HASH url -> id, enforces (owner, url) uniqueness
type keyspace struct {
	prefix string
}

// BookmarkKey returns the key of a bookmark document.
func (k keyspace) BookmarkKey(id string) string {
	return k.prefix + bookmarkSegment + id
}

// OwnerIDsKey returns the key of the set of an owner's bookmark ids.
func (k keyspace) OwnerIDsKey(owner string) string {
	return k.prefix + ownerSegment + owner + ":ids"
}

// OwnerURLsKey returns the key of the url -> id hash of an owner.
func (k keyspace) OwnerURLsKey(owner string) string {
	return k.prefix + ownerSegment + owner + ":urls"
}
