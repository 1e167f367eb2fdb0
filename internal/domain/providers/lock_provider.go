package providers

import "context"

// Unlock releases a lock obtained from a LockProvider. Calling it more than
// once is a no-op.
type Unlock func()

// LockProvider guards aggregate roots against conflicting concurrent updates.
// Lock grants an exclusive section; RLock grants a shared one that excludes
// exclusive holders of the same key.
type LockProvider interface {
	Lock(ctx context.Context, key string) (Unlock, error)
	RLock(ctx context.Context, key string) (Unlock, error)
}

// Lock key prefixes for the aggregate roots the facade protects
const (
	LockPrefixUser        = "user:"
	LockPrefixPlace       = "place:"
	LockPrefixAmenity     = "amenity:"
	LockPrefixEmail       = "email:"
	LockPrefixAmenityName = "amenity-name:"
)

// UserLockKey returns the lock key of a user aggregate
func UserLockKey(id string) string { return LockPrefixUser + id }

// PlaceLockKey returns the lock key of a place aggregate
func PlaceLockKey(id string) string { return LockPrefixPlace + id }

// AmenityLockKey returns the lock key of an amenity
func AmenityLockKey(id string) string { return LockPrefixAmenity + id }

// EmailLockKey serializes registrations that claim the same normalized email
func EmailLockKey(email string) string { return LockPrefixEmail + email }

// AmenityNameLockKey serializes amenities that claim the same normalized name
func AmenityNameLockKey(name string) string { return LockPrefixAmenityName + name }
