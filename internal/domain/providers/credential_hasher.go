package providers

// CredentialHasher turns plaintext passwords into opaque hashes. The core never
// stores or compares plaintext.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
