package auth

// HasPassword reports whether a password is still held.
func (a *PasswordAuthenticator) HasPassword() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.password) > 0
}
