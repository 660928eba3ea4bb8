// Package password implements argon2id credential hashing in PHC string
// format. The engine verifies passwords through this package and never
// inspects stored credential material directly.
package password
