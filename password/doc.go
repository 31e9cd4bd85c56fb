// Package password is the one-way credential hashing seam: a Hasher
// interface the login flow depends on, with an argon2id implementation in
// PHC string format as the default.
package password
