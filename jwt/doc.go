// Package jwt issues and verifies the signed, self-contained tokens used
// by authkit. Tokens are compact three-segment HS256 JWTs carrying the
// subject, tenant, token type, and an effective role/permission snapshot
// frozen at issuance.
//
// The package has no storage or network dependencies; everything is a
// deterministic function of the signing secret, the claims, and the clock.
package jwt
