// Package cookie sets and reads HMAC-signed cookies.
//
// Values are stored as base64(value)|base64(signature). Several secrets may
// be configured: the first signs, all of them verify, which allows rotating
// the secret without invalidating cookies in flight. Pop reads a signed
// cookie and deletes it in the same response, which is what one-time values
// such as an OAuth state need.
package cookie
