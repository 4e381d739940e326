// Package jwt implements the optional local token preflight. It inspects an
// access token before the network verify call so a provably expired token can
// skip straight to the refresh branch.
//
// Preflight never substitutes for endpoint verification. Without a verify
// key it only decodes the claims; the signature is checked exclusively when
// the deployment ships the endpoint's public key. Either way the endpoint
// remains the authority on token validity.
package jwt
