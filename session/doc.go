// Package session holds the value types shared by the engine, the token
// store, the auth client, and the flow orchestrators: stored credentials,
// resolved profiles, and the terminal bootstrap outcome.
//
// Types here are plain data. Protocol behavior lives in internal/flows;
// persistence in tokenstore; network I/O in authclient.
package session
