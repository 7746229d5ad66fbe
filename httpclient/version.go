package httpclient

// Version is the library version, reported in the default User-Agent.
const Version = "0.3.1"

// DefaultUserAgent identifies the library when the caller doesn't configure
// an identity of their own.
const DefaultUserAgent = "fetch-common/" + Version
