package common

// AccessTokenHeaderName is the cookie name used to carry the access token
// for browser clients. API clients send it as a bearer token instead.
const AccessTokenHeaderName = "access_token"

// Date layout used for policy due dates on the wire.
const DateLayout = "2006-01-02"
