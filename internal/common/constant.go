package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on live channel streams.
const AccessTokenHeaderName = "access_token"

// DefaultMaxContentSize is the largest file body the server accepts.
const DefaultMaxContentSize int64 = 10 << 20

// DefaultTokenValidity is how long issued access tokens stay valid.
const DefaultTokenValidity = 7 * 24 * time.Hour

// DefaultLinkBaseURL prefixes share link identifiers.
const DefaultLinkBaseURL = "https://codesharelinkapp.com/project"
