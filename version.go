package allscreenshots

// Version is the SDK version reported in the default User-Agent.
const Version = "1.0.0"

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "allscreenshots-sdk-go/" + Version
