package version

// Version is the app-global version string, which should be substituted with a
// real value during build
var Version = "UNKNOWN"

// AppName is a name of a service. Used as a default service
// when resolving config params
var AppName = "transactions-entry"

// GitHash injected build time
var GitHash = "TBD"
