package version

var (
	AppName        = "relaycore"
	AppDescription = "Command-processing core for a session proxy: registry, grammar-tree dispatcher, suggestions, permissions."
	AppVersion     = "0.1.0"
)
