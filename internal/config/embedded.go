package config

// Embedded API keys injected at build time via ldflags. They are only used
// when neither the config file nor the environment sets a key.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/slipstream/mediascraper/internal/config.EmbeddedTMDBKey=xxx' \
//	                   -X 'github.com/slipstream/mediascraper/internal/config.EmbeddedTVDBKey=yyy'"
var (
	EmbeddedTMDBKey string
	EmbeddedTVDBKey string
)
