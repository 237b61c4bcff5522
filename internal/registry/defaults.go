package registry

const (
	DefaultOutputRoot        = "data"
	DefaultAudioQuality      = "192K"
	DefaultFragments         = 4
	DefaultDownloadLimitMBps = 0
)

// DefaultLanguages is the transcript language priority used when neither the
// playlist nor the global settings name one.
var DefaultLanguages = []string{"en"}
