package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesFile     string
	Port            string
	FetchInterval   int
	ExtractInterval int
	MaxPerSource    int
	ExtractLimit    int
	WorkerCount     int
	SourceDelay     int
	ExtractDelay    int
	HTTPTimeout     int
	APIAccessKey    string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
