package server

type AppConfig struct {
	EnvName         string   `default:"local" split_words:"true"`
	TraceExporter   string   `split_words:"true" default:"nop"`
	ProfileExporter string   `split_words:"true" default:"nop"`
	ProfileTypes    []string `split_words:"true"`
	TraceDebug      bool     `split_words:"true" default:"false"`
	Debug           string   `default:"false"`

	// http
	HTTPPort int `split_words:"true" default:"8080"`
	// PublicAppURL is the externally reachable base URL. Webhook enrollment
	// refuses to run without it: the provider must be able to call back.
	PublicAppURL string `split_words:"true"`

	// db
	DBHost     string `split_words:"true" default:"localhost"`
	DBPort     int    `split_words:"true" default:"3306"`
	DBUser     string `split_words:"true" required:"true"`
	DBPassword string `split_words:"true" required:"true"`
	DBSchema   string `split_words:"true" default:"cyberwatch"`

	// session authority
	AuthBaseURL    string `split_words:"true" required:"true"`
	AuthAPIKey     string `split_words:"true"`
	AuthTimeoutSec int    `split_words:"true" default:"10"`

	// source repository provider
	GithubBaseURL    string `split_words:"true"`
	GithubTimeoutSec int    `split_words:"true" default:"30"`

	// completion service
	GroqAPIKey           string `split_words:"true" required:"true"`
	GroqBaseURL          string `split_words:"true" default:"https://api.groq.com/openai/v1"`
	CompletionTimeoutSec int    `split_words:"true" default:"120"`
	StageModel           string `split_words:"true" default:"llama-3.1-8b-instant"`
	ExplainerModel       string `split_words:"true" default:"llama-3.3-70b-versatile"`
	FallbackModel        string `split_words:"true" default:"llama-3.1-8b-instant"`

	// scan settings
	MaxDetectFiles     int `split_words:"true" default:"3"`
	MaxFileContentSize int `split_words:"true" default:"30000"`

	// notifications
	NotifyTimeoutSec int    `split_words:"true" default:"10"`
	NotifyAvatarURL  string `split_words:"true"`

	// handler
	DataKey string `split_words:"true" required:"true"`
}
