package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWSDESK_CONFIG"
	rootEnv           = "NEWSDESK_ROOT"
	logLevelEnv       = "LOG_LEVEL"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	llmModelEnv       = "LLM_MODEL"
	cohereAPIKeyEnv   = "COHERE_API_KEY"
	redisAddrEnv      = "REDIS_ADDR"
	s3BucketEnv       = "S3_BUCKET"
	gitSSHCommandEnv  = "GIT_SSH_COMMAND"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Root          string             `yaml:"root"`
	Logging       LoggingConfig      `yaml:"logging"`
	Topics        []TopicConfig      `yaml:"topics"`
	Blog          BlogConfig         `yaml:"blog"`
	Generator     GeneratorConfig    `yaml:"generator"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Sync          SyncConfig         `yaml:"sync"`
	Lock          LockConfig         `yaml:"lock"`
	Journal       JournalConfig      `yaml:"journal"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TopicConfig describes one news stream: where it reads from, how it scores
// and where its index and archive live.
type TopicConfig struct {
	Name       string   `yaml:"name"`
	Table      string   `yaml:"table"`
	Prefilter  []string `yaml:"prefilter"`
	Feeds      []string `yaml:"feeds"`
	IndexPath  string   `yaml:"indexPath"`
	ArchiveDir string   `yaml:"archiveDir"`
	IndexCap   int      `yaml:"indexCap"`
	Blog       bool     `yaml:"blog"`
}

// BlogConfig locates the drafts and published areas.
type BlogConfig struct {
	DraftsManifest    string `yaml:"draftsManifest"`
	PublishedManifest string `yaml:"publishedManifest"`
	DraftsDir         string `yaml:"draftsDir"`
	PostsDir          string `yaml:"postsDir"`
	Author            string `yaml:"author"`
	Threshold         int    `yaml:"threshold"`
}

// GeneratorConfig defines how to contact the text generation backend.
type GeneratorConfig struct {
	Provider     string        `yaml:"provider"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ExtractorConfig tunes outbound page and feed fetches.
type ExtractorConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
	// Interval is the minimum spacing between article fetches.
	Interval time.Duration `yaml:"interval"`
	Burst    int           `yaml:"burst"`
}

// SyncConfig selects where changed files are persisted.
type SyncConfig struct {
	Backends          []string `yaml:"backends"`
	SSHCommand        string   `yaml:"sshCommand"`
	PullBeforePublish bool     `yaml:"pullBeforePublish"`
	NoPush            bool     `yaml:"noPush"`
	S3                S3Config `yaml:"s3"`
}

// S3Config addresses the mirror bucket.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// LockConfig selects the run lock backend: "file" or "redis".
type LockConfig struct {
	Backend   string        `yaml:"backend"`
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redisAddr"`
	Key       string        `yaml:"key"`
	TTL       time.Duration `yaml:"ttl"`
}

// JournalConfig points at the sqlite run journal. Empty disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig points at the node_exporter textfile. Empty disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// ScheduleConfig holds the timezone of scheduled publications and the cron
// expressions used by serve.
type ScheduleConfig struct {
	Timezone string `yaml:"timezone"`
	Scrape   string `yaml:"scrape"`
	Tick     string `yaml:"tick"`
	location *time.Location
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.Local
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIBase  string `yaml:"apiBase"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads a .env file and the YAML configuration (if present) and applies
// environment overrides. path wins over NEWSDESK_CONFIG.
func Load(path string) Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Topics) == 0 {
		cfg.Topics = defaultConfig().Topics
	}

	return cfg
}

// Resolve anchors a relative path at Root.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Topic returns the topic named name.
func (c Config) Topic(name string) (TopicConfig, bool) {
	for _, t := range c.Topics {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return TopicConfig{}, false
}

// APIKeyFor returns the key of the configured provider, falling back to the
// provider specific environment variable.
func (g GeneratorConfig) APIKeyFor() string {
	if g.APIKey != "" {
		return g.APIKey
	}
	if strings.EqualFold(g.Provider, "cohere") {
		return os.Getenv(cohereAPIKeyEnv)
	}
	return os.Getenv(openAIAPIKeyEnv)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(rootEnv); v != "" {
		c.Root = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.Generator.Model = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Lock.RedisAddr = v
	}

	if v := os.Getenv(s3BucketEnv); v != "" {
		c.Sync.S3.Bucket = v
	}

	if v := os.Getenv(gitSSHCommandEnv); v != "" {
		c.Sync.SSHCommand = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		c.Schedule.location = time.Local
		return
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to local time", tz)
		loc = time.Local
	}
	c.Schedule.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Root != "" {
		base.Root = override.Root
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Topics) > 0 {
		base.Topics = override.Topics
	}

	if override.Blog.DraftsManifest != "" {
		base.Blog.DraftsManifest = override.Blog.DraftsManifest
	}
	if override.Blog.PublishedManifest != "" {
		base.Blog.PublishedManifest = override.Blog.PublishedManifest
	}
	if override.Blog.DraftsDir != "" {
		base.Blog.DraftsDir = override.Blog.DraftsDir
	}
	if override.Blog.PostsDir != "" {
		base.Blog.PostsDir = override.Blog.PostsDir
	}
	if override.Blog.Author != "" {
		base.Blog.Author = override.Blog.Author
	}
	if override.Blog.Threshold > 0 {
		base.Blog.Threshold = override.Blog.Threshold
	}

	if override.Generator.Provider != "" {
		base.Generator.Provider = override.Generator.Provider
	}
	if override.Generator.Endpoint != "" {
		base.Generator.Endpoint = override.Generator.Endpoint
	}
	if override.Generator.Model != "" {
		base.Generator.Model = override.Generator.Model
	}
	if override.Generator.APIKey != "" {
		base.Generator.APIKey = override.Generator.APIKey
	}
	if override.Generator.SystemPrompt != "" {
		base.Generator.SystemPrompt = override.Generator.SystemPrompt
	}
	if override.Generator.Timeout > 0 {
		base.Generator.Timeout = override.Generator.Timeout
	}

	if override.Extractor.Timeout > 0 {
		base.Extractor.Timeout = override.Extractor.Timeout
	}
	if override.Extractor.UserAgent != "" {
		base.Extractor.UserAgent = override.Extractor.UserAgent
	}
	if override.Extractor.Interval > 0 {
		base.Extractor.Interval = override.Extractor.Interval
	}
	if override.Extractor.Burst > 0 {
		base.Extractor.Burst = override.Extractor.Burst
	}

	if override.Sync.Backends != nil {
		base.Sync.Backends = override.Sync.Backends
	}
	if override.Sync.SSHCommand != "" {
		base.Sync.SSHCommand = override.Sync.SSHCommand
	}
	if override.Sync.PullBeforePublish {
		base.Sync.PullBeforePublish = true
	}
	if override.Sync.NoPush {
		base.Sync.NoPush = true
	}
	if override.Sync.S3.Bucket != "" {
		base.Sync.S3 = override.Sync.S3
	}

	if override.Lock.Backend != "" {
		base.Lock.Backend = override.Lock.Backend
	}
	if override.Lock.Path != "" {
		base.Lock.Path = override.Lock.Path
	}
	if override.Lock.RedisAddr != "" {
		base.Lock.RedisAddr = override.Lock.RedisAddr
	}
	if override.Lock.Key != "" {
		base.Lock.Key = override.Lock.Key
	}
	if override.Lock.TTL > 0 {
		base.Lock.TTL = override.Lock.TTL
	}

	if override.Journal.Path != "" {
		base.Journal.Path = override.Journal.Path
	}
	if override.Metrics.Textfile != "" {
		base.Metrics.Textfile = override.Metrics.Textfile
	}

	if override.Schedule.Timezone != "" {
		base.Schedule.Timezone = override.Schedule.Timezone
	}
	if override.Schedule.Scrape != "" {
		base.Schedule.Scrape = override.Schedule.Scrape
	}
	if override.Schedule.Tick != "" {
		base.Schedule.Tick = override.Schedule.Tick
	}

	if override.Notifications.Telegram.APIBase != "" {
		base.Notifications.Telegram.APIBase = override.Notifications.Telegram.APIBase
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

var sharedFeeds = []string{
	"https://www.offshore-energy.biz/feed/",
	"https://www.hellenicshippingnews.com/feed/",
	"https://www.rivieramm.com/rss/news-content-hub",
	"https://shipandbunker.com/news/feed",
	"https://splash247.com/feed/",
	"https://prod-qt-images.s3.amazonaws.com/production/bairdmaritime/feed.xml",
}

func withFeeds(extra ...string) []string {
	return append(append([]string{}, sharedFeeds...), extra...)
}

func defaultConfig() Config {
	return Config{
		Root:    ".",
		Logging: LoggingConfig{Level: "info"},
		Topics: []TopicConfig{
			{
				Name:       "emissions",
				Table:      "emissions",
				Feeds:      withFeeds("https://www.google.nl/alerts/feeds/11361701321732954749/806710994395188837"),
				IndexPath:  "json/news.json",
				ArchiveDir: "news_emissions",
				IndexCap:   50,
				Blog:       true,
			},
			{
				Name:       "hydrogen",
				Table:      "hydrogen",
				Feeds:      withFeeds("https://www.google.nl/alerts/feeds/11361701321732954749/13243579899754437557"),
				IndexPath:  "json/news_hydrogen.json",
				ArchiveDir: "news_hydrogen",
				IndexCap:   50,
			},
		},
		Blog: BlogConfig{
			DraftsManifest:    "json/blog_drafts.json",
			PublishedManifest: "json/blog.json",
			DraftsDir:         "blog/posts/drafts",
			PostsDir:          "blog/posts",
			Author:            "DirtiestShips",
			Threshold:         70,
		},
		Generator: GeneratorConfig{
			Provider: "openai",
			Timeout:  60 * time.Second,
		},
		Extractor: ExtractorConfig{
			Timeout:  15 * time.Second,
			Interval: time.Second,
			Burst:    1,
		},
		Sync: SyncConfig{
			Backends:          []string{"git"},
			PullBeforePublish: true,
		},
		Lock: LockConfig{
			Backend: "file",
			Path:    ".newsdesk/run.lock",
			Key:     "newsdesk:run-lock",
			TTL:     30 * time.Minute,
		},
		Journal:  JournalConfig{Path: ".newsdesk/journal.db"},
		Schedule: ScheduleConfig{Scrape: "0 6 * * *", Tick: "*/15 * * * *", location: time.Local},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
		},
	}
}
