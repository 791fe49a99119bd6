package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	MinComplimentTTL = 60 * time.Second
	MaxComplimentTTL = time.Hour

	InjectionInterval = "interval"
	InjectionOnce     = "once"

	defaultAddr = ":8787"
)

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	// redis | memory | none
	Driver    string `mapstructure:"driver"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

type OpenAIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	RealtimeURL string `mapstructure:"realtime_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	URLs  []string `mapstructure:"urls"`
	Model string   `mapstructure:"model"`
}

// WhisperConfig points at a self-hosted whisper ASR webservice.
type WhisperConfig struct {
	URL      string        `mapstructure:"url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PiperConfig points at a self-hosted piper TTS server.
type PiperConfig struct {
	URL     string        `mapstructure:"url"`
	Voice   string        `mapstructure:"voice"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProvidersConfig struct {
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Ollama  OllamaConfig  `mapstructure:"ollama"`
	Whisper WhisperConfig `mapstructure:"whisper"`
	Piper   PiperConfig   `mapstructure:"piper"`
}

type VisionConfig struct {
	// openai | gemini
	Provider              string        `mapstructure:"provider"`
	Model                 string        `mapstructure:"model"`
	MaxTokens             int           `mapstructure:"max_tokens"`
	ComplimentTTL         time.Duration `mapstructure:"compliment_ttl"`
	MaxImageBytes         int64         `mapstructure:"max_image_bytes"`
	RespondWithCompliment bool          `mapstructure:"respond_with_compliment"`
}

type ChatConfig struct {
	// openai | ollama
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type SpeechConfig struct {
	STTProvider   string `mapstructure:"stt_provider"` // openai | whisper
	TTSProvider   string `mapstructure:"tts_provider"` // openai | piper
	STTModel      string `mapstructure:"stt_model"`
	TTSModel      string `mapstructure:"tts_model"`
	TTSVoice      string `mapstructure:"tts_voice"`
	PCMSampleRate int    `mapstructure:"pcm_sample_rate"`
	MaxAudioBytes int64  `mapstructure:"max_audio_bytes"`
}

type BridgeConfig struct {
	Voice              string        `mapstructure:"voice"`
	TranscriptionModel string        `mapstructure:"transcription_model"`
	InjectionMode      string        `mapstructure:"injection_mode"`
	InjectionInterval  time.Duration `mapstructure:"injection_interval"`
	HandshakeTimeout   time.Duration `mapstructure:"handshake_timeout"`
	KeepaliveInterval  time.Duration `mapstructure:"keepalive_interval"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type Settings struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Env       string          `mapstructure:"env"`
	Debug     bool            `mapstructure:"debug"`

	v *viper.Viper
}

// BindFlags registers the command line flags Load understands.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("env", "", "environment name, selects config_<env>.yaml")
	fs.String("config-dir", ".", "directory holding config_<env>.yaml")
	fs.String("addr", "", "listen address, overrides server.addr")
	fs.Bool("debug", false, "development logging and debug routes")
}

// Load reads settings from (in increasing priority) defaults, an optional
// config_<env>.yaml, environment variables and flags. fs may be nil.
func Load(fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GREETER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvAliases(v)

	configDir := "."
	if fs != nil {
		if f := fs.Lookup("env"); f != nil {
			_ = v.BindPFlag("env", f)
		}
		if f := fs.Lookup("addr"); f != nil {
			_ = v.BindPFlag("server.addr", f)
		}
		if f := fs.Lookup("debug"); f != nil {
			_ = v.BindPFlag("debug", f)
		}
		if dir, err := fs.GetString("config-dir"); err == nil && dir != "" {
			configDir = dir
		}
	}

	v.SetConfigName("config_" + genEnv(v))
	v.AddConfigPath(configDir)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	settings.Env = genEnv(v)
	settings.v = v
	settings.normalize()

	return &settings, nil
}

// ConfigFile is the path of the file that was read, or "" when running on
// defaults and environment only.
func (s *Settings) ConfigFile() string {
	if s.v == nil {
		return ""
	}
	return s.v.ConfigFileUsed()
}

// OnChange watches the config file and calls fn on every write. Live
// settings are not swapped; callers decide what to do.
func (s *Settings) OnChange(fn func(fsnotify.Event)) bool {
	if s.ConfigFile() == "" {
		return false
	}
	s.v.OnConfigChange(fn)
	s.v.WatchConfig()
	return true
}

func (s *Settings) normalize() {
	if port := os.Getenv("PORT"); port != "" && s.Server.Addr == defaultAddr {
		s.Server.Addr = ":" + port
	}
	if s.Vision.ComplimentTTL < MinComplimentTTL {
		s.Vision.ComplimentTTL = MinComplimentTTL
	}
	if s.Vision.ComplimentTTL > MaxComplimentTTL {
		s.Vision.ComplimentTTL = MaxComplimentTTL
	}
	s.Bridge.InjectionMode = strings.ToLower(strings.TrimSpace(s.Bridge.InjectionMode))
	if s.Bridge.InjectionMode != InjectionOnce {
		s.Bridge.InjectionMode = InjectionInterval
	}
	if s.Bridge.InjectionInterval <= 0 {
		s.Bridge.InjectionInterval = 10 * time.Second
	}
	s.Store.Driver = strings.ToLower(strings.TrimSpace(s.Store.Driver))
	s.Vision.Provider = strings.ToLower(strings.TrimSpace(s.Vision.Provider))
	s.Chat.Provider = strings.ToLower(strings.TrimSpace(s.Chat.Provider))
	s.Speech.STTProvider = strings.ToLower(strings.TrimSpace(s.Speech.STTProvider))
	s.Speech.TTSProvider = strings.ToLower(strings.TrimSpace(s.Speech.TTSProvider))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", defaultAddr)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.key_prefix", "vision:")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pass", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("providers.openai.api_key", "")
	v.SetDefault("providers.openai.base_url", "")
	v.SetDefault("providers.openai.realtime_url", "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview")
	v.SetDefault("providers.gemini.api_key", "")
	v.SetDefault("providers.gemini.model", "gemini-1.5-flash-latest")
	v.SetDefault("providers.ollama.urls", []string{})
	v.SetDefault("providers.ollama.model", "llama3.2")
	v.SetDefault("providers.whisper.url", "")
	v.SetDefault("providers.whisper.language", "en")
	v.SetDefault("providers.whisper.timeout", 30*time.Second)
	v.SetDefault("providers.piper.url", "")
	v.SetDefault("providers.piper.voice", "")
	v.SetDefault("providers.piper.timeout", 30*time.Second)

	v.SetDefault("vision.provider", "openai")
	v.SetDefault("vision.model", "gpt-4o-mini")
	v.SetDefault("vision.max_tokens", 60)
	v.SetDefault("vision.compliment_ttl", MinComplimentTTL)
	v.SetDefault("vision.max_image_bytes", 8<<20)
	v.SetDefault("vision.respond_with_compliment", false)

	v.SetDefault("chat.provider", "openai")
	v.SetDefault("chat.model", "gpt-4o-mini")
	v.SetDefault("chat.max_tokens", 100)
	v.SetDefault("chat.temperature", 0.7)

	v.SetDefault("speech.stt_provider", "openai")
	v.SetDefault("speech.tts_provider", "openai")
	v.SetDefault("speech.stt_model", "whisper-1")
	v.SetDefault("speech.tts_model", "tts-1")
	v.SetDefault("speech.tts_voice", "alloy")
	v.SetDefault("speech.pcm_sample_rate", 24000)
	v.SetDefault("speech.max_audio_bytes", 25<<20)

	v.SetDefault("bridge.voice", "alloy")
	v.SetDefault("bridge.transcription_model", "whisper-1")
	v.SetDefault("bridge.injection_mode", InjectionInterval)
	v.SetDefault("bridge.injection_interval", 10*time.Second)
	v.SetDefault("bridge.handshake_timeout", 10*time.Second)
	v.SetDefault("bridge.keepalive_interval", 30*time.Second)
	v.SetDefault("bridge.write_timeout", 10*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "aigreeter")

	v.SetDefault("env", "")
	v.SetDefault("debug", false)
}

// bindEnvAliases maps the conventional unprefixed variables onto keys.
func bindEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("env", "GREETER_ENV", "ENV")
	_ = v.BindEnv("server.addr", "GREETER_SERVER_ADDR", "ADDR")
	_ = v.BindEnv("redis.addr", "GREETER_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.pass", "GREETER_REDIS_PASS", "REDIS_PASSWORD")
	_ = v.BindEnv("providers.openai.api_key", "GREETER_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.gemini.api_key", "GREETER_PROVIDERS_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("auth.jwt_secret", "GREETER_AUTH_JWT_SECRET", "JWT_SECRET")
}

func genEnv(v *viper.Viper) string {
	env := v.GetString("env")
	if env == "" {
		return "dev"
	}
	return env
}
