package structures

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Backend  string `yaml:"backend" validate:"required|in:memory,file,sqlite"`
	Dir      string `yaml:"dir" validate:"unixPath"`
	Key      string `yaml:"key" validate:"required"`
	Compress bool   `yaml:"compress"`
	Watch    bool   `yaml:"watch"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type NotifierConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer"`
	Storage   StorageConfig  `yaml:"storage"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	Notifier  NotifierConfig `yaml:"notifier"`
}
