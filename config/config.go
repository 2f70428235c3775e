package config

type GinConfig struct {
	Addr             string   `yaml:"addr" mapstructure:"addr"`
	AllowOrigins     []string `yaml:"allowOrigins" mapstructure:"allowOrigins"`
	AllowMethods     []string `yaml:"allowMethods" mapstructure:"allowMethods"`
	AllowHeaders     []string `yaml:"allowHeaders" mapstructure:"allowHeaders"`
	ExposeHeaders    []string `yaml:"exposeHeaders" mapstructure:"exposeHeaders"`
	AllowCredentials bool     `yaml:"allowCredentials" mapstructure:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge" mapstructure:"maxAge"` // 单位: 秒
	// ProtectedPaths 需要 JWT 鉴权的路径前缀
	ProtectedPaths []string `yaml:"protectedPaths" mapstructure:"protectedPaths"`
}

func (GinConfig) Key() string {
	return "gin"
}

type MySQLConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

func (MySQLConfig) Key() string {
	return "mysql"
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

func (RedisConfig) Key() string {
	return "redis"
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
}

func (KafkaConfig) Key() string {
	return "kafka"
}

type MinIOConfig struct {
	Endpoint     string `yaml:"endpoint" mapstructure:"endpoint"`
	UseSSL       bool   `yaml:"useSSL" mapstructure:"useSSL"`
	ReplayBucket string `yaml:"replayBucket" mapstructure:"replayBucket"`
	// 预签名下载链接有效期, 单位: 秒
	DownloadDurationSeconds int `yaml:"downloadDurationSeconds" mapstructure:"downloadDurationSeconds"`
}

func (MinIOConfig) Key() string {
	return "minio"
}

type JWTConfig struct {
	Secret            string `yaml:"secret" mapstructure:"secret"`
	ExpirationMinutes int    `yaml:"expirationMinutes" mapstructure:"expirationMinutes"`
}

func (JWTConfig) Key() string {
	return "jwt"
}

type SandboxConfig struct {
	BaseURL        string `yaml:"baseURL" mapstructure:"baseURL"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

func (SandboxConfig) Key() string {
	return "sandbox"
}

type ExecPoolConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"` // 并发执行上限
	QueueSize   int `yaml:"queueSize" mapstructure:"queueSize"`     // 等待队列上限, 超出直接拒绝
}

func (ExecPoolConfig) Key() string {
	return "execPool"
}

type BattleConfig struct {
	DurationSeconds  int `yaml:"durationSeconds" mapstructure:"durationSeconds"`   // 对战时长
	JoinGraceSeconds int `yaml:"joinGraceSeconds" mapstructure:"joinGraceSeconds"` // 双方加入的宽限期, 超时由 reaper 清理
}

func (BattleConfig) Key() string {
	return "battle"
}

type MatchmakerConfig struct {
	SweepCron       string `yaml:"sweepCron" mapstructure:"sweepCron"`             // 匹配扫描 cron 表达式(秒级)
	GapWidenSeconds int    `yaml:"gapWidenSeconds" mapstructure:"gapWidenSeconds"` // 每等待 N 秒放宽一个段位差
	ReaperCron      string `yaml:"reaperCron" mapstructure:"reaperCron"`           // 僵尸房间清理 cron 表达式
}

func (MatchmakerConfig) Key() string {
	return "matchmaker"
}

type CompetitionConfig struct {
	MaxPlayers        int `yaml:"maxPlayers" mapstructure:"maxPlayers"`
	LobbySeconds      int `yaml:"lobbySeconds" mapstructure:"lobbySeconds"`           // 大厅等待时长
	CountdownSeconds  int `yaml:"countdownSeconds" mapstructure:"countdownSeconds"`   // 开赛倒计时
	TotalLevels       int `yaml:"totalLevels" mapstructure:"totalLevels"`             // 默认关卡数
	LevelGraceSeconds int `yaml:"levelGraceSeconds" mapstructure:"levelGraceSeconds"` // 关卡结算后进入下一关的缓冲
}

func (CompetitionConfig) Key() string {
	return "competition"
}

type ArchiveCleanerConfig struct {
	CronExpr      string `yaml:"cronExpr" mapstructure:"cronExpr"`
	RetentionDays int    `yaml:"retentionDays" mapstructure:"retentionDays"` // 存档保留天数
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
}

func (ArchiveCleanerConfig) Key() string {
	return "archiveCleaner"
}

type ExporterConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

func (ExporterConfig) Key() string {
	return "exporter"
}
