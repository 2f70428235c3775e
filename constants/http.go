package constants

const (
	HeaderRequestIDKey  = "X-Request-ID"
	HeaderUserIDKey     = "X-User-ID"
	HeaderLoginTokenKey = "X-Arena-JWT-Token"
)

const (
	WebSocketPath             = "/ws"
	HealthPath                = "/health"
	GetLeaderboardPath        = "/GetLeaderboard"        // 获取全局排行榜
	GetBattleReplayPath       = "/GetBattleReplay"       // 获取对战回放下载链接
	GetCompetitionResultsPath = "/GetCompetitionResults" // 获取赛事结果
	ExportCompetitionDataPath = "/ExportCompetitionData" // 导出赛事结果
)

const ContextUserClaimsKey = "user_claims"

const ServiceName = "Arena-Orchestrator"
