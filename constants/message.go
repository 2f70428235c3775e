package constants

// 客户端 -> 服务端
const (
	MsgJoinQueue         = "join_queue"             // 加入匹配队列
	MsgJoinRoom          = "join_room"              // 加入对战房间
	MsgBattleTyping      = "battle:typing"          // 对手输入提示
	MsgBattleCodeUpdate  = "battle:codeUpdate"      // 代码更新(写入回放日志)
	MsgBattleRunTests    = "battle:runTests"        // 对手运行测试提示
	MsgBattleAttempt     = "battle:attempt"         // 对手尝试提交提示
	MsgBattleSubmit      = "battle:submit"          // 提交代码
	MsgCompetitionJoin   = "competition:join"       // 加入赛事大厅
	MsgCompetitionStart  = "competition:startRound" // 房主开赛
	MsgCompetitionSubmit = "competition:submit"     // 关卡提交
)

// 服务端 -> 客户端
const (
	MsgMatchFound              = "match_found"
	MsgBattleOpponentInfo      = "battle:opponentInfo"
	MsgBattleStartTimer        = "battle:startTimer"
	MsgBattleTimerUpdate       = "battle:timerUpdate"
	MsgBattleOpponentTyping    = "battle:opponentTyping"
	MsgBattleOpponentRunTests  = "battle:opponentRunningTests"
	MsgBattleOpponentAttempt   = "battle:opponentAttempting"
	MsgBattleExecutionResult   = "battle:executionResult"
	MsgBattleEnd               = "battle:end"
	MsgBattleError             = "battle:error"
	MsgBattleResult            = "battle:result"
	MsgCompetitionPlayers      = "competition:updatePlayers"
	MsgCompetitionHostInfo     = "competition:hostInfo"
	MsgCompetitionTimerUpdate  = "competition:timerUpdate"
	MsgCompetitionRoundStarted = "competition:roundStarted"
	MsgCompetitionError        = "competition:error"
	MsgCompetitionSubmitted    = "competition:playerSubmitted"
	MsgCompetitionLevelDone    = "competition:levelComplete"
	MsgCompetitionEnd          = "competition:competitionEnd"
	MsgCompetitionForceDone    = "competition:disconnectForceComplete"
)

// 对战结束原因
const (
	BattleReasonSolved       = "solved"
	BattleReasonTimeout      = "timeout"
	BattleReasonOpponentLeft = "opponent_left"
)
