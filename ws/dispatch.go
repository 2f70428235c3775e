package ws

import (
	"context"

	json "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samarth494/Capstone-sub000/constants"
	"github.com/samarth494/Capstone-sub000/model"
	"github.com/samarth494/Capstone-sub000/service"
	"go.uber.org/zap"
)

type handlerFunc func(connID string, payload []byte) error

// Dispatcher 按消息类型把入站消息分发到业务层.
// 入站负载一律先过结构校验再进业务, 不信任客户端的消息形状.
type Dispatcher struct {
	matchmaker   *service.Matchmaker
	battles      *service.BattleService
	competitions *service.CompetitionService
	hub          *Hub
	validate     *validator.Validate
	log          *zap.Logger

	handlers map[string]handlerFunc
}

func NewDispatcher(hub *Hub, matchmaker *service.Matchmaker, battles *service.BattleService, competitions *service.CompetitionService, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		matchmaker:   matchmaker,
		battles:      battles,
		competitions: competitions,
		hub:          hub,
		validate:     validator.New(),
		log:          log,
	}
	d.handlers = map[string]handlerFunc{
		constants.MsgJoinQueue:         d.onJoinQueue,
		constants.MsgJoinRoom:          d.onJoinRoom,
		constants.MsgBattleTyping:      d.onBattleTyping,
		constants.MsgBattleCodeUpdate:  d.onBattleCodeUpdate,
		constants.MsgBattleRunTests:    d.onBattleRunTests,
		constants.MsgBattleAttempt:     d.onBattleAttempt,
		constants.MsgBattleSubmit:      d.onBattleSubmit,
		constants.MsgCompetitionJoin:   d.onCompetitionJoin,
		constants.MsgCompetitionStart:  d.onCompetitionStart,
		constants.MsgCompetitionSubmit: d.onCompetitionSubmit,
	}
	return d
}

// Attach 将升级完成的连接接入 hub 并启动收发循环, 返回连接号
func (d *Dispatcher) Attach(conn *websocket.Conn) string {
	c := newClient(uuid.New().String(), d.hub, conn, d, d.log)
	d.hub.register(c)
	go c.writePump()
	go c.readPump()
	return c.ID
}

// Dispatch 解析消息信封并调用对应处理器. 单条坏消息只记日志, 不断开连接.
func (d *Dispatcher) Dispatch(connID string, raw []byte) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.log.Warn("failed to parse message envelope", zap.String("connId", connID), zap.Error(err))
		return
	}

	handler, ok := d.handlers[env.Type]
	if !ok {
		d.log.Warn("unknown message type", zap.String("connId", connID), zap.String("type", env.Type))
		return
	}
	if err := handler(connID, env.Payload); err != nil {
		d.log.Warn("message handling failed",
			zap.String("connId", connID),
			zap.String("type", env.Type),
			zap.Error(err))
	}
}

// HandleDisconnect 连接断开的级联清理: 出队, 对战判负, 赛事弃权
func (d *Dispatcher) HandleDisconnect(connID string) {
	d.matchmaker.RemoveByConn(connID)
	d.battles.HandleDisconnect(connID)
	d.competitions.HandleDisconnect(connID)
}

func decode[T any](d *Dispatcher, payload []byte) (T, error) {
	var param T
	if err := json.Unmarshal(payload, &param); err != nil {
		return param, err
	}
	if err := d.validate.Struct(&param); err != nil {
		return param, err
	}
	return param, nil
}

func (d *Dispatcher) onJoinQueue(connID string, payload []byte) error {
	param, err := decode[model.JoinQueueParam](d, payload)
	if err != nil {
		return err
	}
	d.matchmaker.Enqueue(model.Player{
		ConnID:   connID,
		UserID:   param.UserID,
		Username: param.Username,
		Rank:     model.RankTier(param.Rank),
	})
	return nil
}

func (d *Dispatcher) onJoinRoom(connID string, payload []byte) error {
	param, err := decode[model.JoinRoomParam](d, payload)
	if err != nil {
		return err
	}
	return d.battles.HandleJoin(param.RoomID, connID, param.Username)
}

func (d *Dispatcher) onBattleTyping(connID string, payload []byte) error {
	param, err := decode[model.BattleRoomParam](d, payload)
	if err != nil {
		return err
	}
	d.battles.HandleTyping(param.RoomID, connID)
	return nil
}

func (d *Dispatcher) onBattleCodeUpdate(connID string, payload []byte) error {
	param, err := decode[model.BattleCodeUpdateParam](d, payload)
	if err != nil {
		return err
	}
	d.battles.HandleCodeUpdate(param.RoomID, connID, param.Code)
	return nil
}

func (d *Dispatcher) onBattleRunTests(connID string, payload []byte) error {
	param, err := decode[model.BattleRoomParam](d, payload)
	if err != nil {
		return err
	}
	d.battles.HandleRunTests(param.RoomID, connID)
	return nil
}

func (d *Dispatcher) onBattleAttempt(connID string, payload []byte) error {
	param, err := decode[model.BattleRoomParam](d, payload)
	if err != nil {
		return err
	}
	d.battles.HandleAttempt(param.RoomID, connID)
	return nil
}

func (d *Dispatcher) onBattleSubmit(connID string, payload []byte) error {
	param, err := decode[model.BattleSubmitParam](d, payload)
	if err != nil {
		return err
	}
	// 沙箱执行可能长达数十秒, 不能占着本连接的读循环
	go d.battles.HandleSubmit(context.Background(), param.RoomID, connID, param)
	return nil
}

func (d *Dispatcher) onCompetitionJoin(connID string, payload []byte) error {
	param, err := decode[model.CompetitionJoinParam](d, payload)
	if err != nil {
		return err
	}
	return d.competitions.HandleJoin(connID, param)
}

func (d *Dispatcher) onCompetitionStart(connID string, payload []byte) error {
	param, err := decode[model.CompetitionStartParam](d, payload)
	if err != nil {
		return err
	}
	return d.competitions.HandleStart(connID, param)
}

func (d *Dispatcher) onCompetitionSubmit(connID string, payload []byte) error {
	param, err := decode[model.CompetitionSubmitParam](d, payload)
	if err != nil {
		return err
	}
	return d.competitions.HandleSubmit(connID, param)
}
